package relation

import (
	"context"
	"sync"
)

// MemoryRepository はプロセス内で関連データ行を保持する Repository です。
type MemoryRepository[T any] struct {
	mu   sync.Mutex
	rows map[string][]T
}

// NewMemoryRepository は空の MemoryRepository を生成します。
func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{rows: make(map[string][]T)}
}

// NewMemorySet は全種類が MemoryRepository の Set を生成します。
func NewMemorySet() Set {
	return Set{
		Education:   NewMemoryRepository[Education](),
		Career:      NewMemoryRepository[Career](),
		Certificate: NewMemoryRepository[Certificate](),
		Language:    NewMemoryRepository[Language](),
		Family:      NewMemoryRepository[FamilyMember](),
	}
}

func (m *MemoryRepository[T]) List(_ context.Context, ownerID string) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.rows[ownerID]...), nil
}

func (m *MemoryRepository[T]) ReplaceAll(_ context.Context, ownerID string, rows []T) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[ownerID] = append([]T(nil), rows...)
	return len(rows), nil
}

func (m *MemoryRepository[T]) DeleteAll(_ context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.rows[ownerID])
	delete(m.rows, ownerID)
	return n, nil
}

package synclog

import "context"

// Repository は同期ログの追記と参照を行います。
type Repository interface {
	Append(ctx context.Context, entries ...*Entry) error
	ListByContract(ctx context.Context, contractID string, limit int) ([]*Entry, error)
}

package termination

import (
	"context"
	"time"

	"github.com/ogurasousui/hrlink/internal/core/contract"
)

// SnapshotRepository は終了時スナップショットを永続化します。
type SnapshotRepository interface {
	Create(ctx context.Context, s *Snapshot) (*Snapshot, error)
	FindByContractID(ctx context.Context, contractID string) (*Snapshot, error)
	DeleteByContractID(ctx context.Context, contractID string) error
}

// ContractRepository は保持期限処理に必要な契約の操作です。
type ContractRepository interface {
	FindByIDForUpdate(ctx context.Context, id string) (*contract.Contract, error)
	Update(ctx context.Context, c *contract.Contract) (*contract.Contract, error)
	ListRetentionElapsed(ctx context.Context, now time.Time, limit int) ([]*contract.Contract, error)
}

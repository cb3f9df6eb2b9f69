package contract

import (
	"context"
	"time"
)

// Repository は契約の永続化を行うインターフェースです。契約は物理削除しません。
type Repository interface {
	Create(ctx context.Context, c *Contract) (*Contract, error)
	Update(ctx context.Context, c *Contract) (*Contract, error)
	FindByID(ctx context.Context, id string) (*Contract, error)
	// FindByIDForUpdate はトランザクション内で行ロックを取得して契約を取得します。
	FindByIDForUpdate(ctx context.Context, id string) (*Contract, error)
	// FindActiveByPair は approved / termination_requested の契約を返します。存在しない場合は ErrContractNotFound です。
	FindActiveByPair(ctx context.Context, personID, companyID string) (*Contract, error)
	// FindPendingByPair は requested の契約を返します。存在しない場合は ErrContractNotFound です。
	FindPendingByPair(ctx context.Context, personID, companyID string) (*Contract, error)
	ListActiveByPerson(ctx context.Context, personID string) ([]*Contract, error)
	ListStaleRequests(ctx context.Context, requestedBefore time.Time, limit int) ([]*Contract, error)
	// ListRetentionElapsed は保持期限を過ぎ、まだ削除処理されていない終了済み契約を返します。
	ListRetentionElapsed(ctx context.Context, now time.Time, limit int) ([]*Contract, error)
}

package attachment

import (
	"context"
	"time"
)

// Repository は添付ファイルのメタデータを永続化します。
type Repository interface {
	ListByOwner(ctx context.Context, ownerType OwnerType, ownerID string, category Category) ([]*Attachment, error)
	// ListSynced は契約経由で同期された行を返します。
	ListSynced(ctx context.Context, contractID string, category Category) ([]*Attachment, error)
	// DeleteSynced は契約経由で同期された行を削除し、削除した行を返します。
	DeleteSynced(ctx context.Context, contractID string, category Category) ([]*Attachment, error)
	Create(ctx context.Context, a *Attachment) (*Attachment, error)
	// FreezeDeletable は契約終了時に削除対象の行へ凍結時刻を設定し、件数を返します。
	FreezeDeletable(ctx context.Context, contractID string, at time.Time) (int, error)
	// DeleteFrozen は凍結済みの行を削除し、削除した行を返します。
	DeleteFrozen(ctx context.Context, contractID string) ([]*Attachment, error)
}

// FileStorage は添付ファイル本体を保存します。Copy は新しい一意な保存先パスを返します。
type FileStorage interface {
	Copy(ctx context.Context, srcPath string, ownerType OwnerType, ownerID string, category Category) (string, error)
	Remove(ctx context.Context, path string) error
}

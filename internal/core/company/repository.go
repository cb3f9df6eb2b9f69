package company

import "context"

// Repository は会社エンティティの参照を行うインターフェースです。
type Repository interface {
	FindByID(ctx context.Context, id string) (*Company, error)
}

// SequenceRepository は会社・年ごとの社員番号連番を払い出します。
// scopeYear が 0 の場合は年を区切らない連番です。
type SequenceRepository interface {
	Next(ctx context.Context, companyID string, scopeYear int) (int64, error)
}

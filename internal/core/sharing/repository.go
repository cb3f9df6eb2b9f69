package sharing

import "context"

// Repository は共有設定の永続化を行います。
type Repository interface {
	Create(ctx context.Context, cfg *Config) (*Config, error)
	Update(ctx context.Context, cfg *Config) (*Config, error)
	FindByContractID(ctx context.Context, contractID string) (*Config, error)
	DeleteByContractID(ctx context.Context, contractID string) error
}

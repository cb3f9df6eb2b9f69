package profile

import "context"

// Repository はプロフィールの永続化を行うインターフェースです。
type Repository interface {
	FindByPersonID(ctx context.Context, personID string) (*Profile, error)
	Update(ctx context.Context, p *Profile) (*Profile, error)
}

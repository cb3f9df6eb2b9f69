package employee

import "context"

// Repository は社員永続化の抽象です。社員レコードは削除せず、退職時は状態のみ変更します。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	ListByCompanyAndPerson(ctx context.Context, companyID, personID string) ([]*Employee, error)
}

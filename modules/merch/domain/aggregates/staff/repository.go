package staff

import "context"

type Repository interface {
	GetAll(ctx context.Context) ([]Staff, error)
	GetByName(ctx context.Context, name string) (Staff, error)
	Create(ctx context.Context, data Staff) (Staff, error)
	Update(ctx context.Context, data Staff) error
}

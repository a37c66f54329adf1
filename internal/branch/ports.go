package branch

import (
	"context"

	"haulage/internal/authz"
	"haulage/internal/domain"
	"haulage/internal/dto"
	"haulage/internal/session"
)

type Service interface {
	List(ctx context.Context, p session.Principal) ([]domain.Branch, error)
	Create(ctx context.Context, p session.Principal, req dto.CreateBranchRequest) (*domain.Branch, error)
	Delete(ctx context.Context, p session.Principal, id string) error
}

type Repository interface {
	List(ctx context.Context) ([]domain.Branch, error)
	FindByID(ctx context.Context, id string) (*domain.Branch, error)
	Create(ctx context.Context, b *domain.Branch) error
	DeleteUnreferenced(ctx context.Context, id string) (References, error)
}

// References counts the records pointing at a branch.
type References struct {
	Orders int
	Users  int
}

func (r References) Any() bool {
	return r.Orders > 0 || r.Users > 0
}

type Permissions interface {
	Can(role domain.Role, resource authz.Resource, action string) bool
}

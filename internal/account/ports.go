package account

import (
	"context"

	"haulage/internal/authz"
	"haulage/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type BranchFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Branch, error)
}

type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

type Permissions interface {
	Can(role domain.Role, resource authz.Resource, action string) bool
}

// Scope names which route a user lookup came through. Each route has its own
// audience.
type Scope int

const (
	ScopeSelf Scope = iota
	ScopeStaff
	ScopeAny
)

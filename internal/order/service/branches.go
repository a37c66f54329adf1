package service

import (
	"context"
	"fmt"

	"haulage/internal/domain"
	apperrors "haulage/internal/errors"
)

// BranchFinder resolves branch ids. The branch repository implements it.
type BranchFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Branch, error)
}

// CheckBranch fails with a validation error when id names no branch. An
// empty id is accepted: customers may book without choosing one.
func CheckBranch(ctx context.Context, branches BranchFinder, id string) error {
	if id == "" {
		return nil
	}
	_, err := branches.FindByID(ctx, id)
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return UnknownBranch(id)
	}
	return err
}

func UnknownBranch(id string) error {
	return apperrors.NewValidationError("unknown branch", apperrors.ValidationDetail{
		Field:   "branchId",
		Message: fmt.Sprintf("branch %s does not exist", id),
	})
}

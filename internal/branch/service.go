package branch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"haulage/internal/authz"
	"haulage/internal/domain"
	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
	"haulage/internal/session"
)

type branchService struct {
	repo   Repository
	perms  Permissions
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, perms Permissions, logger *zap.Logger) Service {
	return &branchService{
		repo:   repo,
		perms:  perms,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *branchService) List(ctx context.Context, p session.Principal) ([]domain.Branch, error) {
	if err := s.require(p, "list"); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *branchService) Create(ctx context.Context, p session.Principal, req dto.CreateBranchRequest) (*domain.Branch, error) {
	if err := s.require(p, "create"); err != nil {
		return nil, err
	}

	b := &domain.Branch{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Location:  strings.TrimSpace(req.Location),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("branch created", zap.String("branchId", b.ID), zap.String("name", b.Name))
	return b, nil
}

// Delete refuses to remove a branch that orders or users still point at.
// Nothing is cascaded.
func (s *branchService) Delete(ctx context.Context, p session.Principal, id string) error {
	if err := s.require(p, "delete"); err != nil {
		return err
	}

	refs, err := s.repo.DeleteUnreferenced(ctx, id)
	if err != nil {
		return err
	}
	if refs.Any() {
		return apperrors.NewConflictError(fmt.Sprintf("branch is referenced by %d orders and %d users", refs.Orders, refs.Users))
	}
	s.logger.Info("branch deleted", zap.String("branchId", id))
	return nil
}

func (s *branchService) require(p session.Principal, action string) error {
	if !s.perms.Can(p.Role, authz.ResourceBranch, action) {
		return apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot %s branches", p.Role, action))
	}
	return nil
}

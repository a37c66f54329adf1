package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"haulage/internal/domain"
	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
	"haulage/internal/lifecycle"
	"haulage/internal/order/repository"
	"haulage/internal/session"
	"haulage/internal/visibility"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter repository.ListFilter) ([]domain.Order, error)
	Delete(ctx context.Context, id string) error
}

type OrderService struct {
	repo     OrderRepository
	branches BranchFinder
	policy   *lifecycle.Policy
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderService(repo OrderRepository, branches BranchFinder, policy *lifecycle.Policy, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		branches: branches,
		policy:   policy,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns the orders p may see, narrowed by view, each with the
// actions p may start on it.
func (s *OrderService) List(ctx context.Context, p session.Principal, view visibility.View) ([]dto.OrderView, error) {
	orders, err := s.repo.List(ctx, scopeFilter(p))
	if err != nil {
		return nil, err
	}

	visible := visibility.Filter(orders, p, view)
	out := make([]dto.OrderView, 0, len(visible))
	for i := range visible {
		out = append(out, dto.NewOrderView(visible[i], visibility.Actions(s.policy, &visible[i], p)))
	}
	return out, nil
}

// Get hides orders p cannot see behind a not found error.
func (s *OrderService) Get(ctx context.Context, p session.Principal, id string) (*dto.OrderView, error) {
	order, err := s.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	v := dto.NewOrderView(*order, visibility.Actions(s.policy, order, p))
	return &v, nil
}

func (s *OrderService) Create(ctx context.Context, p session.Principal, req dto.CreateOrderRequest) (*dto.OrderView, error) {
	order, err := s.policy.Create(visibility.Actor(p), req.ToDomain())
	if err == nil {
		err = CheckBranch(ctx, s.branches, order.BranchID)
	}
	if err != nil {
		RecordTransition(lifecycle.ActionCreate, err)
		return nil, err
	}

	now := s.now()
	order.ID = uuid.New().String()
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := s.repo.Create(ctx, order); err != nil {
		// The branch went away between the check and the insert.
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, UnknownBranch(order.BranchID)
		}
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("orderId", order.ID),
		zap.String("status", string(order.Status)),
		zap.String("role", string(p.Role)),
	)
	RecordTransition(lifecycle.ActionCreate, nil)

	v := dto.NewOrderView(*order, visibility.Actions(s.policy, order, p))
	return &v, nil
}

// Delete removes the order outright. Only roles allowed the delete action
// get past the policy; the order must also be visible to them.
func (s *OrderService) Delete(ctx context.Context, p session.Principal, id string) error {
	order, err := s.visible(ctx, p, id)
	if err != nil {
		return err
	}

	if _, err := s.policy.Transition(order, p.Role, lifecycle.ActionDelete); err != nil {
		RecordTransition(lifecycle.ActionDelete, err)
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("order deleted", zap.String("orderId", id), zap.String("role", string(p.Role)))
	RecordTransition(lifecycle.ActionDelete, nil)
	return nil
}

func (s *OrderService) visible(ctx context.Context, p session.Principal, id string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.Visible(order, p) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	return order, nil
}

// scopeFilter pushes the coarse part of the role scope into SQL. The exact
// rules stay in visibility.Filter.
func scopeFilter(p session.Principal) repository.ListFilter {
	switch {
	case p.Role == domain.RoleCustomer:
		return repository.ListFilter{CustomerID: p.UserID}
	case p.Role.BranchScoped() && p.BranchID != "":
		return repository.ListFilter{BranchID: p.BranchID}
	}
	return repository.ListFilter{}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"haulage/internal/domain"
	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
	"haulage/internal/lifecycle"
	"haulage/internal/order/service"
	"haulage/internal/session"
	"haulage/internal/visibility"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// UpdateOrderUseCase reads an order, stages the requested change through
// the lifecycle policy and saves the result. The stored row is replaced as
// a whole, so of two concurrent updates the later save wins.
type UpdateOrderUseCase struct {
	repo             OrderRepository
	branches         service.BranchFinder
	users            UserFinder
	policy           *lifecycle.Policy
	logger           *zap.Logger
	maxRetryAttempts int
	now              func() time.Time
}

func NewUpdateOrderUseCase(
	repo OrderRepository,
	branches service.BranchFinder,
	users UserFinder,
	policy *lifecycle.Policy,
	logger *zap.Logger,
	maxRetryAttempts int,
) *UpdateOrderUseCase {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}
	return &UpdateOrderUseCase{
		repo:             repo,
		branches:         branches,
		users:            users,
		policy:           policy,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (uc *UpdateOrderUseCase) Update(
	ctx context.Context,
	p session.Principal,
	id string,
	req dto.UpdateOrderRequest,
) (*dto.OrderView, error) {
	uc.logger.Info("update order started", zap.String("orderId", id), zap.String("role", string(p.Role)))

	order, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.Visible(order, p) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}

	change, err := req.ToChange(order.Status)
	if err != nil {
		return nil, updateFailed(err)
	}

	updated, err := uc.policy.Apply(order, visibility.Actor(p), change)
	if err == nil {
		err = uc.checkReferences(ctx, order, updated)
	}
	service.RecordTransition(change.Action, err)
	if err != nil {
		uc.logger.Warn("order update rejected",
			zap.String("orderId", id),
			zap.String("action", string(change.Action)),
			zap.String("status", string(order.Status)),
			zap.Error(err),
		)
		return nil, updateFailed(err)
	}
	updated.UpdatedAt = uc.now()

	if err := uc.saveWithRetry(ctx, updated); err != nil {
		return nil, err
	}

	if updated.Status != order.Status {
		uc.logger.Info("order status changed",
			zap.String("orderId", id),
			zap.String("from", string(order.Status)),
			zap.String("to", string(updated.Status)),
		)
	}

	v := dto.NewOrderView(*updated, visibility.Actions(uc.policy, updated, p))
	return &v, nil
}

// checkReferences validates the branch and assistant an update points the
// order at, when they differ from the stored ones.
func (uc *UpdateOrderUseCase) checkReferences(ctx context.Context, stored, updated *domain.Order) error {
	if updated.BranchID != stored.BranchID {
		if updated.BranchID == "" {
			return apperrors.NewValidationError("invalid branch", apperrors.ValidationDetail{
				Field:   "branchId",
				Message: "an order cannot be taken off its branch",
			})
		}
		if err := service.CheckBranch(ctx, uc.branches, updated.BranchID); err != nil {
			return err
		}
	}

	if updated.AssistantID == stored.AssistantID {
		return nil
	}
	user, err := uc.users.FindByID(ctx, updated.AssistantID)
	if _, ok := apperrors.IsNotFoundError(err); ok || (err == nil && user.Role != domain.RoleAssistant) {
		return apperrors.NewValidationError("invalid assistant", apperrors.ValidationDetail{
			Field:   "assistantId",
			Message: fmt.Sprintf("user %s is not an assistant", updated.AssistantID),
		})
	}
	if err != nil {
		return err
	}
	if user.BranchID != "" && updated.BranchID != "" && user.BranchID != updated.BranchID {
		return apperrors.NewValidationError("invalid assistant", apperrors.ValidationDetail{
			Field:   "assistantId",
			Message: fmt.Sprintf("assistant %s works for another branch", user.ID),
		})
	}
	return nil
}

func (uc *UpdateOrderUseCase) saveWithRetry(ctx context.Context, order *domain.Order) error {
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		err := uc.repo.Update(ctx, order)
		if err == nil {
			return nil
		}
		if !isDeadlockError(err) {
			return err
		}
		if attempt == uc.maxRetryAttempts {
			break
		}

		base := backoffs[min(attempt, len(backoffs)-1)]
		jitter := time.Duration(float64(base) * (rand.Float64()*0.4 - 0.2))
		uc.logger.Warn("deadlock detected, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", uc.maxRetryAttempts),
			zap.String("orderId", order.ID),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(base + jitter):
		}
	}

	return apperrors.NewConflictError("order is being updated elsewhere, try again")
}

// updateFailed prefixes rejections with the message users see for a failed
// update, keeping the error kind so the status code is unchanged.
func updateFailed(err error) error {
	prefix := lifecycle.UpdateFailedMessage + ": "
	if ve, ok := apperrors.IsValidationError(err); ok {
		return apperrors.NewValidationError(prefix+ve.Message, ve.Details...)
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return apperrors.NewConflictError(prefix + err.Error())
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		return apperrors.NewForbiddenError(prefix + err.Error())
	}
	return err
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

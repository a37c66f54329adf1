package enquiry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"haulage/internal/authz"
	"haulage/internal/domain"
	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
	"haulage/internal/session"
)

type Repository interface {
	Create(ctx context.Context, e *domain.Enquiry) error
	List(ctx context.Context) ([]domain.Enquiry, error)
	FindByID(ctx context.Context, id string) (*domain.Enquiry, error)
	UpdateStatus(ctx context.Context, id string, status domain.EnquiryStatus) error
}

type Permissions interface {
	Can(role domain.Role, resource authz.Resource, action string) bool
}

type Service struct {
	repo   Repository
	perms  Permissions
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, perms Permissions, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		perms:  perms,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create records a contact form submission. It needs no session.
func (s *Service) Create(ctx context.Context, req dto.CreateEnquiryRequest) (*domain.Enquiry, error) {
	e := req.ToDomain()
	e.ID = uuid.New().String()
	e.CreatedAt = s.now()

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("enquiry received", zap.String("enquiryId", e.ID), zap.String("company", e.Company))
	return e, nil
}

func (s *Service) List(ctx context.Context, p session.Principal) ([]domain.Enquiry, error) {
	if !s.perms.Can(p.Role, authz.ResourceEnquiry, "list") {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot list enquiries", p.Role))
	}
	return s.repo.List(ctx)
}

// UpdateStatus changes the only mutable field of an enquiry.
func (s *Service) UpdateStatus(ctx context.Context, p session.Principal, id string, req dto.UpdateEnquiryRequest) (*domain.Enquiry, error) {
	if !s.perms.Can(p.Role, authz.ResourceEnquiry, "update") {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot update enquiries", p.Role))
	}

	status := domain.EnquiryStatus(req.Status)
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid enquiry status", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of Pending, In Progress, Completed",
		})
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"haulage/internal/authz"
	"haulage/internal/config"
	"haulage/internal/domain"
	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
	"haulage/internal/session"
)

const invalidCredentials = "invalid email or password"

type Service struct {
	users    UserRepository
	branches BranchFinder
	issuer   TokenIssuer
	perms    Permissions
	logger   *zap.Logger
	cost     int
	now      func() time.Time
}

func NewService(users UserRepository, branches BranchFinder, issuer TokenIssuer, perms Permissions, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		branches: branches,
		issuer:   issuer,
		perms:    perms,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login checks the password and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return nil, apperrors.NewUnauthorizedError(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("userId", u.ID))
		return nil, apperrors.NewUnauthorizedError(invalidCredentials)
	}
	return s.authenticate(*u)
}

// Signup registers a customer account and logs it in.
func (s *Service) Signup(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	u, err := s.newUser(req.Name, req.Email, req.Phone, req.Password, domain.RoleCustomer, "")
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("customer registered", zap.String("userId", u.ID))
	return s.authenticate(*u)
}

// CreateStaff adds a staff account. Branch admins may only add the
// operational roles of their own branch.
func (s *Service) CreateStaff(ctx context.Context, p session.Principal, req dto.StaffRequest) (*domain.User, error) {
	if !s.perms.Can(p.Role, authz.ResourceUser, "create-staff") {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot create staff", p.Role))
	}

	role := domain.ParseRole(req.Role)
	if !role.Staff() {
		return nil, apperrors.NewValidationError("invalid staff role", apperrors.ValidationDetail{
			Field:   "role",
			Message: fmt.Sprintf("%q is not a staff role", req.Role),
		})
	}

	branchID := strings.TrimSpace(req.BranchID)
	if p.Role == domain.RoleAdmin {
		if role == domain.RoleSuperAdmin || role == domain.RoleAdmin {
			return nil, apperrors.NewForbiddenError(fmt.Sprintf("branch admins cannot create %s accounts", role))
		}
		if branchID != "" && branchID != p.BranchID {
			return nil, apperrors.NewForbiddenError("branch admins can only add staff to their own branch")
		}
		branchID = p.BranchID
	}
	if role == domain.RoleSuperAdmin {
		branchID = ""
	}

	if role.BranchScoped() && branchID == "" {
		return nil, apperrors.NewValidationError("branch required", apperrors.ValidationDetail{
			Field:   "branchId",
			Message: fmt.Sprintf("%s accounts belong to a branch", role),
		})
	}
	if branchID != "" {
		if _, err := s.branches.FindByID(ctx, branchID); err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, apperrors.NewValidationError("unknown branch", apperrors.ValidationDetail{
					Field:   "branchId",
					Message: fmt.Sprintf("branch %s does not exist", branchID),
				})
			}
			return nil, err
		}
	}

	u, err := s.newUser(req.Name, req.Email, req.Phone, req.Password, role, branchID)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("staff account created",
		zap.String("userId", u.ID),
		zap.String("role", string(role)),
		zap.String("createdBy", p.UserID),
	)
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, p session.Principal, id string, scope Scope) (*domain.User, error) {
	switch scope {
	case ScopeSelf:
		if p.UserID != id {
			return nil, apperrors.NewForbiddenError("users can only read their own profile")
		}
		return s.users.FindByID(ctx, id)

	case ScopeStaff:
		if !s.perms.Can(p.Role, authz.ResourceUser, "read-staff") {
			return nil, apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot read staff", p.Role))
		}
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		hidden := !u.Role.Staff() || (p.Role == domain.RoleAdmin && u.BranchID != p.BranchID)
		if hidden {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("staff member with id %s not found", id))
		}
		return u, nil

	case ScopeAny:
		if !s.perms.Can(p.Role, authz.ResourceUser, "read-any") {
			return nil, apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot read users", p.Role))
		}
		return s.users.FindByID(ctx, id)
	}
	return nil, fmt.Errorf("unknown user scope %d", scope)
}

// Bootstrap creates the configured super admin when the email is not taken
// yet. It does nothing when no email is configured.
func (s *Service) Bootstrap(ctx context.Context, cfg config.AuthConfig) error {
	if cfg.BootstrapEmail == "" {
		return nil
	}

	_, err := s.users.FindByEmail(ctx, cfg.BootstrapEmail)
	if err == nil {
		s.logger.Debug("bootstrap admin already present")
		return nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return err
	}
	if len(cfg.BootstrapPassword) < 8 {
		return fmt.Errorf("bootstrap admin password must have at least 8 characters")
	}

	u, err := s.newUser(cfg.BootstrapName, cfg.BootstrapEmail, "", cfg.BootstrapPassword, domain.RoleSuperAdmin, "")
	if err != nil {
		return err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}

	s.logger.Info("bootstrap super admin created", zap.String("userId", u.ID))
	return nil
}

func (s *Service) newUser(name, email, phone, password string, role domain.Role, branchID string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return &domain.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        phone,
		Role:         role,
		BranchID:     branchID,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}, nil
}

func (s *Service) authenticate(u domain.User) (*dto.AuthResponse, error) {
	token, err := s.issuer.Issue(u)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}
	return &dto.AuthResponse{Token: token, User: u}, nil
}

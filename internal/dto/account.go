package dto

import "haulage/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,numeric,min=7,max=15"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// StaffRequest creates a staff account. Only super admins and branch admins
// send it; branch admins are pinned to their own branch by the service.
type StaffRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,numeric,min=7,max=15"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required"`
	BranchID string `json:"branchId,omitempty"`
}

// AuthResponse carries the session the console persists: the token for the
// jwt_token entry and the profile for userId and user.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

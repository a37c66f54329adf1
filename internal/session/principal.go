package session

import (
	"time"

	"haulage/internal/domain"
)

// Principal is the resolved identity behind a request or console command.
// It is built once and passed explicitly; nothing re-reads storage for it.
type Principal struct {
	Token     string
	UserID    string
	Name      string
	Role      domain.Role
	BranchID  string
	ExpiresAt time.Time
}

// Anonymous reports whether p carries no usable identity.
func (p Principal) Anonymous() bool {
	return p.UserID == "" || p.Role == domain.RoleUnknown
}

// Expired reports whether the token expiry has passed at now. A zero
// expiry never expires.
func (p Principal) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

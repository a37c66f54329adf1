// Package auth issues and verifies the API's bearer tokens and turns them
// into a session.Principal on each request.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"haulage/internal/domain"
	"haulage/internal/session"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the token's payload. sub is the user id.
type Claims struct {
	Role     string `json:"role"`
	BranchID string `json:"branchId,omitempty"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs an HS256 token for user.
func (i *Issuer) Issue(user domain.User) (string, error) {
	now := i.now()
	claims := Claims{
		Role:     string(user.Role),
		BranchID: user.BranchID,
		Name:     user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the caller.
func (i *Issuer) Verify(token string) (session.Principal, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return session.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role := domain.ParseRole(claims.Role)
	if claims.Subject == "" || role == domain.RoleUnknown {
		return session.Principal{}, fmt.Errorf("%w: incomplete claims", ErrInvalidToken)
	}

	p := session.Principal{
		Token:    token,
		UserID:   claims.Subject,
		Name:     claims.Name,
		Role:     role,
		BranchID: claims.BranchID,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}

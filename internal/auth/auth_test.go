package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"haulage/internal/domain"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	i, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return i
}

func TestIssueAndVerify(t *testing.T) {
	i := newTestIssuer(t)
	user := domain.User{ID: "u-1", Name: "Priya", Role: domain.RoleAdmin, BranchID: "br-1"}

	token, err := i.Issue(user)
	require.NoError(t, err)

	p, err := i.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, domain.RoleAdmin, p.Role)
	assert.Equal(t, "br-1", p.BranchID)
	assert.Equal(t, "Priya", p.Name)
	assert.WithinDuration(t, time.Now().Add(time.Hour), p.ExpiresAt, 5*time.Second)
}

func TestVerify_Rejects(t *testing.T) {
	i := newTestIssuer(t)

	other, err := NewIssuer("other-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue(domain.User{ID: "u-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	expiredIssuer := newTestIssuer(t)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue(domain.User{ID: "u-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	unknownRole, err := i.Issue(domain.User{ID: "u-1", Role: domain.Role("DRIVER")})
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1", "role": "ADMIN"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "abc.def.ghi",
		"wrong secret": foreign,
		"expired":      expired,
		"unknown role": unknownRole,
		"no expiry":    noExp,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := i.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer("", time.Hour)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = BearerToken("bearer   xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, err := BearerToken(h)
		assert.ErrorIs(t, err, ErrMissingToken, h)
	}
}

func TestMiddleware(t *testing.T) {
	i := newTestIssuer(t)
	token, err := i.Issue(domain.User{ID: "u-7", Role: domain.RolePickup, BranchID: "br-2"})
	require.NoError(t, err)

	handler := Middleware(i, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := Principal(r)
		require.NoError(t, err)
		assert.Equal(t, "u-7", p.UserID)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		auth   string
		userID string
		want   int
	}{
		{"valid", "Bearer " + token, "", http.StatusNoContent},
		{"valid with matching user id", "Bearer " + token, "u-7", http.StatusNoContent},
		{"mismatched user id", "Bearer " + token, "u-8", http.StatusUnauthorized},
		{"missing header", "", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.userID != "" {
				req.Header.Set(UserIDHeader, tt.userID)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPrincipal_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := Principal(req)
	assert.Error(t, err)
}

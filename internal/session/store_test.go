package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"haulage/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("whatever"))
	require.NoError(t, err)
	return token
}

func TestStore_SaveAndResolve(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	token := signToken(t, jwt.MapClaims{"sub": "u-1", "role": "ADMIN", "branchId": "br-1", "exp": exp.Unix()})
	user := domain.User{ID: "u-1", Name: "Meena", Role: domain.RoleAdmin, BranchID: "br-1"}
	require.NoError(t, s.Save(ctx, token, user))

	p, err := s.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, "Meena", p.Name)
	assert.Equal(t, domain.RoleAdmin, p.Role)
	assert.Equal(t, "br-1", p.BranchID)
	assert.True(t, p.ExpiresAt.Equal(exp))
	assert.Equal(t, token, p.Token)

	gotToken, gotUser, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, gotToken)
	assert.Equal(t, "u-1", gotUser)
}

func TestStore_NoSession(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	_, _, err = s.Credentials(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_MalformedProfileIsRecoverable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	token := signToken(t, jwt.MapClaims{"sub": "u-1", "role": "CUSTOMER"})
	require.NoError(t, s.Put(ctx, KeyToken, token))
	require.NoError(t, s.Put(ctx, KeyUser, "{not json"))

	_, err := s.Resolve(ctx)
	assert.ErrorIs(t, err, ErrMalformedProfile)

	// The token itself is still usable for requests.
	_, _, err = s.Credentials(ctx)
	assert.NoError(t, err)
}

func TestStore_Expired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	token := signToken(t, jwt.MapClaims{"sub": "u-1", "role": "LR", "exp": time.Now().Add(-time.Minute).Unix()})
	require.NoError(t, s.Put(ctx, KeyToken, token))

	_, err := s.Resolve(ctx)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestStore_ClaimsFallback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	token := signToken(t, jwt.MapClaims{"sub": "u-7", "role": "pickup", "branchId": "br-3"})
	require.NoError(t, s.Put(ctx, KeyToken, token))

	p, err := s.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-7", p.UserID)
	assert.Equal(t, domain.RolePickup, p.Role)
	assert.Equal(t, "br-3", p.BranchID)
	assert.True(t, p.ExpiresAt.IsZero())
}

func TestStore_GarbageToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, KeyToken, "not-a-jwt"))

	_, err := s.Resolve(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	token := signToken(t, jwt.MapClaims{"sub": "u-1", "role": "ADMIN"})
	require.NoError(t, s.Save(ctx, token, domain.User{ID: "u-1"}))
	require.NoError(t, s.Clear(ctx))

	_, err := s.Resolve(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	// Clearing twice is fine.
	assert.NoError(t, s.Clear(ctx))
}

func TestPrincipal(t *testing.T) {
	now := time.Now()

	assert.True(t, Principal{}.Anonymous())
	assert.True(t, Principal{UserID: "u", Role: domain.RoleUnknown}.Anonymous())
	assert.False(t, Principal{UserID: "u", Role: domain.RoleLR}.Anonymous())

	assert.False(t, Principal{}.Expired(now))
	assert.True(t, Principal{ExpiresAt: now}.Expired(now))
	assert.False(t, Principal{ExpiresAt: now.Add(time.Second)}.Expired(now))
}

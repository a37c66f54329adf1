package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"haulage/internal/commons"
	apperrors "haulage/internal/errors"
	"haulage/internal/session"
)

// UserIDHeader carries the caller's user id next to the bearer token.
const UserIDHeader = "x-user-id"

type principalKey struct{}

func WithPrincipal(ctx context.Context, p session.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (session.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(session.Principal)
	return p, ok
}

// Middleware rejects requests without a valid bearer token. When the
// x-user-id header is present it must name the token's subject.
func Middleware(issuer *Issuer, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := commons.TraceID(r.Context())

			token, err := BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("authorization header required"), logger)
				return
			}

			p, err := issuer.Verify(token)
			if err != nil {
				logger.Debug("token rejected", zap.String("traceId", traceID), zap.Error(err))
				commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("invalid or expired token"), logger)
				return
			}

			if uid := r.Header.Get(UserIDHeader); uid != "" && uid != p.UserID {
				commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("user id does not match token"), logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// Principal returns the caller stored by Middleware. Handlers mounted
// behind Middleware can rely on it being present.
func Principal(r *http.Request) (session.Principal, error) {
	p, ok := FromContext(r.Context())
	if !ok || p.Anonymous() {
		return session.Principal{}, apperrors.NewUnauthorizedError("authentication required")
	}
	return p, nil
}

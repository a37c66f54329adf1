package account

import (
	"database/sql"

	"go.uber.org/zap"

	userrepo "haulage/internal/account/repository"
	"haulage/internal/branch"
)

// NewModule returns the HTTP controller and the service, which the server
// also uses to bootstrap the first super admin.
func NewModule(db *sql.DB, issuer TokenIssuer, perms Permissions, logger *zap.Logger) (*Controller, *Service) {
	svc := NewService(userrepo.NewSQLUserRepository(db), branch.NewSQLRepository(db), issuer, perms, logger)
	return NewController(svc, logger), svc
}

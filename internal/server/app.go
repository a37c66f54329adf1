package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"haulage/internal/account"
	"haulage/internal/auth"
	"haulage/internal/authz"
	"haulage/internal/branch"
	"haulage/internal/config"
	"haulage/internal/enquiry"
	"haulage/internal/lifecycle"
	"haulage/internal/order"
)

// NewHandler wires every module over db and returns the API's router. The
// configured super admin is created first if it does not exist.
func NewHandler(ctx context.Context, db *sql.DB, cfg *config.Config, logger *zap.Logger) (http.Handler, error) {
	if err := cfg.RequireSecrets(); err != nil {
		return nil, err
	}

	enforcer, err := authz.New()
	if err != nil {
		return nil, fmt.Errorf("loading permissions: %w", err)
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token issuer: %w", err)
	}

	accountCtrl, accountSvc := account.NewModule(db, issuer, enforcer, logger)
	if err := accountSvc.Bootstrap(ctx, cfg.Auth); err != nil {
		return nil, fmt.Errorf("bootstrapping super admin: %w", err)
	}

	controllers := Controllers{
		Orders:    order.NewModule(db, lifecycle.NewPolicy(enforcer), cfg, logger),
		Branches:  branch.NewModule(db, enforcer, logger),
		Enquiries: enquiry.NewModule(db, enforcer, logger),
		Accounts:  accountCtrl,
	}
	return NewRouter(controllers, issuer, logger), nil
}

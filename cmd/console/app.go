package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"haulage/internal/authz"
	"haulage/internal/config"
	"haulage/internal/domain"
	"haulage/internal/gateway"
	"haulage/internal/lifecycle"
	"haulage/internal/session"
)

var errNotLoggedIn = errors.New("not logged in, run `login` first")

// app holds what every command needs. The session store and the API client
// are opened once per invocation in the root command's pre-run hook.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	openStore func() (*session.Store, error)
	clientOpt []gateway.Option

	store  *session.Store
	client *gateway.Client
	policy *lifecycle.Policy
	errOut io.Writer

	jsonOutput bool
}

func newApp(cfg *config.Config, logger *zap.Logger, openStore func() (*session.Store, error), opts ...gateway.Option) *app {
	return &app{
		cfg:       cfg,
		logger:    logger,
		openStore: openStore,
		clientOpt: opts,
		errOut:    os.Stderr,
	}
}

func (a *app) setup() error {
	if a.store != nil {
		return nil
	}

	enforcer, err := authz.New()
	if err != nil {
		return fmt.Errorf("loading permissions: %w", err)
	}
	a.policy = lifecycle.NewPolicy(enforcer)

	store, err := a.openStore()
	if err != nil {
		return err
	}
	a.store = store

	opts := append([]gateway.Option{
		gateway.WithAnonymous(func(err error) bool { return errors.Is(err, session.ErrNoSession) }),
	}, a.clientOpt...)

	client, err := gateway.New(gateway.Config{
		BaseURL:   a.cfg.Client.APIBaseURL,
		Timeout:   a.cfg.Client.Timeout,
		RateLimit: a.cfg.Client.RateLimit,
		Burst:     a.cfg.Client.RateBurst,
	}, store, gateway.NavigatorFunc(a.redirect), a.logger, opts...)
	if err != nil {
		_ = store.Close()
		a.store = nil
		return err
	}
	a.client = client
	return nil
}

func (a *app) teardown() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing session store", zap.Error(err))
	}
	a.store = nil
}

// redirect is the console's login page: the stale session is dropped and
// the user is told to log in again.
func (a *app) redirect(path string) {
	if path != gateway.LoginPath {
		return
	}
	if err := a.store.Clear(context.Background()); err != nil {
		a.logger.Warn("clearing rejected session", zap.Error(err))
	}
	fmt.Fprintln(a.errOut, "The API rejected the session. Run `login` to sign in again.")
}

// principal resolves the stored session. Unreadable sessions count as
// logged out.
func (a *app) principal(ctx context.Context) (session.Principal, error) {
	p, err := a.store.Resolve(ctx)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, session.ErrSessionExpired):
		return session.Principal{}, errors.New("session expired, run `login` again")
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrMalformedProfile):
		return session.Principal{}, errNotLoggedIn
	}
	return session.Principal{}, err
}

func (a *app) gatewayFor(role domain.Role) *gateway.Gateway {
	return gateway.NewGateway(a.client, role)
}

// Package session persists the console's login state (the jwt_token cookie
// plus the userId and user profile entries) in a local badger directory and
// resolves it into an explicit Principal.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"haulage/internal/domain"
)

const (
	KeyToken  = "jwt_token"
	KeyUserID = "userId"
	KeyUser   = "user"
)

var (
	ErrNoSession        = errors.New("no active session")
	ErrMalformedProfile = errors.New("stored user profile is malformed")
	ErrSessionExpired   = errors.New("session expired")
)

type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
}

type Store struct {
	db     *badger.DB
	logger *zap.Logger
	now    func() time.Time
}

func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("session path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0o700); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

func OpenInMemory(logger *zap.Logger) (*Store, error) {
	return Open(Config{InMemory: true}, logger)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save records a fresh login. All three entries are written in one
// transaction so a crash never leaves a token without its profile.
func (s *Store) Save(ctx context.Context, token string, user domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user profile: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(KeyToken), []byte(token)); err != nil {
			return err
		}
		if err := txn.Set([]byte(KeyUserID), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(KeyUser), profile)
	})
}

// Put writes a raw entry. The console uses it for "session set" and tests
// use it to plant corrupt data.
func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range []string{KeyToken, KeyUserID, KeyUser} {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Credentials returns the bearer token and user id attached to every API
// request. ErrNoSession means the caller is anonymous.
func (s *Store) Credentials(ctx context.Context) (string, string, error) {
	values, err := s.read(ctx, KeyToken, KeyUserID)
	if err != nil {
		return "", "", err
	}
	token, userID := values[KeyToken], values[KeyUserID]
	if token == "" {
		return "", "", ErrNoSession
	}
	return token, userID, nil
}

// Resolve reads the stored session once and returns the principal. A
// corrupt profile is logged and reported as ErrMalformedProfile; callers
// treat it like a logged-out session.
func (s *Store) Resolve(ctx context.Context) (Principal, error) {
	values, err := s.read(ctx, KeyToken, KeyUserID, KeyUser)
	if err != nil {
		return Principal{}, err
	}

	token := values[KeyToken]
	if token == "" {
		return Principal{}, ErrNoSession
	}

	p := Principal{Token: token, UserID: values[KeyUserID]}

	claims, err := peekClaims(token)
	if err != nil {
		s.logger.Warn("stored token is unreadable", zap.Error(err))
		return Principal{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	p.Role = domain.ParseRole(claims.Role)
	p.BranchID = claims.BranchID
	p.ExpiresAt = claims.ExpiresAt
	if p.UserID == "" {
		p.UserID = claims.Subject
	}

	if raw := values[KeyUser]; raw != "" {
		var profile domain.User
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			s.logger.Warn("stored user profile is malformed", zap.Error(err))
			return Principal{}, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
		}
		p.Name = profile.Name
		if profile.Role != domain.RoleUnknown {
			p.Role = domain.ParseRole(string(profile.Role))
		}
		if profile.BranchID != "" {
			p.BranchID = profile.BranchID
		}
	}

	if p.Expired(s.now()) {
		return Principal{}, ErrSessionExpired
	}
	return p, nil
}

func (s *Store) read(ctx context.Context, keys ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, k := range keys {
			item, err := txn.Get([]byte(k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[k] = string(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return out, nil
}

type tokenClaims struct {
	Subject   string
	Role      string
	BranchID  string
	ExpiresAt time.Time
}

// peekClaims reads the claims without verifying the signature. The server
// verifies; the console only needs role, branch and expiry for display and
// to avoid sending requests with a token it knows is stale.
func peekClaims(token string) (tokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return tokenClaims{}, err
	}

	var out tokenClaims
	out.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if v, ok := claims["role"].(string); ok {
		out.Role = v
	}
	if v, ok := claims["branchId"].(string); ok {
		out.BranchID = v
	}
	return out, nil
}

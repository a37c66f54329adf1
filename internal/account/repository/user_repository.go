package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"haulage/internal/domain"
	"haulage/internal/errors"
	"haulage/internal/infrastructure/database"
)

type SQLUserRepository struct {
	db *sql.DB
}

func NewSQLUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

const userColumns = `id, name, email, phone, role, branchId, passwordHash, createdAt`

// Create stores u. Emails are unique regardless of case.
func (r *SQLUserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO Users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, normalizeEmail(u.Email), u.Phone, string(u.Role),
		sql.NullString{String: u.BranchID, Valid: u.BranchID != ""},
		u.PasswordHash, u.CreatedAt,
	)
	if database.IsDuplicate(err) {
		return errors.NewConflictError(fmt.Sprintf("a user with email %s already exists", u.Email))
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM Users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return u, nil
}

func (r *SQLUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM Users WHERE email = ?`, normalizeEmail(email)))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		branchID  sql.NullString
		createdAt time.Time
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &role, &branchID, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	u.Role = domain.ParseRole(role)
	u.BranchID = branchID.String
	u.CreatedAt = createdAt.UTC()
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package branch

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"haulage/internal/domain"
	"haulage/internal/errors"
	"haulage/internal/infrastructure/database"
)

type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) List(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, location, createdAt FROM Branches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying branches: %w", err)
	}
	defer rows.Close()

	branches := []domain.Branch{}
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Location, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning branch row: %w", err)
		}
		b.CreatedAt = b.CreatedAt.UTC()
		branches = append(branches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating branch rows: %w", err)
	}
	return branches, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*domain.Branch, error) {
	var (
		b         domain.Branch
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, name, location, createdAt FROM Branches WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.Location, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("branch with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying branch by id: %w", err)
	}
	b.CreatedAt = createdAt.UTC()
	return &b, nil
}

func (r *SQLRepository) Create(ctx context.Context, b *domain.Branch) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO Branches (id, name, location, createdAt) VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, b.Location, b.CreatedAt,
	)
	if database.IsDuplicate(err) {
		return errors.NewConflictError(fmt.Sprintf("branch %q already exists", b.Name))
	}
	if err != nil {
		return fmt.Errorf("inserting branch: %w", err)
	}
	return nil
}

// DeleteUnreferenced removes the branch unless orders or users still point
// at it, in which case nothing changes and the references are returned.
// The row is deleted before counting so that, inside the transaction, the
// branch is locked against orders being booked onto it concurrently.
func (r *SQLRepository) DeleteUnreferenced(ctx context.Context, id string) (References, error) {
	var refs References

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return refs, fmt.Errorf("beginning branch delete: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM Branches WHERE id = ?`, id)
	if err != nil {
		return refs, fmt.Errorf("deleting branch: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return refs, fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return refs, errors.NewNotFoundError(fmt.Sprintf("branch with id %s not found", id))
	}

	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM Orders WHERE branchId = ?`, id).Scan(&refs.Orders); err != nil {
		return refs, fmt.Errorf("counting orders by branch: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM Users WHERE branchId = ?`, id).Scan(&refs.Users); err != nil {
		return refs, fmt.Errorf("counting users by branch: %w", err)
	}
	if refs.Any() {
		return refs, nil
	}

	if err := tx.Commit(); err != nil {
		return refs, fmt.Errorf("committing branch delete: %w", err)
	}
	return refs, nil
}

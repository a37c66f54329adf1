package enquiry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"haulage/internal/domain"
	"haulage/internal/errors"
)

type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const enquiryColumns = `id, company, email, phone, message, role, status, createdAt`

func (r *SQLRepository) Create(ctx context.Context, e *domain.Enquiry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO Enquiries (`+enquiryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Company, e.Email, e.Phone, e.Message, e.Role, string(e.Status), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting enquiry: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context) ([]domain.Enquiry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+enquiryColumns+` FROM Enquiries ORDER BY createdAt DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying enquiries: %w", err)
	}
	defer rows.Close()

	out := []domain.Enquiry{}
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning enquiry row: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enquiry rows: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*domain.Enquiry, error) {
	e, err := scanEnquiry(r.db.QueryRowContext(ctx, `SELECT `+enquiryColumns+` FROM Enquiries WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("enquiry with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying enquiry by id: %w", err)
	}
	return e, nil
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, id string, status domain.EnquiryStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE Enquiries SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating enquiry status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("enquiry with id %s not found", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnquiry(row rowScanner) (*domain.Enquiry, error) {
	var (
		e         domain.Enquiry
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&e.ID, &e.Company, &e.Email, &e.Phone, &e.Message, &e.Role, &status, &createdAt); err != nil {
		return nil, err
	}
	e.Status = domain.EnquiryStatus(status)
	e.CreatedAt = createdAt.UTC()
	return &e, nil
}

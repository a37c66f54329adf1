package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"haulage/internal/domain"
	"haulage/internal/errors"
)

// ListFilter narrows a listing in SQL. Empty fields do not filter. Role
// visibility is still applied by the caller on the result.
type ListFilter struct {
	BranchID   string
	CustomerID string
	Statuses   []domain.Status
}

type SQLOrderRepository struct {
	db *sql.DB
}

func NewSQLOrderRepository(db *sql.DB) *SQLOrderRepository {
	return &SQLOrderRepository{db: db}
}

const orderColumns = `id, customerId, branchId, assistantId, createdById,
		bookedCompanyName, bookedCustomerName, bookedEmail, bookedPhoneNumber,
		pickups, deliveries, packages, vehicles,
		rate, rateQuotedBy, notes,
		vehicleNumber, driverName, driverMobile, pickupTeamNotes, documents,
		status, createdAt, updatedAt`

// Create stores order. An order booked onto a branch is inserted only while
// that branch row exists, so it cannot race a branch delete.
func (r *SQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	cols, err := encodeOrder(order)
	if err != nil {
		return err
	}

	args := append([]any{order.ID}, cols...)
	args = append(args, order.CreatedAt, order.UpdatedAt)

	values := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	query := `INSERT INTO Orders (` + orderColumns + `) VALUES (` + values + `)`
	if order.BranchID != "" {
		query = `INSERT INTO Orders (` + orderColumns + `) SELECT ` + values + ` FROM Branches WHERE id = ?`
		args = append(args, order.BranchID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("branch with id %s not found", order.BranchID))
	}
	return nil
}

func (r *SQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}
	return order, nil
}

func (r *SQLOrderRepository) List(ctx context.Context, filter ListFilter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.BranchID != "" {
		where = append(where, "branchId = ?")
		args = append(args, filter.BranchID)
	}
	if filter.CustomerID != "" {
		where = append(where, "customerId = ?")
		args = append(args, filter.CustomerID)
	}
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			marks[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}

	query := `SELECT ` + orderColumns + ` FROM Orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY createdAt DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// Update overwrites the stored row with order. Concurrent writers are not
// coordinated: the last write wins.
func (r *SQLOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	cols, err := encodeOrder(order)
	if err != nil {
		return err
	}

	query := `UPDATE Orders SET
		customerId = ?, branchId = ?, assistantId = ?, createdById = ?,
		bookedCompanyName = ?, bookedCustomerName = ?, bookedEmail = ?, bookedPhoneNumber = ?,
		pickups = ?, deliveries = ?, packages = ?, vehicles = ?,
		rate = ?, rateQuotedBy = ?, notes = ?,
		vehicleNumber = ?, driverName = ?, driverMobile = ?, pickupTeamNotes = ?, documents = ?,
		status = ?, updatedAt = ?
		WHERE id = ?`

	args := append(cols, order.UpdatedAt, order.ID)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", order.ID))
	}
	return nil
}

func (r *SQLOrderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	return nil
}

// encodeOrder returns every column after id and before the timestamps.
func encodeOrder(o *domain.Order) ([]any, error) {
	pickups, err := marshalList(o.Pickups)
	if err != nil {
		return nil, err
	}
	deliveries, err := marshalList(o.Deliveries)
	if err != nil {
		return nil, err
	}
	packages, err := marshalList(o.Packages)
	if err != nil {
		return nil, err
	}
	vehicles, err := marshalList(o.Vehicles)
	if err != nil {
		return nil, err
	}
	documents, err := json.Marshal(o.Documents)
	if err != nil {
		return nil, fmt.Errorf("encoding documents: %w", err)
	}

	return []any{
		o.CustomerID, nullable(o.BranchID), o.AssistantID, o.CreatedByID,
		o.BookedCompanyName, o.BookedCustomerName, o.BookedEmail, o.BookedPhoneNumber,
		pickups, deliveries, packages, vehicles,
		o.Rate, o.RateQuotedBy, o.Notes,
		o.VehicleNumber, o.DriverName, o.DriverMobile, o.PickupTeamNotes, string(documents),
		string(o.Status),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o                                       domain.Order
		branchID                                sql.NullString
		pickups, deliveries, packages, vehicles string
		documents, status                       string
		createdAt, updatedAt                    time.Time
	)

	err := row.Scan(
		&o.ID, &o.CustomerID, &branchID, &o.AssistantID, &o.CreatedByID,
		&o.BookedCompanyName, &o.BookedCustomerName, &o.BookedEmail, &o.BookedPhoneNumber,
		&pickups, &deliveries, &packages, &vehicles,
		&o.Rate, &o.RateQuotedBy, &o.Notes,
		&o.VehicleNumber, &o.DriverName, &o.DriverMobile, &o.PickupTeamNotes, &documents,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.BranchID = branchID.String
	o.Status = domain.Status(status)
	o.CreatedAt = createdAt.UTC()
	o.UpdatedAt = updatedAt.UTC()

	if err := unmarshalColumn("pickups", pickups, &o.Pickups); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("deliveries", deliveries, &o.Deliveries); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("packages", packages, &o.Packages); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("vehicles", vehicles, &o.Vehicles); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("documents", documents, &o.Documents); err != nil {
		return nil, err
	}
	return &o, nil
}

func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding order column: %w", err)
	}
	return string(raw), nil
}

func unmarshalColumn(name, raw string, dst any) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decoding %s column: %w", name, err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package postgres

import (
	"context"
	"database/sql"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

const disputeColumns = `id, order_id, customer_id, center_id, reason, description, status, created_at, updated_at`

type disputeRepository struct {
	db *sql.DB
}

func NewDisputeRepository(db *sql.DB) repository.DisputeRepository {
	return &disputeRepository{db: db}
}

func (r *disputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	query := `INSERT INTO disputes (` + disputeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	logger.DatabaseCall("INSERT", "disputes", "disputeID", d.ID, "orderID", d.OrderID)
	_, err := r.db.ExecContext(ctx, query, d.ID, d.OrderID, d.CustomerID, d.CenterID, d.Reason, d.Description,
		d.Status, d.CreatedAt, d.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "disputeID", d.ID)
	return mapError(err, "dispute", d.ID)
}

func (r *disputeRepository) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`
	d, err := scanDispute(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "dispute", id)
	}
	return d, nil
}

func (r *disputeRepository) Update(ctx context.Context, d *domain.Dispute, from domain.DisputeStatus) error {
	logger.DatabaseCall("UPDATE", "disputes", "disputeID", d.ID, "from", from, "status", d.Status)
	res, err := r.db.ExecContext(ctx, `UPDATE disputes SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`,
		d.Status, d.UpdatedAt, d.ID, from)
	if err != nil {
		return mapError(err, "dispute", d.ID)
	}
	return requireTransitioned(res, "dispute", d.ID, string(from))
}

func (r *disputeRepository) List(ctx context.Context, f repository.DisputeFilter) ([]domain.Dispute, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.CustomerID != "" {
		w.add("customer_id = $%d", f.CustomerID)
	}
	if f.CenterID != "" {
		w.add("center_id = $%d", f.CenterID)
	}
	if f.OrderID != "" {
		w.add("order_id = $%d", f.OrderID)
	}
	query := `SELECT ` + disputeColumns + ` FROM disputes` + w.String() + ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disputes []domain.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, *d)
	}
	return disputes, rows.Err()
}

func scanDispute(row rowScanner) (*domain.Dispute, error) {
	var d domain.Dispute
	if err := row.Scan(&d.ID, &d.OrderID, &d.CustomerID, &d.CenterID, &d.Reason, &d.Description, &d.Status,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

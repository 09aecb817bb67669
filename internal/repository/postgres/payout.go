package postgres

import (
	"context"
	"database/sql"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

const payoutColumns = `id, order_id, vendor_id, gross, admin_commission, center_share, net, status, created_at, updated_at`

type payoutRepository struct {
	db *sql.DB
}

func NewPayoutRepository(db *sql.DB) repository.PayoutRepository {
	return &payoutRepository{db: db}
}

// Create relies on the unique order_id index to keep one payout per order.
func (r *payoutRepository) Create(ctx context.Context, p *domain.Payout) error {
	query := `INSERT INTO payouts (` + payoutColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall("INSERT", "payouts", "payoutID", p.ID, "orderID", p.OrderID)
	_, err := r.db.ExecContext(ctx, query, p.ID, p.OrderID, p.VendorID, p.Gross, p.AdminCommission, p.CenterShare,
		p.Net, p.Status, p.CreatedAt, p.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "payoutID", p.ID)
	return mapError(err, "payout", p.ID)
}

func (r *payoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`
	p, err := scanPayout(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "payout", id)
	}
	return p, nil
}

func (r *payoutRepository) Update(ctx context.Context, p *domain.Payout, from domain.PayoutStatus) error {
	logger.DatabaseCall("UPDATE", "payouts", "payoutID", p.ID, "from", from, "status", p.Status)
	res, err := r.db.ExecContext(ctx, `UPDATE payouts SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`,
		p.Status, p.UpdatedAt, p.ID, from)
	if err != nil {
		return mapError(err, "payout", p.ID)
	}
	return requireTransitioned(res, "payout", p.ID, string(from))
}

func (r *payoutRepository) List(ctx context.Context, f repository.PayoutFilter) ([]domain.Payout, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.VendorID != "" {
		w.add("vendor_id = $%d", f.VendorID)
	}
	query := `SELECT ` + payoutColumns + ` FROM payouts` + w.String() + ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *p)
	}
	return payouts, rows.Err()
}

func scanPayout(row rowScanner) (*domain.Payout, error) {
	var p domain.Payout
	if err := row.Scan(&p.ID, &p.OrderID, &p.VendorID, &p.Gross, &p.AdminCommission, &p.CenterShare, &p.Net,
		&p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

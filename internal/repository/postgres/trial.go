package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

const trialColumns = `id, customer_id, customer_name, customer_phone, product_id, product_name, center_id, center_name,
	trial_date, status, created_at`

type trialBookingRepository struct {
	db   *sql.DB
	slot time.Duration
}

func NewTrialBookingRepository(db *sql.DB, slot time.Duration) repository.TrialBookingRepository {
	return &trialBookingRepository{db: db, slot: slot}
}

// Create inserts the booking. A second live booking for the same product,
// center and slot violates idx_trial_bookings_slot and maps to ErrConflict.
func (r *trialBookingRepository) Create(ctx context.Context, b *domain.TrialBooking) error {
	logger.EnterMethod("trialBookingRepository.Create", "trialID", b.ID, "productID", b.ProductID, "centerID", b.CenterID)

	query := `INSERT INTO trial_bookings (` + trialColumns + `, slot_start)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	logger.DatabaseCall("INSERT", "trial_bookings", "trialID", b.ID)
	_, err := r.db.ExecContext(ctx, query, b.ID, b.CustomerID, b.CustomerName, b.CustomerPhone, b.ProductID,
		b.ProductName, b.CenterID, b.CenterName, b.TrialDate, b.Status, b.CreatedAt, b.Slot(r.slot))
	logger.DatabaseResult("INSERT", 1, err, "trialID", b.ID)
	if err != nil {
		logger.ExitMethodWithError("trialBookingRepository.Create", err, "trialID", b.ID)
		return mapError(err, "trial", b.ID)
	}
	logger.ExitMethod("trialBookingRepository.Create", "trialID", b.ID)
	return nil
}

func (r *trialBookingRepository) GetByID(ctx context.Context, id string) (*domain.TrialBooking, error) {
	query := `SELECT ` + trialColumns + ` FROM trial_bookings WHERE id = $1`
	b, err := scanTrial(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "trial", id)
	}
	return b, nil
}

func (r *trialBookingRepository) Update(ctx context.Context, b *domain.TrialBooking, from domain.TrialStatus) error {
	logger.DatabaseCall("UPDATE", "trial_bookings", "trialID", b.ID, "from", from, "status", b.Status)
	res, err := r.db.ExecContext(ctx, `UPDATE trial_bookings SET status=$1 WHERE id=$2 AND status=$3`, b.Status, b.ID, from)
	if err != nil {
		return mapError(err, "trial", b.ID)
	}
	return requireTransitioned(res, "trial", b.ID, string(from))
}

func (r *trialBookingRepository) List(ctx context.Context, f repository.TrialFilter) ([]domain.TrialBooking, error) {
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
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.From != nil {
		w.add("trial_date >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("trial_date < $%d", *f.To)
	}
	query := `SELECT ` + trialColumns + ` FROM trial_bookings` + w.String() + ` ORDER BY trial_date ASC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.TrialBooking
	for rows.Next() {
		b, err := scanTrial(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanTrial(row rowScanner) (*domain.TrialBooking, error) {
	var b domain.TrialBooking
	err := row.Scan(&b.ID, &b.CustomerID, &b.CustomerName, &b.CustomerPhone, &b.ProductID, &b.ProductName,
		&b.CenterID, &b.CenterName, &b.TrialDate, &b.Status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

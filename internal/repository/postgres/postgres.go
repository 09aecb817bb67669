package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
	repository.OrderRepository
	repository.TrialBookingRepository
	repository.SanitizationRepository
	repository.DisputeRepository
	repository.NotificationRepository
	repository.PayoutRepository
}

// NewStore wires every table repository onto db. slot is the trial slot
// length used by the double-booking index.
func NewStore(db *sql.DB, slot time.Duration) *Store {
	return &Store{
		db:                     db,
		OrderRepository:        NewOrderRepository(db),
		TrialBookingRepository: NewTrialBookingRepository(db, slot),
		SanitizationRepository: NewSanitizationRepository(db),
		DisputeRepository:      NewDisputeRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		PayoutRepository:       NewPayoutRepository(db),
	}
}

func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Orders:        s.OrderRepository,
		Trials:        s.TrialBookingRepository,
		Sanitizations: s.SanitizationRepository,
		Disputes:      s.DisputeRepository,
		Notifications: s.NotificationRepository,
		Payouts:       s.PayoutRepository,
	}
}

// Open connects, pings and migrates the database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("Database connected and migrated")
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("MIGRATE", "schema")
	_, err := db.ExecContext(ctx, schema)
	logger.DatabaseResult("MIGRATE", 0, err)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL,
	vendor_id TEXT NOT NULL DEFAULT '',
	product_id TEXT NOT NULL,
	product_name TEXT NOT NULL DEFAULT '',
	product_image TEXT NOT NULL DEFAULT '',
	center_id TEXT NOT NULL,
	center_name TEXT NOT NULL DEFAULT '',
	rental_price BIGINT NOT NULL,
	deposit_amount BIGINT NOT NULL DEFAULT 0,
	rental_start TIMESTAMPTZ,
	rental_end TIMESTAMPTZ,
	status TEXT NOT NULL,
	damage_charge BIGINT,
	return_condition TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);

CREATE TABLE IF NOT EXISTS trial_bookings (
	id TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL,
	customer_name TEXT NOT NULL DEFAULT '',
	customer_phone TEXT NOT NULL DEFAULT '',
	product_id TEXT NOT NULL,
	product_name TEXT NOT NULL DEFAULT '',
	center_id TEXT NOT NULL,
	center_name TEXT NOT NULL DEFAULT '',
	trial_date TIMESTAMPTZ NOT NULL,
	slot_start TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_trial_bookings_slot
	ON trial_bookings (product_id, center_id, slot_start) WHERE status <> 'cancelled';

CREATE TABLE IF NOT EXISTS sanitization_records (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	product_id TEXT NOT NULL DEFAULT '',
	center_id TEXT NOT NULL DEFAULT '',
	cleaning_type TEXT NOT NULL,
	chemical_used TEXT NOT NULL DEFAULT '',
	staff_name TEXT NOT NULL,
	date_time TIMESTAMPTZ NOT NULL,
	before_image_url TEXT NOT NULL DEFAULT '',
	after_image_url TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	tag_id TEXT UNIQUE,
	seq BIGSERIAL
);
ALTER TABLE sanitization_records ADD COLUMN IF NOT EXISTS seq BIGSERIAL;
CREATE INDEX IF NOT EXISTS idx_sanitization_records_order ON sanitization_records (order_id, date_time DESC, seq DESC);

CREATE TABLE IF NOT EXISTS disputes (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	customer_id TEXT NOT NULL,
	center_id TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL,
	message TEXT NOT NULL,
	type TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	attributes JSONB,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, is_read);

CREATE TABLE IF NOT EXISTS payouts (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL UNIQUE,
	vendor_id TEXT NOT NULL DEFAULT '',
	gross BIGINT NOT NULL,
	admin_commission BIGINT NOT NULL,
	center_share BIGINT NOT NULL,
	net BIGINT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payouts_vendor ON payouts (vendor_id, status);
`

type rowScanner interface {
	Scan(dest ...any) error
}

// mapError converts driver errors into the domain taxonomy.
func mapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(entity, id)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s %s", domain.ErrConflict, entity, id)
	}
	return err
}

func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(entity, id)
	}
	return nil
}

// requireTransitioned reports a zero-row status compare-and-set as a lost race.
// Rows are never deleted, so a miss means another writer moved the status.
func requireTransitioned(res sql.Result, entity, id, from string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.StaleStatusError{Entity: entity, ID: id, Expected: from}
	}
	return nil
}

// whereBuilder accumulates AND-ed conditions with positional parameters.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	s := " WHERE " + w.clauses[0]
	for _, c := range w.clauses[1:] {
		s += " AND " + c
	}
	return s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

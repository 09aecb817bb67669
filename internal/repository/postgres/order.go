package postgres

import (
	"context"
	"database/sql"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

const orderColumns = `id, customer_id, vendor_id, product_id, product_name, product_image, center_id, center_name,
	rental_price, deposit_amount, rental_start, rental_end, status, damage_charge, return_condition, notes, created_at, updated_at`

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	logger.EnterMethod("orderRepository.Create", "orderID", o.ID, "customerID", o.CustomerID)

	query := `INSERT INTO orders (` + orderColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	logger.DatabaseCall("INSERT", "orders", "orderID", o.ID)
	res, err := r.db.ExecContext(ctx, query,
		o.ID, o.CustomerID, o.VendorID, o.ProductID, o.ProductName, o.ProductImage, o.CenterID, o.CenterName,
		o.RentalPrice, o.DepositAmount, nullTime(o.RentalStart), nullTime(o.RentalEnd), o.Status,
		nullInt64(o.DamageCharge), o.ReturnCondition, o.Notes, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "orderID", o.ID)
		logger.ExitMethodWithError("orderRepository.Create", err, "orderID", o.ID)
		return mapError(err, "order", o.ID)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("INSERT", n, nil, "orderID", o.ID)
	logger.ExitMethod("orderRepository.Create", "orderID", o.ID)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	logger.DatabaseCall("SELECT", "orders", "orderID", id)
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "order", id)
	}
	return o, nil
}

// Update writes o only while the stored row is still in status from.
func (r *orderRepository) Update(ctx context.Context, o *domain.Order, from domain.OrderStatus) error {
	query := `UPDATE orders SET status=$1, notes=$2, rental_start=$3, rental_end=$4, damage_charge=$5,
	          return_condition=$6, updated_at=$7 WHERE id=$8 AND status=$9`
	logger.DatabaseCall("UPDATE", "orders", "orderID", o.ID, "from", from, "status", o.Status)
	res, err := r.db.ExecContext(ctx, query, o.Status, o.Notes, nullTime(o.RentalStart), nullTime(o.RentalEnd),
		nullInt64(o.DamageCharge), o.ReturnCondition, o.UpdatedAt, o.ID, from)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "orderID", o.ID)
		return mapError(err, "order", o.ID)
	}
	return requireTransitioned(res, "order", o.ID, string(from))
}

func (r *orderRepository) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.CustomerID != "" {
		w.add("customer_id = $%d", f.CustomerID)
	}
	if f.VendorID != "" {
		w.add("vendor_id = $%d", f.VendorID)
	}
	if f.CenterID != "" {
		w.add("center_id = $%d", f.CenterID)
	}
	query := `SELECT ` + orderColumns + ` FROM orders` + w.String() + ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var start, end sql.NullTime
	var damage sql.NullInt64
	err := row.Scan(&o.ID, &o.CustomerID, &o.VendorID, &o.ProductID, &o.ProductName, &o.ProductImage,
		&o.CenterID, &o.CenterName, &o.RentalPrice, &o.DepositAmount, &start, &end, &o.Status, &damage,
		&o.ReturnCondition, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.RentalStart = timePtr(start)
	o.RentalEnd = timePtr(end)
	if damage.Valid {
		d := damage.Int64
		o.DamageCharge = &d
	}
	return &o, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

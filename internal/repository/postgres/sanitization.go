package postgres

import (
	"context"
	"database/sql"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

const sanitizationColumns = `id, order_id, product_id, center_id, cleaning_type, chemical_used, staff_name, date_time,
	before_image_url, after_image_url, status, tag_id`

type sanitizationRepository struct {
	db *sql.DB
}

func NewSanitizationRepository(db *sql.DB) repository.SanitizationRepository {
	return &sanitizationRepository{db: db}
}

func (r *sanitizationRepository) Append(ctx context.Context, rec *domain.SanitizationRecord) error {
	logger.EnterMethod("sanitizationRepository.Append", "recordID", rec.ID, "orderID", rec.OrderID, "status", rec.Status)

	tag := sql.NullString{String: rec.TagID, Valid: rec.TagID != ""}
	query := `INSERT INTO sanitization_records (` + sanitizationColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	logger.DatabaseCall("INSERT", "sanitization_records", "recordID", rec.ID)
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.OrderID, rec.ProductID, rec.CenterID, rec.CleaningType,
		rec.ChemicalUsed, rec.StaffName, rec.DateTime, rec.BeforeImageURL, rec.AfterImageURL, rec.Status, tag)
	logger.DatabaseResult("INSERT", 1, err, "recordID", rec.ID)
	if err != nil {
		logger.ExitMethodWithError("sanitizationRepository.Append", err, "recordID", rec.ID)
		return mapError(err, "sanitization record", rec.ID)
	}
	logger.ExitMethod("sanitizationRepository.Append", "recordID", rec.ID, "tagID", rec.TagID)
	return nil
}

// Records sharing a timestamp are returned latest insert first.
func (r *sanitizationRepository) ListRecent(ctx context.Context, limit int) ([]domain.SanitizationRecord, error) {
	query := `SELECT ` + sanitizationColumns + ` FROM sanitization_records ORDER BY date_time DESC, seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

func (r *sanitizationRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.SanitizationRecord, error) {
	query := `SELECT ` + sanitizationColumns + ` FROM sanitization_records WHERE order_id = $1 ORDER BY date_time DESC, seq DESC`
	return r.query(ctx, query, orderID)
}

func (r *sanitizationRepository) query(ctx context.Context, query string, args ...any) ([]domain.SanitizationRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.SanitizationRecord
	for rows.Next() {
		var rec domain.SanitizationRecord
		var tag sql.NullString
		if err := rows.Scan(&rec.ID, &rec.OrderID, &rec.ProductID, &rec.CenterID, &rec.CleaningType, &rec.ChemicalUsed,
			&rec.StaffName, &rec.DateTime, &rec.BeforeImageURL, &rec.AfterImageURL, &rec.Status, &tag); err != nil {
			return nil, err
		}
		rec.TagID = tag.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "userID", n.UserID, "role", n.Role, "type", n.Type)

	var attrs any
	if len(n.Attributes) > 0 {
		b, err := json.Marshal(n.Attributes)
		if err != nil {
			logger.ExitMethodWithError("notificationRepository.Create", err, "reason", "failed to marshal attributes")
			return err
		}
		logger.Debug("Notification attributes marshaled", "attributesJSON", string(b))
		attrs = b
	}

	query := `INSERT INTO notifications (id, user_id, role, message, type, is_read, attributes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	logger.DatabaseCall("INSERT", "notifications", "userID", n.UserID)

	_, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, n.Role, n.Message, n.Type, n.Read, attrs, n.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "userID", n.UserID)
		return mapError(err, "notification", n.ID)
	}
	logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT id, user_id, role, message, type, is_read, attributes, created_at FROM notifications WHERE id = $1`
	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "notification", id)
	}
	return n, nil
}

func (r *notificationRepository) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	query := `SELECT id, user_id, role, message, type, is_read, attributes, created_at
	          FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// MarkAsRead only ever sets is_read; re-marking a read notification still
// matches the row and succeeds.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(result, "notification", id)
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	return count, err
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var attrs []byte
	if err := row.Scan(&n.ID, &n.UserID, &n.Role, &n.Message, &n.Type, &n.Read, &attrs, &n.CreatedAt); err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
			return nil, err
		}
	}
	return &n, nil
}

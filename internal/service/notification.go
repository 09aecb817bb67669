package service

import (
	"context"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"

	"github.com/google/uuid"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	clock    Clock
}

func NewNotificationService(noteRepo repository.NotificationRepository, clock Clock) NotificationService {
	return &notificationService{noteRepo: noteRepo, clock: clock}
}

func (s *notificationService) Add(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if err := domain.ValidateStruct(n); err != nil {
		return nil, err
	}
	if !n.Type.Valid() {
		return nil, domain.NewValidationError("type", "must be one of [info success warning error]")
	}
	if !n.Role.Valid() {
		return nil, domain.NewValidationError("role", "must be one of [customer vendor center admin]")
	}
	if n.ID == "" {
		n.ID = "notif-" + uuid.NewString()
	}
	n.Read = false
	n.CreatedAt = s.clock.now()

	if err := s.noteRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *notificationService) List(ctx context.Context, actor domain.Principal) ([]domain.Notification, error) {
	return s.noteRepo.List(ctx, actor.UserID)
}

// MarkRead flips read to true. Marking an already read notification is a
// no-op.
func (s *notificationService) MarkRead(ctx context.Context, actor domain.Principal, id string) error {
	n, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != actor.UserID {
		return forbidden("notification %s belongs to another user", id)
	}
	if n.Read {
		return nil
	}
	logger.Debug("Marking notification read", "notificationID", id, "userID", actor.UserID)
	return s.noteRepo.MarkAsRead(ctx, id, actor.UserID)
}

func (s *notificationService) UnreadCount(ctx context.Context, actor domain.Principal) (int, error) {
	return s.noteRepo.CountUnread(ctx, actor.UserID)
}

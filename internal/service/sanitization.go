package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/storage"

	"github.com/google/uuid"
)

const tagPrefix = "SANT-"

type sanitizationService struct {
	sanitizationRepo repository.SanitizationRepository
	orderRepo        repository.OrderRepository
	images           storage.ImageStore
	emitter          *Emitter
	clock            Clock
}

func NewSanitizationService(
	sanitizationRepo repository.SanitizationRepository,
	orderRepo repository.OrderRepository,
	images storage.ImageStore,
	emitter *Emitter,
	clock Clock,
) SanitizationService {
	return &sanitizationService{
		sanitizationRepo: sanitizationRepo,
		orderRepo:        orderRepo,
		images:           images,
		emitter:          emitter,
		clock:            clock,
	}
}

// RecordSanitization appends an audit entry for an order. Approved entries
// are issued a fresh tag; any tag supplied by the caller is discarded.
func (s *sanitizationService) RecordSanitization(ctx context.Context, actor domain.Principal, r *domain.SanitizationRecord) (*domain.SanitizationRecord, error) {
	logger.EnterMethod("sanitizationService.RecordSanitization", "orderID", r.OrderID, "status", r.Status, "actor", actor.UserID)

	if actor.Role != domain.RoleCenter && !actor.IsAdmin() {
		return nil, forbidden("%s cannot record sanitization", actor.Role)
	}
	if err := domain.ValidateStruct(r); err != nil {
		return nil, err
	}
	if !r.Status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of [approved recleanRequired]")
	}
	if !r.CleaningType.Valid() {
		return nil, domain.NewValidationError("cleaning_type", "must be one of [dry_clean steam uv chemical combined]")
	}

	order, err := s.orderRepo.GetByID(ctx, r.OrderID)
	if err != nil {
		logger.ExitMethodWithError("sanitizationService.RecordSanitization", err, "orderID", r.OrderID)
		return nil, err
	}
	if actor.Role == domain.RoleCenter && order.CenterID != actor.UserID {
		return nil, forbidden("order %s belongs to another center", order.ID)
	}

	r.ID = "SAN-" + uuid.NewString()
	r.ProductID = order.ProductID
	r.CenterID = order.CenterID
	r.DateTime = s.clock.now()
	r.TagID = ""
	if r.Status == domain.SanitizationStatusApproved {
		r.TagID = newTagID()
	}

	if err := s.sanitizationRepo.Append(ctx, r); err != nil {
		logger.ExitMethodWithError("sanitizationService.RecordSanitization", err, "orderID", r.OrderID)
		return nil, err
	}

	s.emitter.Emit(ctx, domain.Event{
		Type:      domain.EventSanitizationRecorded,
		EntityID:  r.ID,
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		Attributes: map[string]string{
			domain.AttrOrderID:     r.OrderID,
			domain.AttrCenterID:    r.CenterID,
			domain.AttrVendorID:    order.VendorID,
			domain.AttrCustomerID:  order.CustomerID,
			domain.AttrProductName: order.ProductName,
			domain.AttrTagID:       r.TagID,
			domain.AttrTo:          string(r.Status),
		},
		OccurredAt: r.DateTime,
	})
	logger.ExitMethod("sanitizationService.RecordSanitization", "recordID", r.ID, "tagID", r.TagID)
	return r, nil
}

func newTagID() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return tagPrefix + hex[:12]
}

func (s *sanitizationService) ListRecent(ctx context.Context, actor domain.Principal, limit int) ([]domain.SanitizationRecord, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return s.sanitizationRepo.ListRecent(ctx, limit)
	case domain.RoleCenter:
		all, err := s.sanitizationRepo.ListRecent(ctx, 0)
		if err != nil {
			return nil, err
		}
		out := make([]domain.SanitizationRecord, 0, len(all))
		for _, r := range all {
			if r.CenterID != actor.UserID {
				continue
			}
			out = append(out, r)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return out, nil
	}
	return nil, forbidden("%s cannot list sanitization records", actor.Role)
}

// ForOrder returns the audit trail of one order to anyone who can see the
// order.
func (s *sanitizationService) ForOrder(ctx context.Context, actor domain.Principal, orderID string) ([]domain.SanitizationRecord, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.VisibleTo(actor) {
		return nil, forbidden("order %s is not visible to %s", orderID, actor.UserID)
	}
	return s.sanitizationRepo.ListByOrder(ctx, orderID)
}

// ApprovedTag returns the tag of the order's latest record, or "" when that
// record asks for recleaning or no record exists.
func (s *sanitizationService) ApprovedTag(ctx context.Context, orderID string) (string, error) {
	records, err := s.sanitizationRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if len(records) == 0 || !records[0].HasValidTag() {
		return "", nil
	}
	return records[0].TagID, nil
}

func (s *sanitizationService) UploadImage(ctx context.Context, actor domain.Principal, orderID, stage, contentType string, r io.Reader) (string, error) {
	if s.images == nil {
		return "", errors.New("image storage is not configured")
	}
	if actor.Role != domain.RoleCenter && !actor.IsAdmin() {
		return "", forbidden("%s cannot upload sanitization images", actor.Role)
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if actor.Role == domain.RoleCenter && order.CenterID != actor.UserID {
		return "", forbidden("order %s belongs to another center", orderID)
	}

	key, err := storage.NewImageKey(orderID, stage, contentType)
	if err != nil {
		return "", err
	}
	url, err := s.images.Save(ctx, key, r)
	if err != nil {
		logger.Error("Failed to store sanitization image", "orderID", orderID, "key", key, "error", err)
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	logger.Info("Stored sanitization image", "orderID", orderID, "key", key)
	return url, nil
}

func (s *sanitizationService) OpenImage(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}
	return s.images.Open(ctx, key)
}

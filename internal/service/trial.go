package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"

	"github.com/google/uuid"
)

// DefaultTrialSlot is the length of one trial appointment at a center.
const DefaultTrialSlot = 30 * time.Minute

type trialService struct {
	trialRepo repository.TrialBookingRepository
	catalog   Catalog
	emitter   *Emitter
	clock     Clock
	slot      time.Duration
	slotLocks *keyedMutex
	locks     *keyedMutex
}

func NewTrialService(
	trialRepo repository.TrialBookingRepository,
	catalog Catalog,
	emitter *Emitter,
	clock Clock,
	slot time.Duration,
) TrialService {
	if slot <= 0 {
		slot = DefaultTrialSlot
	}
	return &trialService{
		trialRepo: trialRepo,
		catalog:   catalog,
		emitter:   emitter,
		clock:     clock,
		slot:      slot,
		slotLocks: newKeyedMutex(),
		locks:     newKeyedMutex(),
	}
}

func (s *trialService) BookTrial(ctx context.Context, actor domain.Principal, b *domain.TrialBooking) (*domain.TrialBooking, error) {
	logger.EnterMethod("trialService.BookTrial", "actor", actor.UserID, "productID", b.ProductID, "centerID", b.CenterID)

	switch actor.Role {
	case domain.RoleCustomer:
		if b.CustomerID == "" {
			b.CustomerID = actor.UserID
		}
		if b.CustomerID != actor.UserID {
			return nil, forbidden("customers can only book trials for themselves")
		}
	case domain.RoleAdmin:
	default:
		return nil, forbidden("%s cannot book trials", actor.Role)
	}
	if !b.TrialDate.IsZero() && !b.TrialDate.After(s.clock.now()) {
		return nil, domain.NewValidationError("trial_date", "must be in the future")
	}

	b.Status = domain.TrialStatusPending
	out, err := s.book(ctx, actor, b)
	if err != nil {
		logger.ExitMethodWithError("trialService.BookTrial", err, "productID", b.ProductID)
		return nil, err
	}
	logger.ExitMethod("trialService.BookTrial", "trialID", out.ID)
	return out, nil
}

// BookWalkIn records a customer who arrived at the center without a booking.
// The trial is confirmed immediately.
func (s *trialService) BookWalkIn(ctx context.Context, actor domain.Principal, b *domain.TrialBooking) (*domain.TrialBooking, error) {
	switch actor.Role {
	case domain.RoleCenter:
		if b.CenterID == "" {
			b.CenterID = actor.UserID
		}
		if b.CenterID != actor.UserID {
			return nil, forbidden("centers can only record walk-ins at their own center")
		}
	case domain.RoleAdmin:
	default:
		return nil, forbidden("%s cannot record walk-in trials", actor.Role)
	}
	if strings.TrimSpace(b.CustomerName) == "" {
		return nil, domain.NewValidationError("customer_name", "is required")
	}
	if b.CustomerID == "" {
		b.CustomerID = "walkin-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	if b.TrialDate.IsZero() {
		b.TrialDate = s.clock.now()
	}
	b.Status = domain.TrialStatusConfirmed
	return s.book(ctx, actor, b)
}

func (s *trialService) book(ctx context.Context, actor domain.Principal, b *domain.TrialBooking) (*domain.TrialBooking, error) {
	if err := domain.ValidateStruct(b); err != nil {
		return nil, err
	}
	if err := s.resolveNames(ctx, b); err != nil {
		return nil, err
	}

	unlock := s.slotLocks.Lock(b.ProductID + "|" + b.CenterID)
	defer unlock()

	start := b.Slot(s.slot)
	end := start.Add(s.slot)
	existing, err := s.trialRepo.List(ctx, repository.TrialFilter{
		ProductID: b.ProductID,
		CenterID:  b.CenterID,
		From:      &start,
		To:        &end,
	})
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.Status != domain.TrialStatusCancelled {
			return nil, fmt.Errorf("%w: product %s already has trial %s at center %s in the %s slot",
				domain.ErrConflict, b.ProductID, t.ID, b.CenterID, start.Format(time.RFC3339))
		}
	}

	if b.ID == "" {
		b.ID = "TRIAL-" + uuid.NewString()
	}
	b.CreatedAt = s.clock.now()
	if err := s.trialRepo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, trialEvent(domain.EventTrialBooked, actor, b, ""))
	return b, nil
}

func (s *trialService) resolveNames(ctx context.Context, b *domain.TrialBooking) error {
	if s.catalog == nil {
		return nil
	}
	if b.ProductName == "" {
		p, err := s.catalog.GetProduct(ctx, b.ProductID)
		if err != nil {
			return err
		}
		b.ProductName = p.Name
	}
	if b.CenterName == "" {
		c, err := s.catalog.GetCenter(ctx, b.CenterID)
		if err != nil {
			return err
		}
		b.CenterName = c.Name
	}
	return nil
}

func (s *trialService) GetTrial(ctx context.Context, actor domain.Principal, id string) (*domain.TrialBooking, error) {
	b, err := s.trialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.VisibleTo(actor) {
		return nil, forbidden("trial %s is not visible to %s", id, actor.UserID)
	}
	return b, nil
}

func (s *trialService) ListTrials(ctx context.Context, actor domain.Principal, f repository.TrialFilter) ([]domain.TrialBooking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown trial status %q", f.Status))
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleCustomer:
		f.CustomerID = actor.UserID
	case domain.RoleCenter:
		f.CenterID = actor.UserID
	default:
		return nil, forbidden("%s cannot list trials", actor.Role)
	}
	return s.trialRepo.List(ctx, f)
}

// UpdateTrialStatus moves a booking along pending, confirmed, completed or
// cancelled. Customers may only cancel their own booking. Orders are never
// touched.
func (s *trialService) UpdateTrialStatus(ctx context.Context, actor domain.Principal, id string, to domain.TrialStatus) (*domain.TrialBooking, error) {
	logger.EnterMethod("trialService.UpdateTrialStatus", "trialID", id, "to", to, "actor", actor.UserID)
	if !to.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown trial status %q", to))
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	b, err := s.trialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.VisibleTo(actor) {
		return nil, forbidden("trial %s is not visible to %s", id, actor.UserID)
	}
	if actor.Role == domain.RoleCustomer && to != domain.TrialStatusCancelled {
		return nil, forbidden("customers can only cancel a trial")
	}
	if !b.Status.CanTransitionTo(to) {
		err := &domain.InvalidTransitionError{Entity: "trial", ID: id, From: string(b.Status), To: string(to)}
		logger.ExitMethodWithError("trialService.UpdateTrialStatus", err, "trialID", id)
		return nil, err
	}

	from := b.Status
	b.Status = to
	if err := s.trialRepo.Update(ctx, b, from); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, trialEvent(domain.EventTrialStatusChanged, actor, b, from))
	logger.ExitMethod("trialService.UpdateTrialStatus", "trialID", id, "from", from, "to", to)
	return b, nil
}

func trialEvent(t domain.EventType, actor domain.Principal, b *domain.TrialBooking, from domain.TrialStatus) domain.Event {
	attrs := map[string]string{
		domain.AttrCustomerID:  b.CustomerID,
		domain.AttrCenterID:    b.CenterID,
		domain.AttrProductName: b.ProductName,
		domain.AttrTrialDate:   b.TrialDate.Format(time.RFC3339),
		domain.AttrTo:          string(b.Status),
	}
	if from != "" {
		attrs[domain.AttrFrom] = string(from)
	}
	return domain.Event{
		Type:       t,
		EntityID:   b.ID,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Attributes: attrs,
	}
}

package service

import (
	"context"
	"fmt"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"

	"github.com/google/uuid"
)

type disputeService struct {
	disputeRepo repository.DisputeRepository
	orderRepo   repository.OrderRepository
	emitter     *Emitter
	clock       Clock
	locks       *keyedMutex
}

func NewDisputeService(
	disputeRepo repository.DisputeRepository,
	orderRepo repository.OrderRepository,
	emitter *Emitter,
	clock Clock,
) DisputeService {
	return &disputeService{
		disputeRepo: disputeRepo,
		orderRepo:   orderRepo,
		emitter:     emitter,
		clock:       clock,
		locks:       newKeyedMutex(),
	}
}

// OpenDispute stores a new complaint against an order. The stored status is
// always open whatever the caller sent.
func (s *disputeService) OpenDispute(ctx context.Context, actor domain.Principal, d *domain.Dispute) (*domain.Dispute, error) {
	logger.EnterMethod("disputeService.OpenDispute", "orderID", d.OrderID, "actor", actor.UserID)

	switch actor.Role {
	case domain.RoleCustomer:
		if d.CustomerID == "" {
			d.CustomerID = actor.UserID
		}
		if d.CustomerID != actor.UserID {
			return nil, forbidden("customers can only open their own disputes")
		}
	case domain.RoleAdmin:
	default:
		return nil, forbidden("%s cannot open disputes", actor.Role)
	}
	if err := domain.ValidateStruct(d); err != nil {
		return nil, err
	}
	if !d.Reason.Valid() {
		return nil, domain.NewValidationError("reason", "must be one of [damage wrong_item not_sanitized deposit_not_refunded overcharged other]")
	}

	order, err := s.orderRepo.GetByID(ctx, d.OrderID)
	if err != nil {
		logger.ExitMethodWithError("disputeService.OpenDispute", err, "orderID", d.OrderID)
		return nil, err
	}
	if order.CustomerID != d.CustomerID {
		return nil, forbidden("order %s does not belong to customer %s", order.ID, d.CustomerID)
	}

	d.ID = "DSP-" + uuid.NewString()
	d.CenterID = order.CenterID
	d.Status = domain.DisputeStatusOpen
	now := s.clock.now()
	d.CreatedAt = now
	d.UpdatedAt = now

	if err := s.disputeRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, disputeEvent(domain.EventDisputeOpened, actor, d, ""))
	logger.ExitMethod("disputeService.OpenDispute", "disputeID", d.ID)
	return d, nil
}

func (s *disputeService) GetDispute(ctx context.Context, actor domain.Principal, id string) (*domain.Dispute, error) {
	d, err := s.disputeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.VisibleTo(actor) {
		return nil, forbidden("dispute %s is not visible to %s", id, actor.UserID)
	}
	return d, nil
}

func (s *disputeService) ListDisputes(ctx context.Context, actor domain.Principal, f repository.DisputeFilter) ([]domain.Dispute, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown dispute status %q", f.Status))
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleCustomer:
		f.CustomerID = actor.UserID
	case domain.RoleCenter:
		f.CenterID = actor.UserID
	default:
		return nil, forbidden("%s cannot list disputes", actor.Role)
	}
	return s.disputeRepo.List(ctx, f)
}

func (s *disputeService) UpdateDisputeStatus(ctx context.Context, actor domain.Principal, id string, to domain.DisputeStatus) (*domain.Dispute, error) {
	logger.EnterMethod("disputeService.UpdateDisputeStatus", "disputeID", id, "to", to, "actor", actor.UserID)
	if actor.Role != domain.RoleCenter && !actor.IsAdmin() {
		return nil, forbidden("%s cannot review disputes", actor.Role)
	}
	if !to.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown dispute status %q", to))
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	d, err := s.disputeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.VisibleTo(actor) {
		return nil, forbidden("dispute %s is not visible to %s", id, actor.UserID)
	}
	if !d.Status.CanTransitionTo(to) {
		err := &domain.InvalidTransitionError{Entity: "dispute", ID: id, From: string(d.Status), To: string(to)}
		logger.ExitMethodWithError("disputeService.UpdateDisputeStatus", err, "disputeID", id)
		return nil, err
	}

	from := d.Status
	d.Status = to
	d.UpdatedAt = s.clock.advance(d.UpdatedAt)
	if err := s.disputeRepo.Update(ctx, d, from); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, disputeEvent(domain.EventDisputeStatusChanged, actor, d, from))
	logger.ExitMethod("disputeService.UpdateDisputeStatus", "disputeID", id, "from", from, "to", to)
	return d, nil
}

func disputeEvent(t domain.EventType, actor domain.Principal, d *domain.Dispute, from domain.DisputeStatus) domain.Event {
	attrs := map[string]string{
		domain.AttrCustomerID: d.CustomerID,
		domain.AttrCenterID:   d.CenterID,
		domain.AttrOrderID:    d.OrderID,
		domain.AttrReason:     string(d.Reason),
		domain.AttrTo:         string(d.Status),
	}
	if from != "" {
		attrs[domain.AttrFrom] = string(from)
	}
	return domain.Event{
		Type:       t,
		EntityID:   d.ID,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Attributes: attrs,
		OccurredAt: d.UpdatedAt,
	}
}

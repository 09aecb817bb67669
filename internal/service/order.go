package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"

	"github.com/google/uuid"
)

const handoverNote = "Handover confirmed"

type orderService struct {
	orderRepo     repository.OrderRepository
	sanitizations SanitizationService
	catalog       Catalog
	emitter       *Emitter
	clock         Clock
	locks         *keyedMutex
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	sanitizations SanitizationService,
	catalog Catalog,
	emitter *Emitter,
	clock Clock,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		sanitizations: sanitizations,
		catalog:       catalog,
		emitter:       emitter,
		clock:         clock,
		locks:         newKeyedMutex(),
	}
}

func (s *orderService) CreateOrder(ctx context.Context, actor domain.Principal, o *domain.Order) (*domain.Order, error) {
	logger.EnterMethod("orderService.CreateOrder", "actor", actor.UserID, "role", actor.Role, "productID", o.ProductID)

	switch actor.Role {
	case domain.RoleCustomer:
		if o.CustomerID == "" {
			o.CustomerID = actor.UserID
		}
		if o.CustomerID != actor.UserID {
			return nil, forbidden("customers can only create their own orders")
		}
	case domain.RoleCenter:
		if o.CenterID == "" {
			o.CenterID = actor.UserID
		}
		if o.CenterID != actor.UserID {
			return nil, forbidden("centers can only create orders for their own center")
		}
	case domain.RoleAdmin:
	default:
		return nil, forbidden("%s cannot create orders", actor.Role)
	}

	if o.Status == "" {
		o.Status = domain.OrderStatusTrialBooked
	}
	if !o.Status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown order status %q", o.Status))
	}
	if o.Status != domain.OrderStatusTrialBooked && !actor.IsAdmin() {
		return nil, domain.NewValidationError("status", "new orders start as trialBooked")
	}
	if err := domain.ValidateStruct(o); err != nil {
		return nil, err
	}
	if err := s.resolveNames(ctx, o); err != nil {
		logger.ExitMethodWithError("orderService.CreateOrder", err, "productID", o.ProductID)
		return nil, err
	}

	if o.ID == "" {
		o.ID = "ORD-" + uuid.NewString()
	}
	now := s.clock.now()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.DamageCharge = nil
	o.ReturnCondition = ""

	if err := s.orderRepo.Create(ctx, o); err != nil {
		logger.ExitMethodWithError("orderService.CreateOrder", err, "orderID", o.ID)
		return nil, err
	}

	s.emitter.Emit(ctx, orderEvent(domain.EventOrderCreated, actor, o, nil))
	logger.ExitMethod("orderService.CreateOrder", "orderID", o.ID)
	return o, nil
}

// resolveNames fills display fields the caller left empty from the catalog.
func (s *orderService) resolveNames(ctx context.Context, o *domain.Order) error {
	if s.catalog == nil {
		return nil
	}
	if o.ProductName == "" || o.VendorID == "" {
		p, err := s.catalog.GetProduct(ctx, o.ProductID)
		if err != nil {
			return err
		}
		if o.ProductName == "" {
			o.ProductName = p.Name
		}
		if o.ProductImage == "" {
			o.ProductImage = p.ImageURL
		}
		if o.VendorID == "" {
			o.VendorID = p.VendorID
		}
	}
	if o.CenterName == "" {
		c, err := s.catalog.GetCenter(ctx, o.CenterID)
		if err != nil {
			return err
		}
		o.CenterName = c.Name
	}
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, actor domain.Principal, id string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.VisibleTo(actor) {
		return nil, forbidden("order %s is not visible to %s", id, actor.UserID)
	}
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, actor domain.Principal, f repository.OrderFilter) ([]domain.Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown order status %q", f.Status))
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleCustomer:
		f.CustomerID = actor.UserID
	case domain.RoleCenter:
		f.CenterID = actor.UserID
	case domain.RoleVendor:
		f.VendorID = actor.UserID
	default:
		return nil, forbidden("unknown role %q", actor.Role)
	}
	return s.orderRepo.List(ctx, f)
}

// AdvanceStatus moves an order along the transition table. Entering
// readyForHandover also requires an approved sanitization tag. Orders enter
// rented only through ConfirmHandover.
func (s *orderService) AdvanceStatus(ctx context.Context, actor domain.Principal, id string, to domain.OrderStatus, notes string) (*domain.Order, error) {
	logger.EnterMethod("orderService.AdvanceStatus", "orderID", id, "to", to, "actor", actor.UserID)
	if !to.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown order status %q", to))
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	o, err := s.loadForUpdate(ctx, actor, id, to)
	if err != nil {
		logger.ExitMethodWithError("orderService.AdvanceStatus", err, "orderID", id)
		return nil, err
	}
	if !o.Status.CanTransitionTo(to) {
		err := &domain.InvalidTransitionError{Entity: "order", ID: id, From: string(o.Status), To: string(to)}
		logger.ExitMethodWithError("orderService.AdvanceStatus", err, "orderID", id)
		return nil, err
	}
	if to == domain.OrderStatusRented {
		return nil, fmt.Errorf("%w: order %s is handed over through handover confirmation", domain.ErrInvalidTransition, id)
	}
	tag := ""
	if to == domain.OrderStatusReadyForHandover {
		if tag, err = s.requireTag(ctx, id); err != nil {
			return nil, err
		}
	}

	from := o.Status
	s.apply(o, to, notes)
	if err := s.orderRepo.Update(ctx, o, from); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, orderEvent(domain.EventOrderStatusChanged, actor, o, map[string]string{
		domain.AttrFrom:  string(from),
		domain.AttrTo:    string(to),
		domain.AttrTagID: tag,
	}))
	logger.ExitMethod("orderService.AdvanceStatus", "orderID", id, "from", from, "to", to)
	return o, nil
}

// ForceStatus is the admin escape hatch that skips the transition table.
func (s *orderService) ForceStatus(ctx context.Context, actor domain.Principal, id string, to domain.OrderStatus, notes string) (*domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("only admins can force an order status")
	}
	if !to.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown order status %q", to))
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	s.apply(o, to, notes)
	if err := s.orderRepo.Update(ctx, o, from); err != nil {
		return nil, err
	}
	logger.Warn("Order status forced", "orderID", id, "from", from, "to", to, "admin", actor.UserID)
	s.emitter.Emit(ctx, orderEvent(domain.EventOrderStatusChanged, actor, o, map[string]string{
		domain.AttrFrom:   string(from),
		domain.AttrTo:     string(to),
		domain.AttrForced: strconv.FormatBool(true),
	}))
	return o, nil
}

func (s *orderService) ConfirmHandover(ctx context.Context, actor domain.Principal, id, verificationCode string) (*domain.Order, error) {
	if verificationCode == "" {
		return nil, domain.NewValidationError("verification_code", "is required")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	o, err := s.loadForUpdate(ctx, actor, id, domain.OrderStatusRented)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderStatusReadyForHandover {
		return nil, &domain.InvalidTransitionError{Entity: "order", ID: id, From: string(o.Status), To: string(domain.OrderStatusRented)}
	}
	tag, err := s.requireTag(ctx, id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	s.apply(o, domain.OrderStatusRented, handoverNote)
	if err := s.orderRepo.Update(ctx, o, from); err != nil {
		return nil, err
	}
	logger.Info("Order handed over", "orderID", id, "tagID", tag, "center", actor.UserID)
	s.emitter.Emit(ctx, orderEvent(domain.EventOrderStatusChanged, actor, o, map[string]string{
		domain.AttrFrom:  string(from),
		domain.AttrTo:    string(domain.OrderStatusRented),
		domain.AttrTagID: tag,
	}))
	return o, nil
}

func (s *orderService) RecordReturn(ctx context.Context, actor domain.Principal, id string, in ReturnInput) (*domain.Order, error) {
	if !in.Condition.Valid() {
		return nil, domain.NewValidationError("condition", "must be one of [good minor major]")
	}
	if in.DamageCharge < 0 {
		return nil, domain.NewValidationError("damage_charge", "must be at least 0")
	}
	if in.Condition == domain.ReturnConditionGood && in.DamageCharge != 0 {
		return nil, domain.NewValidationError("damage_charge", "must be 0 when condition is good")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	o, err := s.loadForUpdate(ctx, actor, id, domain.OrderStatusReturned)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(domain.OrderStatusReturned) {
		return nil, &domain.InvalidTransitionError{Entity: "order", ID: id, From: string(o.Status), To: string(domain.OrderStatusReturned)}
	}
	if in.DamageCharge > o.DepositAmount {
		return nil, domain.NewValidationError("damage_charge", fmt.Sprintf("cannot exceed the deposit of %d", o.DepositAmount))
	}

	from := o.Status
	charge := in.DamageCharge
	o.DamageCharge = &charge
	o.ReturnCondition = in.Condition
	s.apply(o, domain.OrderStatusReturned, in.Notes)
	if err := s.orderRepo.Update(ctx, o, from); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, orderEvent(domain.EventOrderStatusChanged, actor, o, map[string]string{
		domain.AttrFrom: string(from),
		domain.AttrTo:   string(domain.OrderStatusReturned),
	}))
	return o, nil
}

// loadForUpdate fetches the order and checks the actor may both see it and
// move it into status to.
func (s *orderService) loadForUpdate(ctx context.Context, actor domain.Principal, id string, to domain.OrderStatus) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.VisibleTo(actor) {
		return nil, forbidden("order %s is not visible to %s", id, actor.UserID)
	}
	if !domain.CanAdvanceOrder(actor.Role, to) {
		return nil, forbidden("%s cannot move orders to %s", actor.Role, to)
	}
	return o, nil
}

func (s *orderService) requireTag(ctx context.Context, id string) (string, error) {
	tag, err := s.sanitizations.ApprovedTag(ctx, id)
	if err != nil {
		return "", err
	}
	if tag == "" {
		return "", fmt.Errorf("%w: order %s has no approved sanitization tag", domain.ErrInvalidTransition, id)
	}
	return tag, nil
}

func (s *orderService) apply(o *domain.Order, to domain.OrderStatus, notes string) {
	now := s.clock.advance(o.UpdatedAt)
	o.Status = to
	if notes != "" {
		o.Notes = notes
	}
	o.UpdatedAt = now
	switch to {
	case domain.OrderStatusRented:
		if o.RentalStart == nil {
			o.RentalStart = &now
		}
	case domain.OrderStatusReturned:
		if o.RentalEnd == nil {
			o.RentalEnd = &now
		}
	}
}

func orderEvent(t domain.EventType, actor domain.Principal, o *domain.Order, extra map[string]string) domain.Event {
	attrs := map[string]string{
		domain.AttrCustomerID:  o.CustomerID,
		domain.AttrVendorID:    o.VendorID,
		domain.AttrCenterID:    o.CenterID,
		domain.AttrProductName: o.ProductName,
	}
	if o.RentalEnd != nil {
		attrs[domain.AttrRentalEnd] = o.RentalEnd.Format(time.RFC3339)
	}
	for k, v := range extra {
		if v != "" {
			attrs[k] = v
		}
	}
	return domain.Event{
		Type:       t,
		EntityID:   o.ID,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Attributes: attrs,
		OccurredAt: o.UpdatedAt,
	}
}

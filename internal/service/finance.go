package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/utils"

	"github.com/google/uuid"
)

// FinanceRates are the percentages applied to every rental. Admin commission
// and center share together may not exceed 100.
type FinanceRates struct {
	AdminCommissionPct float64
	CenterSharePct     float64
	GSTPct             float64
}

type financeService struct {
	orderRepo  repository.OrderRepository
	payoutRepo repository.PayoutRepository
	emitter    *Emitter
	clock      Clock
	rates      FinanceRates
	locks      *keyedMutex
}

func NewFinanceService(
	orderRepo repository.OrderRepository,
	payoutRepo repository.PayoutRepository,
	emitter *Emitter,
	clock Clock,
	rates FinanceRates,
) (FinanceService, error) {
	if err := utils.ValidateRates(rates.AdminCommissionPct, rates.CenterSharePct); err != nil {
		return nil, err
	}
	if rates.GSTPct < 0 || rates.GSTPct > 100 {
		return nil, domain.NewValidationError("gst_pct", "must be between 0 and 100")
	}
	return &financeService{
		orderRepo:  orderRepo,
		payoutRepo: payoutRepo,
		emitter:    emitter,
		clock:      clock,
		rates:      rates,
		locks:      newKeyedMutex(),
	}, nil
}

func (s *financeService) Split(gross int64) (utils.Split, error) {
	return utils.ComputeSplit(gross, s.rates.AdminCommissionPct, s.rates.CenterSharePct)
}

// OrderSettlement breaks down what each party receives for a finished rental.
func (s *financeService) OrderSettlement(ctx context.Context, actor domain.Principal, orderID string) (*domain.Settlement, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.VisibleTo(actor) {
		return nil, forbidden("order %s is not visible to %s", orderID, actor.UserID)
	}
	if o.Status != domain.OrderStatusReturned && o.Status != domain.OrderStatusClosed {
		return nil, fmt.Errorf("%w: order %s is %s, settlement is available once it is returned", domain.ErrConflict, orderID, o.Status)
	}

	split, err := s.Split(o.RentalPrice)
	if err != nil {
		return nil, err
	}
	damage := damageOf(o)
	return &domain.Settlement{
		OrderID:         o.ID,
		Gross:           split.Gross,
		AdminCommission: split.Admin,
		CenterShare:     split.Center,
		VendorNet:       split.VendorNet,
		GSTRate:         s.rates.GSTPct,
		GSTAmount:       utils.ComputeGST(o.RentalPrice, s.rates.GSTPct),
		Deposit:         o.DepositAmount,
		DamageCharge:    damage,
		DepositRefund:   utils.DepositRefund(o.DepositAmount, damage),
	}, nil
}

// VendorEarnings totals the split of every closed order of a vendor.
func (s *financeService) VendorEarnings(ctx context.Context, actor domain.Principal, vendorID string) (*domain.EarningsSummary, error) {
	if err := vendorScope(actor, vendorID); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.List(ctx, repository.OrderFilter{
		Status:   domain.OrderStatusClosed,
		VendorID: vendorID,
	})
	if err != nil {
		return nil, err
	}

	sum := &domain.EarningsSummary{VendorID: vendorID}
	for _, o := range orders {
		split, err := s.Split(o.RentalPrice)
		if err != nil {
			return nil, err
		}
		sum.Orders++
		sum.Gross += split.Gross
		sum.AdminCommission += split.Admin
		sum.CenterShare += split.Center
		sum.NetPayout += split.VendorNet
	}
	return sum, nil
}

// CustomerWallet derives a customer's deposit position from their orders.
func (s *financeService) CustomerWallet(ctx context.Context, actor domain.Principal, customerID string) (*domain.WalletSummary, error) {
	if !actor.IsAdmin() && (actor.Role != domain.RoleCustomer || actor.UserID != customerID) {
		return nil, forbidden("%s cannot see the wallet of %s", actor.UserID, customerID)
	}

	orders, err := s.orderRepo.List(ctx, repository.OrderFilter{CustomerID: customerID})
	if err != nil {
		return nil, err
	}

	w := &domain.WalletSummary{CustomerID: customerID}
	for _, o := range orders {
		switch o.Status {
		case domain.OrderStatusPaymentDone, domain.OrderStatusSanitizing,
			domain.OrderStatusReadyForHandover, domain.OrderStatusRented:
			w.DepositHeld += o.DepositAmount
			w.OrdersHolding++
		case domain.OrderStatusReturned, domain.OrderStatusClosed:
			damage := damageOf(&o)
			w.DepositRefunded += utils.DepositRefund(o.DepositAmount, damage)
			w.DamageCharged += damage
		}
	}
	return w, nil
}

// RecordPayout opens the pending payout for a closed order. A second call for
// the same order is a conflict.
func (s *financeService) RecordPayout(ctx context.Context, orderID string) (*domain.Payout, error) {
	logger.EnterMethod("financeService.RecordPayout", "orderID", orderID)
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderStatusClosed {
		return nil, fmt.Errorf("%w: order %s is %s, payouts open once it is closed", domain.ErrConflict, orderID, o.Status)
	}
	if o.VendorID == "" {
		return nil, domain.NewValidationError("vendor_id", "order has no vendor to pay")
	}
	split, err := s.Split(o.RentalPrice)
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	p := &domain.Payout{
		ID:              "PAY-" + uuid.NewString(),
		OrderID:         o.ID,
		VendorID:        o.VendorID,
		Gross:           split.Gross,
		AdminCommission: split.Admin,
		CenterShare:     split.Center,
		Net:             split.VendorNet,
		Status:          domain.PayoutStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.payoutRepo.Create(ctx, p); err != nil {
		logger.ExitMethodWithError("financeService.RecordPayout", err, "orderID", orderID)
		return nil, err
	}
	logger.ExitMethod("financeService.RecordPayout", "orderID", orderID, "payoutID", p.ID, "net", p.Net)
	return p, nil
}

// ListPayouts returns payouts newest first. Vendors only ever see their own.
func (s *financeService) ListPayouts(ctx context.Context, actor domain.Principal, f repository.PayoutFilter) ([]domain.Payout, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown payout status %q", f.Status))
	}
	if actor.Role == domain.RoleVendor && f.VendorID == "" {
		f.VendorID = actor.UserID
	}
	if err := vendorScope(actor, f.VendorID); err != nil {
		return nil, err
	}
	return s.payoutRepo.List(ctx, f)
}

// UpdatePayoutStatus moves a payout towards released. Only admins release
// money.
func (s *financeService) UpdatePayoutStatus(ctx context.Context, actor domain.Principal, id string, to domain.PayoutStatus) (*domain.Payout, error) {
	logger.EnterMethod("financeService.UpdatePayoutStatus", "payoutID", id, "to", to, "actor", actor.UserID)
	if !actor.IsAdmin() {
		return nil, forbidden("only admins can release payouts")
	}
	if !to.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown payout status %q", to))
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.payoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanTransitionTo(to) {
		err := &domain.InvalidTransitionError{Entity: "payout", ID: id, From: string(p.Status), To: string(to)}
		logger.ExitMethodWithError("financeService.UpdatePayoutStatus", err, "payoutID", id)
		return nil, err
	}

	from := p.Status
	p.Status = to
	p.UpdatedAt = s.clock.advance(p.UpdatedAt)
	if err := s.payoutRepo.Update(ctx, p, from); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, domain.Event{
		Type:      domain.EventPayoutStatusChanged,
		EntityID:  p.ID,
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		Attributes: map[string]string{
			domain.AttrVendorID: p.VendorID,
			domain.AttrOrderID:  p.OrderID,
			domain.AttrFrom:     string(from),
			domain.AttrTo:       string(to),
			domain.AttrAmount:   strconv.FormatInt(p.Net, 10),
		},
		OccurredAt: p.UpdatedAt,
	})
	logger.ExitMethod("financeService.UpdatePayoutStatus", "payoutID", id, "from", from, "to", to)
	return p, nil
}

// PayoutRecorder opens a payout whenever an order with a vendor reaches
// closed. Orders that already have one are skipped.
func PayoutRecorder(finance FinanceService) EventHook {
	return EventHookFunc(func(ctx context.Context, e domain.Event) error {
		if e.Type != domain.EventOrderStatusChanged || e.Attr(domain.AttrTo) != string(domain.OrderStatusClosed) {
			return nil
		}
		if e.Attr(domain.AttrVendorID) == "" {
			return nil
		}
		_, err := finance.RecordPayout(ctx, e.EntityID)
		if errors.Is(err, domain.ErrConflict) {
			return nil
		}
		return err
	})
}

func vendorScope(actor domain.Principal, vendorID string) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleVendor:
		if actor.UserID != vendorID {
			return forbidden("vendors can only see their own earnings")
		}
		return nil
	}
	return forbidden("%s cannot see vendor earnings", actor.Role)
}

func damageOf(o *domain.Order) int64 {
	if o.DamageCharge == nil {
		return 0
	}
	return *o.DamageCharge
}

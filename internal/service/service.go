package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"rentwear-backend/internal/catalog"
	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/utils"
)

type OrderService interface {
	CreateOrder(ctx context.Context, actor domain.Principal, order *domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, actor domain.Principal, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, actor domain.Principal, filter repository.OrderFilter) ([]domain.Order, error)
	AdvanceStatus(ctx context.Context, actor domain.Principal, id string, to domain.OrderStatus, notes string) (*domain.Order, error)
	ForceStatus(ctx context.Context, actor domain.Principal, id string, to domain.OrderStatus, notes string) (*domain.Order, error)
	ConfirmHandover(ctx context.Context, actor domain.Principal, id, verificationCode string) (*domain.Order, error)
	RecordReturn(ctx context.Context, actor domain.Principal, id string, in ReturnInput) (*domain.Order, error)
}

type ReturnInput struct {
	Condition    domain.ReturnCondition
	DamageCharge int64
	Notes        string
}

type TrialService interface {
	BookTrial(ctx context.Context, actor domain.Principal, booking *domain.TrialBooking) (*domain.TrialBooking, error)
	BookWalkIn(ctx context.Context, actor domain.Principal, booking *domain.TrialBooking) (*domain.TrialBooking, error)
	GetTrial(ctx context.Context, actor domain.Principal, id string) (*domain.TrialBooking, error)
	ListTrials(ctx context.Context, actor domain.Principal, filter repository.TrialFilter) ([]domain.TrialBooking, error)
	UpdateTrialStatus(ctx context.Context, actor domain.Principal, id string, to domain.TrialStatus) (*domain.TrialBooking, error)
}

type SanitizationService interface {
	RecordSanitization(ctx context.Context, actor domain.Principal, record *domain.SanitizationRecord) (*domain.SanitizationRecord, error)
	ListRecent(ctx context.Context, actor domain.Principal, limit int) ([]domain.SanitizationRecord, error)
	ForOrder(ctx context.Context, actor domain.Principal, orderID string) ([]domain.SanitizationRecord, error)
	ApprovedTag(ctx context.Context, orderID string) (string, error)
	UploadImage(ctx context.Context, actor domain.Principal, orderID, stage, contentType string, r io.Reader) (string, error)
	OpenImage(ctx context.Context, key string) (io.ReadCloser, error)
}

type DisputeService interface {
	OpenDispute(ctx context.Context, actor domain.Principal, dispute *domain.Dispute) (*domain.Dispute, error)
	GetDispute(ctx context.Context, actor domain.Principal, id string) (*domain.Dispute, error)
	ListDisputes(ctx context.Context, actor domain.Principal, filter repository.DisputeFilter) ([]domain.Dispute, error)
	UpdateDisputeStatus(ctx context.Context, actor domain.Principal, id string, to domain.DisputeStatus) (*domain.Dispute, error)
}

type NotificationService interface {
	Add(ctx context.Context, note *domain.Notification) (*domain.Notification, error)
	List(ctx context.Context, actor domain.Principal) ([]domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Principal, id string) error
	UnreadCount(ctx context.Context, actor domain.Principal) (int, error)
}

type FinanceService interface {
	Split(gross int64) (utils.Split, error)
	OrderSettlement(ctx context.Context, actor domain.Principal, orderID string) (*domain.Settlement, error)
	VendorEarnings(ctx context.Context, actor domain.Principal, vendorID string) (*domain.EarningsSummary, error)
	CustomerWallet(ctx context.Context, actor domain.Principal, customerID string) (*domain.WalletSummary, error)
	RecordPayout(ctx context.Context, orderID string) (*domain.Payout, error)
	ListPayouts(ctx context.Context, actor domain.Principal, filter repository.PayoutFilter) ([]domain.Payout, error)
	UpdatePayoutStatus(ctx context.Context, actor domain.Principal, id string, to domain.PayoutStatus) (*domain.Payout, error)
}

// Catalog resolves display data for products and centers. It may be nil, in
// which case callers must supply names themselves.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
	GetCenter(ctx context.Context, id string) (*catalog.Center, error)
}

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// advance returns the timestamp for a mutation made after prev, never
// earlier than prev.
func (c Clock) advance(prev time.Time) time.Time {
	now := c.now()
	if now.Before(prev) {
		return prev
	}
	return now
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrForbidden, fmt.Sprintf(format, args...))
}

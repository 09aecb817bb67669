package repository

import (
	"context"
	"time"

	"rentwear-backend/internal/domain"
)

// OrderFilter narrows List results. Empty fields match everything.
type OrderFilter struct {
	Status     domain.OrderStatus
	CustomerID string
	VendorID   string
	CenterID   string
}

type TrialFilter struct {
	Status     domain.TrialStatus
	CustomerID string
	CenterID   string
	ProductID  string
	From       *time.Time
	To         *time.Time
}

type PayoutFilter struct {
	Status   domain.PayoutStatus
	VendorID string
}

type DisputeFilter struct {
	Status     domain.DisputeStatus
	CustomerID string
	CenterID   string
	OrderID    string
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
}

type TrialBookingRepository interface {
	Create(ctx context.Context, booking *domain.TrialBooking) error
	GetByID(ctx context.Context, id string) (*domain.TrialBooking, error)
	Update(ctx context.Context, booking *domain.TrialBooking, from domain.TrialStatus) error
	List(ctx context.Context, filter TrialFilter) ([]domain.TrialBooking, error)
}

// SanitizationRepository is append-only: records are never updated or removed.
type SanitizationRepository interface {
	Append(ctx context.Context, record *domain.SanitizationRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.SanitizationRecord, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.SanitizationRecord, error)
}

type DisputeRepository interface {
	Create(ctx context.Context, dispute *domain.Dispute) error
	GetByID(ctx context.Context, id string) (*domain.Dispute, error)
	Update(ctx context.Context, dispute *domain.Dispute, from domain.DisputeStatus) error
	List(ctx context.Context, filter DisputeFilter) ([]domain.Dispute, error)
}

// PayoutRepository keeps one payout per order; a second Create for the same
// order is a conflict.
type PayoutRepository interface {
	Create(ctx context.Context, payout *domain.Payout) error
	GetByID(ctx context.Context, id string) (*domain.Payout, error)
	Update(ctx context.Context, payout *domain.Payout, from domain.PayoutStatus) error
	List(ctx context.Context, filter PayoutFilter) ([]domain.Payout, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Store groups every repository a workflow service needs. Both the postgres
// and the in-memory backends produce one.
type Store struct {
	Orders        OrderRepository
	Trials        TrialBookingRepository
	Sanitizations SanitizationRepository
	Disputes      DisputeRepository
	Notifications NotificationRepository
	Payouts       PayoutRepository
}

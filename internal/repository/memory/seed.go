package memory

import (
	"time"

	"rentwear-backend/internal/domain"
)

// NewSeeded returns a container preloaded with the demo data every fresh
// session starts from.
func NewSeeded() *Container {
	c := New()
	for _, o := range seedOrders() {
		o := o
		c.orders[o.ID] = &o
		c.orderIDs = append(c.orderIDs, o.ID)
	}
	for _, b := range seedTrials() {
		b := b
		c.trials[b.ID] = &b
		c.trialIDs = append(c.trialIDs, b.ID)
	}
	for _, n := range seedNotifications() {
		n := n
		c.notifications[n.ID] = &n
		c.noteIDs = append(c.noteIDs, n.ID)
	}
	for _, p := range seedPayouts() {
		p := p
		c.payouts[p.ID] = &p
		c.payoutIDs = append(c.payoutIDs, p.ID)
	}
	return c
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func seedOrders() []domain.Order {
	return []domain.Order{
		{
			ID:            "ORD-001",
			CustomerID:    "cust-1",
			VendorID:      "vendor-1",
			ProductID:     "prod-1",
			ProductName:   "Royal Kundan Necklace Set",
			CenterID:      "center-1",
			CenterName:    "Elegance Center - Mumbai",
			RentalPrice:   2500,
			DepositAmount: 5000,
			RentalStart:   ptr(day(2026, time.February, 20)),
			RentalEnd:     ptr(day(2026, time.February, 25)),
			Status:        domain.OrderStatusRented,
			CreatedAt:     day(2026, time.February, 18),
			UpdatedAt:     day(2026, time.February, 20),
		},
		{
			ID:            "ORD-002",
			CustomerID:    "cust-1",
			VendorID:      "vendor-1",
			ProductID:     "prod-2",
			ProductName:   "Bridal Lehenga - Crimson Gold",
			CenterID:      "center-1",
			CenterName:    "Elegance Center - Mumbai",
			RentalPrice:   8000,
			DepositAmount: 15000,
			Status:        domain.OrderStatusTrialBooked,
			CreatedAt:     day(2026, time.February, 25),
			UpdatedAt:     day(2026, time.February, 25),
		},
		{
			ID:            "ORD-003",
			CustomerID:    "cust-1",
			VendorID:      "vendor-2",
			ProductID:     "prod-3",
			ProductName:   "Diamond Choker Set",
			CenterID:      "center-2",
			CenterName:    "Luxe Rentals - Delhi",
			RentalPrice:   3500,
			DepositAmount: 8000,
			RentalStart:   ptr(day(2026, time.January, 10)),
			RentalEnd:     ptr(day(2026, time.January, 15)),
			Status:        domain.OrderStatusClosed,
			CreatedAt:     day(2026, time.January, 8),
			UpdatedAt:     day(2026, time.January, 16),
		},
	}
}

func seedTrials() []domain.TrialBooking {
	return []domain.TrialBooking{
		{
			ID:          "TRIAL-001",
			CustomerID:  "cust-1",
			ProductID:   "prod-2",
			ProductName: "Bridal Lehenga - Crimson Gold",
			CenterID:    "center-1",
			CenterName:  "Elegance Center - Mumbai",
			TrialDate:   time.Date(2026, time.March, 5, 11, 0, 0, 0, time.UTC),
			Status:      domain.TrialStatusConfirmed,
			CreatedAt:   day(2026, time.February, 25),
		},
	}
}

func seedNotifications() []domain.Notification {
	return []domain.Notification{
		{
			ID:        "notif-1",
			UserID:    "cust-1",
			Role:      domain.RoleCustomer,
			Message:   "Your rental ORD-001 is active. Return by Feb 25.",
			Type:      domain.NotificationTypeInfo,
			CreatedAt: day(2026, time.February, 20),
		},
		{
			ID:        "notif-2",
			UserID:    "cust-1",
			Role:      domain.RoleCustomer,
			Message:   "Trial booking TRIAL-001 confirmed for Mar 5.",
			Type:      domain.NotificationTypeSuccess,
			CreatedAt: day(2026, time.February, 25),
		},
		{
			ID:        "notif-3",
			UserID:    "vendor-1",
			Role:      domain.RoleVendor,
			Message:   `Product "Royal Kundan Necklace Set" is currently rented.`,
			Type:      domain.NotificationTypeInfo,
			Read:      true,
			CreatedAt: day(2026, time.February, 20),
		},
		{
			ID:        "notif-4",
			UserID:    "admin-1",
			Role:      domain.RoleAdmin,
			Message:   "New vendor registration pending approval.",
			Type:      domain.NotificationTypeWarning,
			CreatedAt: day(2026, time.February, 26),
		},
	}
}

// ORD-003 closed before the session started, so its payout awaits release.
func seedPayouts() []domain.Payout {
	return []domain.Payout{
		{
			ID:              "PAY-001",
			OrderID:         "ORD-003",
			VendorID:        "vendor-2",
			Gross:           3500,
			AdminCommission: 525,
			CenterShare:     350,
			Net:             2625,
			Status:          domain.PayoutStatusPending,
			CreatedAt:       day(2026, time.January, 16),
			UpdatedAt:       day(2026, time.January, 16),
		},
	}
}

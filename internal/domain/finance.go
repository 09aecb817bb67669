package domain

import (
	"fmt"
	"time"
)

// Settlement is the money breakdown of a returned or closed order.
type Settlement struct {
	OrderID         string  `json:"order_id"`
	Gross           int64   `json:"gross"`
	AdminCommission int64   `json:"admin_commission"`
	CenterShare     int64   `json:"center_share"`
	VendorNet       int64   `json:"vendor_net"`
	GSTRate         float64 `json:"gst_rate"`
	GSTAmount       int64   `json:"gst_amount"`
	Deposit         int64   `json:"deposit"`
	DamageCharge    int64   `json:"damage_charge"`
	DepositRefund   int64   `json:"deposit_refund"`
}

type EarningsSummary struct {
	VendorID        string `json:"vendor_id"`
	Orders          int    `json:"orders"`
	Gross           int64  `json:"gross"`
	AdminCommission int64  `json:"admin_commission"`
	CenterShare     int64  `json:"center_share"`
	NetPayout       int64  `json:"net_payout"`
}

// WalletSummary is a customer's deposit position derived from their orders.
// Held deposits belong to paid orders that have not come back yet.
type WalletSummary struct {
	CustomerID      string `json:"customer_id"`
	DepositHeld     int64  `json:"deposit_held"`
	OrdersHolding   int    `json:"orders_holding"`
	DepositRefunded int64  `json:"deposit_refunded"`
	DamageCharged   int64  `json:"damage_charged"`
}

type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusReleased   PayoutStatus = "released"
)

var payoutTransitions = map[PayoutStatus]map[PayoutStatus]bool{
	PayoutStatusPending:    {PayoutStatusProcessing: true, PayoutStatusReleased: true},
	PayoutStatusProcessing: {PayoutStatusReleased: true},
	PayoutStatusReleased:   {},
}

func (s PayoutStatus) Valid() bool {
	_, ok := payoutTransitions[s]
	return ok
}

func (s PayoutStatus) CanTransitionTo(to PayoutStatus) bool {
	return payoutTransitions[s][to]
}

func ParsePayoutStatus(s string) (PayoutStatus, error) {
	st := PayoutStatus(s)
	if !st.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("unknown payout status %q", s))
	}
	return st, nil
}

// Payout is the vendor's share of one closed order. There is at most one
// payout per order.
type Payout struct {
	ID              string       `json:"id"`
	OrderID         string       `json:"order_id"`
	VendorID        string       `json:"vendor_id"`
	Gross           int64        `json:"gross"`
	AdminCommission int64        `json:"admin_commission"`
	CenterShare     int64        `json:"center_share"`
	Net             int64        `json:"net"`
	Status          PayoutStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (p *Payout) VisibleTo(pr Principal) bool {
	switch pr.Role {
	case RoleAdmin:
		return true
	case RoleVendor:
		return p.VendorID == pr.UserID
	}
	return false
}

package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusTrialBooked      OrderStatus = "trialBooked"
	OrderStatusTrialCompleted   OrderStatus = "trialCompleted"
	OrderStatusPaymentDone      OrderStatus = "paymentDone"
	OrderStatusSanitizing       OrderStatus = "sanitizing"
	OrderStatusReadyForHandover OrderStatus = "readyForHandover"
	OrderStatusRented           OrderStatus = "rented"
	OrderStatusReturned         OrderStatus = "returned"
	OrderStatusClosed           OrderStatus = "closed"
)

// OrderStatusSequence is the canonical forward lifecycle of a rental order.
var OrderStatusSequence = []OrderStatus{
	OrderStatusTrialBooked,
	OrderStatusTrialCompleted,
	OrderStatusPaymentDone,
	OrderStatusSanitizing,
	OrderStatusReadyForHandover,
	OrderStatusRented,
	OrderStatusReturned,
	OrderStatusClosed,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusTrialBooked:      "Trial Booked",
	OrderStatusTrialCompleted:   "Trial Completed",
	OrderStatusPaymentDone:      "Payment Done",
	OrderStatusSanitizing:       "Sanitizing",
	OrderStatusReadyForHandover: "Ready for Handover",
	OrderStatusRented:           "Rented",
	OrderStatusReturned:         "Returned",
	OrderStatusClosed:           "Closed",
}

// Each state allows its immediate successor. trialBooked may also jump to
// paymentDone when the customer pays before the trial is marked complete.
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusTrialBooked:      {OrderStatusTrialCompleted: true, OrderStatusPaymentDone: true},
	OrderStatusTrialCompleted:   {OrderStatusPaymentDone: true},
	OrderStatusPaymentDone:      {OrderStatusSanitizing: true},
	OrderStatusSanitizing:       {OrderStatusReadyForHandover: true},
	OrderStatusReadyForHandover: {OrderStatusRented: true},
	OrderStatusRented:           {OrderStatusReturned: true},
	OrderStatusReturned:         {OrderStatusClosed: true},
	OrderStatusClosed:           {},
}

// Roles allowed to move an order into a given status. Admin is always allowed.
var orderStatusActors = map[OrderStatus][]Role{
	OrderStatusTrialCompleted:   {RoleCenter},
	OrderStatusPaymentDone:      {RoleCustomer},
	OrderStatusSanitizing:       {RoleCenter},
	OrderStatusReadyForHandover: {RoleCenter},
	OrderStatusRented:           {RoleCenter},
	OrderStatusReturned:         {RoleCustomer, RoleCenter},
	OrderStatusClosed:           {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s OrderStatus) Terminal() bool { return s == OrderStatusClosed }

// Next returns the canonical successor of s.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, st := range OrderStatusSequence {
		if st == s && i+1 < len(OrderStatusSequence) {
			return OrderStatusSequence[i+1], true
		}
	}
	return "", false
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	return orderTransitions[s][to]
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("unknown order status %q", s))
	}
	return st, nil
}

// CanAdvanceOrder reports whether role may move an order into status to.
func CanAdvanceOrder(role Role, to OrderStatus) bool {
	if role == RoleAdmin {
		return true
	}
	for _, r := range orderStatusActors[to] {
		if r == role {
			return true
		}
	}
	return false
}

type ReturnCondition string

const (
	ReturnConditionGood  ReturnCondition = "good"
	ReturnConditionMinor ReturnCondition = "minor"
	ReturnConditionMajor ReturnCondition = "major"
)

func (c ReturnCondition) Valid() bool {
	switch c {
	case ReturnConditionGood, ReturnConditionMinor, ReturnConditionMajor:
		return true
	}
	return false
}

// Order is one rental engagement of a product through a center. Product and
// center names are cached at creation time. Amounts are whole rupees.
type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id" validate:"required"`
	VendorID        string          `json:"vendor_id,omitempty"`
	ProductID       string          `json:"product_id" validate:"required"`
	ProductName     string          `json:"product_name"`
	ProductImage    string          `json:"product_image,omitempty"`
	CenterID        string          `json:"center_id" validate:"required"`
	CenterName      string          `json:"center_name"`
	RentalPrice     int64           `json:"rental_price" validate:"gt=0"`
	DepositAmount   int64           `json:"deposit_amount" validate:"gte=0"`
	RentalStart     *time.Time      `json:"rental_start,omitempty"`
	RentalEnd       *time.Time      `json:"rental_end,omitempty"`
	Status          OrderStatus     `json:"status"`
	DamageCharge    *int64          `json:"damage_charge,omitempty"`
	ReturnCondition ReturnCondition `json:"return_condition,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// VisibleTo applies the role-scoped read rules for orders.
func (o *Order) VisibleTo(p Principal) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return o.CustomerID == p.UserID
	case RoleCenter:
		return o.CenterID == p.UserID
	case RoleVendor:
		return o.VendorID != "" && o.VendorID == p.UserID
	}
	return false
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (o Order) Clone() Order {
	c := o
	if o.RentalStart != nil {
		t := *o.RentalStart
		c.RentalStart = &t
	}
	if o.RentalEnd != nil {
		t := *o.RentalEnd
		c.RentalEnd = &t
	}
	if o.DamageCharge != nil {
		d := *o.DamageCharge
		c.DamageCharge = &d
	}
	return c
}

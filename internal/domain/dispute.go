package domain

import (
	"fmt"
	"time"
)

type DisputeStatus string

const (
	DisputeStatusOpen      DisputeStatus = "open"
	DisputeStatusResolved  DisputeStatus = "resolved"
	DisputeStatusEscalated DisputeStatus = "escalated"
)

var disputeTransitions = map[DisputeStatus]map[DisputeStatus]bool{
	DisputeStatusOpen:      {DisputeStatusResolved: true, DisputeStatusEscalated: true},
	DisputeStatusEscalated: {DisputeStatusResolved: true},
	DisputeStatusResolved:  {},
}

func (s DisputeStatus) Valid() bool {
	_, ok := disputeTransitions[s]
	return ok
}

func (s DisputeStatus) CanTransitionTo(to DisputeStatus) bool {
	return disputeTransitions[s][to]
}

func ParseDisputeStatus(s string) (DisputeStatus, error) {
	st := DisputeStatus(s)
	if !st.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("unknown dispute status %q", s))
	}
	return st, nil
}

type DisputeReason string

const (
	DisputeReasonDamage             DisputeReason = "damage"
	DisputeReasonWrongItem          DisputeReason = "wrong_item"
	DisputeReasonNotSanitized       DisputeReason = "not_sanitized"
	DisputeReasonDepositNotRefunded DisputeReason = "deposit_not_refunded"
	DisputeReasonOvercharged        DisputeReason = "overcharged"
	DisputeReasonOther              DisputeReason = "other"
)

func (r DisputeReason) Valid() bool {
	switch r {
	case DisputeReasonDamage, DisputeReasonWrongItem, DisputeReasonNotSanitized,
		DisputeReasonDepositNotRefunded, DisputeReasonOvercharged, DisputeReasonOther:
		return true
	}
	return false
}

type Dispute struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"order_id" validate:"required"`
	CustomerID  string        `json:"customer_id" validate:"required"`
	CenterID    string        `json:"center_id,omitempty"`
	Reason      DisputeReason `json:"reason" validate:"required"`
	Description string        `json:"description" validate:"required"`
	Status      DisputeStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (d *Dispute) VisibleTo(p Principal) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return d.CustomerID == p.UserID
	case RoleCenter:
		return d.CenterID != "" && d.CenterID == p.UserID
	}
	return false
}

package domain

import (
	"fmt"
	"time"
)

type TrialStatus string

const (
	TrialStatusPending   TrialStatus = "pending"
	TrialStatusConfirmed TrialStatus = "confirmed"
	TrialStatusCompleted TrialStatus = "completed"
	TrialStatusCancelled TrialStatus = "cancelled"
)

var trialTransitions = map[TrialStatus]map[TrialStatus]bool{
	TrialStatusPending:   {TrialStatusConfirmed: true, TrialStatusCancelled: true},
	TrialStatusConfirmed: {TrialStatusCompleted: true, TrialStatusCancelled: true},
	TrialStatusCompleted: {},
	TrialStatusCancelled: {},
}

func (s TrialStatus) Valid() bool {
	_, ok := trialTransitions[s]
	return ok
}

func (s TrialStatus) Terminal() bool {
	return s == TrialStatusCompleted || s == TrialStatusCancelled
}

func (s TrialStatus) CanTransitionTo(to TrialStatus) bool {
	return trialTransitions[s][to]
}

func ParseTrialStatus(s string) (TrialStatus, error) {
	st := TrialStatus(s)
	if !st.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("unknown trial status %q", s))
	}
	return st, nil
}

// TrialBooking is an in-person appointment to try a product at a center.
type TrialBooking struct {
	ID            string      `json:"id"`
	CustomerID    string      `json:"customer_id" validate:"required"`
	CustomerName  string      `json:"customer_name,omitempty"`
	CustomerPhone string      `json:"customer_phone,omitempty"`
	ProductID     string      `json:"product_id" validate:"required"`
	ProductName   string      `json:"product_name"`
	CenterID      string      `json:"center_id" validate:"required"`
	CenterName    string      `json:"center_name"`
	TrialDate     time.Time   `json:"trial_date" validate:"required"`
	Status        TrialStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Slot is the start of the time slot the trial occupies.
func (t *TrialBooking) Slot(slotLength time.Duration) time.Time {
	if slotLength <= 0 {
		return t.TrialDate
	}
	return t.TrialDate.Truncate(slotLength)
}

func (t *TrialBooking) VisibleTo(p Principal) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return t.CustomerID == p.UserID
	case RoleCenter:
		return t.CenterID == p.UserID
	}
	return false
}

package domain

import "time"

type EventType string

const (
	EventOrderCreated         EventType = "order.created"
	EventOrderStatusChanged   EventType = "order.status_changed"
	EventTrialBooked          EventType = "trial.booked"
	EventTrialStatusChanged   EventType = "trial.status_changed"
	EventSanitizationRecorded EventType = "sanitization.recorded"
	EventDisputeOpened        EventType = "dispute.opened"
	EventDisputeStatusChanged EventType = "dispute.status_changed"
	EventOrderReturnOverdue   EventType = "order.return_overdue"
	EventTrialReminderDue     EventType = "trial.reminder_due"
	EventPayoutStatusChanged  EventType = "payout.status_changed"
)

// Event attribute keys.
const (
	AttrCustomerID  = "customer_id"
	AttrVendorID    = "vendor_id"
	AttrCenterID    = "center_id"
	AttrOrderID     = "order_id"
	AttrProductName = "product_name"
	AttrFrom        = "from"
	AttrTo          = "to"
	AttrForced      = "forced"
	AttrTagID       = "tag_id"
	AttrTrialDate   = "trial_date"
	AttrReason      = "reason"
	AttrRentalEnd   = "rental_end"
	AttrAmount      = "amount"
)

// Event describes a committed workflow mutation. It is fanned out to
// notification and bus hooks after the state change is stored.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	EntityID   string            `json:"entity_id"`
	ActorID    string            `json:"actor_id,omitempty"`
	ActorRole  Role              `json:"actor_role,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func (e Event) Attr(key string) string {
	return e.Attributes[key]
}

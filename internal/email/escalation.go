package email

import (
	"context"
	"fmt"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
)

// EscalationMailer emails the operations inbox whenever a dispute is
// escalated.
type EscalationMailer struct {
	sender     Sender
	adminEmail string
}

func NewEscalationMailer(sender Sender, adminEmail string) *EscalationMailer {
	return &EscalationMailer{sender: sender, adminEmail: adminEmail}
}

// HandleDisputeStatusChanged is subscribed to dispute.status_changed.
func (m *EscalationMailer) HandleDisputeStatusChanged(ctx context.Context, e domain.Event) error {
	if e.Type != domain.EventDisputeStatusChanged || e.Attr(domain.AttrTo) != string(domain.DisputeStatusEscalated) {
		return nil
	}
	if m.adminEmail == "" {
		logger.Warn("Dispute escalated but no admin email configured", "disputeID", e.EntityID)
		return nil
	}

	body := fmt.Sprintf("Dispute %s on order %s has been escalated by %s (%s).\n\nReason: %s\n\nPlease review it in the admin dashboard.",
		e.EntityID, e.Attr(domain.AttrOrderID), e.ActorID, e.ActorRole, e.Attr(domain.AttrReason))

	return m.sender.Send(ctx, Message{
		To:        m.adminEmail,
		ToName:    "Operations",
		Subject:   fmt.Sprintf("Dispute %s escalated", e.EntityID),
		PlainText: body,
	})
}

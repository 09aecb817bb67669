package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rentwear-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func escalated() domain.Event {
	return domain.Event{
		Type:      domain.EventDisputeStatusChanged,
		EntityID:  "DSP-1",
		ActorID:   "center-1",
		ActorRole: domain.RoleCenter,
		Attributes: map[string]string{
			domain.AttrOrderID: "ORD-001",
			domain.AttrReason:  "damage",
			domain.AttrFrom:    "open",
			domain.AttrTo:      "escalated",
		},
	}
}

func TestEscalationMailer(t *testing.T) {
	ctx := context.Background()

	t.Run("Escalation is mailed", func(t *testing.T) {
		sender := new(MockSender)
		mailer := NewEscalationMailer(sender, "ops@rentwear.in")

		sender.On("Send", ctx, mock.MatchedBy(func(msg Message) bool {
			return msg.To == "ops@rentwear.in" &&
				msg.Subject == "Dispute DSP-1 escalated" &&
				strings.Contains(msg.PlainText, "order ORD-001") &&
				strings.Contains(msg.PlainText, "Reason: damage")
		})).Return(nil)

		assert.NoError(t, mailer.HandleDisputeStatusChanged(ctx, escalated()))
		sender.AssertExpectations(t)
	})

	t.Run("Resolution is ignored", func(t *testing.T) {
		sender := new(MockSender)
		mailer := NewEscalationMailer(sender, "ops@rentwear.in")

		e := escalated()
		e.Attributes[domain.AttrTo] = "resolved"

		assert.NoError(t, mailer.HandleDisputeStatusChanged(ctx, e))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Sender failure is returned", func(t *testing.T) {
		sender := new(MockSender)
		mailer := NewEscalationMailer(sender, "ops@rentwear.in")
		boundary := &domain.ExternalBoundaryError{Service: "sendgrid", Op: "Send", Err: errors.New("status 401")}
		sender.On("Send", ctx, mock.Anything).Return(boundary)

		err := mailer.HandleDisputeStatusChanged(ctx, escalated())
		assert.ErrorIs(t, err, domain.ErrExternalBoundary)
	})

	t.Run("No admin email configured", func(t *testing.T) {
		sender := new(MockSender)
		mailer := NewEscalationMailer(sender, "")

		assert.NoError(t, mailer.HandleDisputeStatusChanged(ctx, escalated()))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), Message{To: "ops@rentwear.in", Subject: "hi"}))
	assert.Error(t, LogSender{}.Send(context.Background(), Message{}))
}

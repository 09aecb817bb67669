package service_test

import (
	"testing"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisputeService_OpenDispute(t *testing.T) {
	f := newFixture(t)

	t.Run("Always starts open", func(t *testing.T) {
		d, err := f.disputes.OpenDispute(f.ctx, customer, &domain.Dispute{
			OrderID:     "ORD-003",
			Reason:      domain.DisputeReasonDepositNotRefunded,
			Description: "Deposit still pending after two weeks",
			Status:      domain.DisputeStatusEscalated,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DisputeStatusOpen, d.Status)
		assert.Equal(t, "center-2", d.CenterID)

		stored, err := f.disputes.GetDispute(f.ctx, admin, d.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DisputeStatusOpen, stored.Status)

		adminNotes, err := f.notes.List(f.ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationTypeWarning, adminNotes[0].Type)
		assert.Contains(t, adminNotes[0].Message, d.ID)
	})

	t.Run("Unknown reason", func(t *testing.T) {
		_, err := f.disputes.OpenDispute(f.ctx, customer, &domain.Dispute{OrderID: "ORD-003", Reason: "rude", Description: "x"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Missing description", func(t *testing.T) {
		_, err := f.disputes.OpenDispute(f.ctx, customer, &domain.Dispute{OrderID: "ORD-003", Reason: domain.DisputeReasonDamage})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Order must belong to the customer", func(t *testing.T) {
		_, err := f.disputes.OpenDispute(f.ctx, customer2, &domain.Dispute{OrderID: "ORD-003", Reason: domain.DisputeReasonDamage, Description: "x"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Unknown order", func(t *testing.T) {
		_, err := f.disputes.OpenDispute(f.ctx, customer, &domain.Dispute{OrderID: "ORD-404", Reason: domain.DisputeReasonDamage, Description: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Centers cannot open disputes", func(t *testing.T) {
		_, err := f.disputes.OpenDispute(f.ctx, center, &domain.Dispute{OrderID: "ORD-001", CustomerID: "cust-1", Reason: domain.DisputeReasonDamage, Description: "x"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDisputeService_UpdateDisputeStatus(t *testing.T) {
	f := newFixture(t)
	d, err := f.disputes.OpenDispute(f.ctx, customer, &domain.Dispute{
		OrderID:     "ORD-001",
		Reason:      domain.DisputeReasonNotSanitized,
		Description: "Stains on the necklace box",
	})
	require.NoError(t, err)

	t.Run("Customer cannot review", func(t *testing.T) {
		_, err := f.disputes.UpdateDisputeStatus(f.ctx, customer, d.ID, domain.DisputeStatusResolved)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Other center cannot review", func(t *testing.T) {
		_, err := f.disputes.UpdateDisputeStatus(f.ctx, center2, d.ID, domain.DisputeStatusResolved)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Escalate then resolve", func(t *testing.T) {
		got, err := f.disputes.UpdateDisputeStatus(f.ctx, center, d.ID, domain.DisputeStatusEscalated)
		require.NoError(t, err)
		assert.Equal(t, domain.DisputeStatusEscalated, got.Status)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

		changed := f.recorder.ofType(domain.EventDisputeStatusChanged)
		require.Len(t, changed, 1)
		assert.Equal(t, "escalated", changed[0].Attr(domain.AttrTo))
		assert.Equal(t, "ORD-001", changed[0].Attr(domain.AttrOrderID))

		got, err = f.disputes.UpdateDisputeStatus(f.ctx, admin, d.ID, domain.DisputeStatusResolved)
		require.NoError(t, err)
		assert.Equal(t, domain.DisputeStatusResolved, got.Status)

		notes, err := f.notes.List(f.ctx, customer)
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationTypeSuccess, notes[0].Type)
		assert.Contains(t, notes[0].Message, "resolved")
	})

	t.Run("Resolved is terminal", func(t *testing.T) {
		_, err := f.disputes.UpdateDisputeStatus(f.ctx, admin, d.ID, domain.DisputeStatusEscalated)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		_, err = f.disputes.UpdateDisputeStatus(f.ctx, admin, d.ID, domain.DisputeStatusOpen)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Listing is scoped", func(t *testing.T) {
		mine, err := f.disputes.ListDisputes(f.ctx, customer, repository.DisputeFilter{})
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		theirs, err := f.disputes.ListDisputes(f.ctx, customer2, repository.DisputeFilter{CustomerID: "cust-1"})
		require.NoError(t, err)
		assert.Empty(t, theirs)

		atCenter, err := f.disputes.ListDisputes(f.ctx, center, repository.DisputeFilter{Status: domain.DisputeStatusResolved})
		require.NoError(t, err)
		assert.Len(t, atCenter, 1)

		_, err = f.disputes.ListDisputes(f.ctx, vendor, repository.DisputeFilter{})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

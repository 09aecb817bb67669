package jobs

import (
	"context"
	"testing"
	"time"

	"rentwear-backend/internal/config"
	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository/memory"
	"rentwear-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, now time.Time) (*JobRunner, service.NotificationService) {
	t.Helper()
	store := memory.NewSeeded().Store()
	clock := service.Clock(func() time.Time { return now })
	notes := service.NewNotificationService(store.Notifications, clock)
	emitter := service.NewEmitter(clock)
	emitter.Register("notifications", service.NewNotificationFanout(notes, ""))

	jr := NewJobRunner(store, emitter, &config.Config{})
	jr.now = func() time.Time { return now }
	return jr, notes
}

func TestSendTrialReminders(t *testing.T) {
	ctx := context.Background()
	cust := domain.Principal{UserID: "cust-1", Role: domain.RoleCustomer}

	t.Run("Reminds once inside the window", func(t *testing.T) {
		jr, notes := newTestRunner(t, time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC))

		count, err := jr.sendTrialReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		list, err := notes.List(ctx, cust)
		require.NoError(t, err)
		assert.Contains(t, list[0].Message, "Reminder: your trial of Bridal Lehenga - Crimson Gold is on Mar 5")

		count, err = jr.sendTrialReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Reminded trials are forgotten once they start", func(t *testing.T) {
		jr, _ := newTestRunner(t, time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC))
		_, err := jr.sendTrialReminders(ctx)
		require.NoError(t, err)
		reminded, _ := jr.tracked()
		assert.Equal(t, 1, reminded)

		jr.now = func() time.Time { return time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC) }
		count, err := jr.sendTrialReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		reminded, _ = jr.tracked()
		assert.Equal(t, 0, reminded)
	})

	t.Run("Too early", func(t *testing.T) {
		jr, _ := newTestRunner(t, time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC))
		count, err := jr.sendTrialReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Already started", func(t *testing.T) {
		jr, _ := newTestRunner(t, time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC))
		count, err := jr.sendTrialReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestFlagOverdueReturns(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.February, 27, 8, 0, 0, 0, time.UTC)
	jr, notes := newTestRunner(t, now)

	count, err := jr.flagOverdueReturns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	centerNotes, err := notes.List(ctx, domain.Principal{UserID: "center-1", Role: domain.RoleCenter})
	require.NoError(t, err)
	require.Len(t, centerNotes, 1)
	assert.Equal(t, domain.NotificationTypeWarning, centerNotes[0].Type)
	assert.Contains(t, centerNotes[0].Message, "ORD-001")

	t.Run("Once per day", func(t *testing.T) {
		count, err := jr.flagOverdueReturns(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		jr.now = func() time.Time { return now.Add(24 * time.Hour) }
		count, err = jr.flagOverdueReturns(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Entries from earlier days are dropped", func(t *testing.T) {
		o, err := jr.store.Orders.GetByID(ctx, "ORD-001")
		require.NoError(t, err)
		o.Status = domain.OrderStatusReturned
		require.NoError(t, jr.store.Orders.Update(ctx, o, domain.OrderStatusRented))

		_, flagged := jr.tracked()
		assert.Equal(t, 1, flagged)

		jr.now = func() time.Time { return now.Add(48 * time.Hour) }
		count, err := jr.flagOverdueReturns(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		_, flagged = jr.tracked()
		assert.Equal(t, 0, flagged)
	})

	t.Run("Panics are recovered", func(t *testing.T) {
		assert.NotPanics(t, func() {
			jr.runWithRecovery("boom", func() { panic("boom") })
		})
	})
}

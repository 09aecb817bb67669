package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	store := New().Store()

	t.Run("Create and get returns a copy", func(t *testing.T) {
		start := day(2026, time.March, 1)
		o := &domain.Order{ID: "ORD-10", CustomerID: "cust-1", CenterID: "center-1", Status: domain.OrderStatusTrialBooked, RentalStart: &start}
		require.NoError(t, store.Orders.Create(ctx, o))

		got, err := store.Orders.GetByID(ctx, "ORD-10")
		require.NoError(t, err)
		got.Status = domain.OrderStatusClosed
		*got.RentalStart = start.Add(time.Hour)

		again, err := store.Orders.GetByID(ctx, "ORD-10")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusTrialBooked, again.Status)
		assert.Equal(t, start, *again.RentalStart)
	})

	t.Run("Duplicate id conflicts", func(t *testing.T) {
		err := store.Orders.Create(ctx, &domain.Order{ID: "ORD-10"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, err := store.Orders.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		err = store.Orders.Update(ctx, &domain.Order{ID: "nope"}, domain.OrderStatusTrialBooked)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Update requires the status that was read", func(t *testing.T) {
		o, err := store.Orders.GetByID(ctx, "ORD-10")
		require.NoError(t, err)
		stale := o.Clone()

		o.Status = domain.OrderStatusPaymentDone
		require.NoError(t, store.Orders.Update(ctx, o, domain.OrderStatusTrialBooked))

		stale.Status = domain.OrderStatusTrialCompleted
		err = store.Orders.Update(ctx, &stale, domain.OrderStatusTrialBooked)
		assert.ErrorIs(t, err, domain.ErrConflict)

		got, err := store.Orders.GetByID(ctx, "ORD-10")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPaymentDone, got.Status)
	})
}

func TestOrderRepository_List(t *testing.T) {
	ctx := context.Background()
	store := NewSeeded().Store()

	all, err := store.Orders.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ORD-002", all[0].ID)
	assert.Equal(t, "ORD-003", all[2].ID)

	rented, err := store.Orders.List(ctx, repository.OrderFilter{Status: domain.OrderStatusRented})
	require.NoError(t, err)
	require.Len(t, rented, 1)
	assert.Equal(t, "ORD-001", rented[0].ID)

	delhi, err := store.Orders.List(ctx, repository.OrderFilter{CenterID: "center-2"})
	require.NoError(t, err)
	require.Len(t, delhi, 1)
	assert.Equal(t, "Diamond Choker Set", delhi[0].ProductName)

	vendor, err := store.Orders.List(ctx, repository.OrderFilter{VendorID: "vendor-1", CustomerID: "cust-1"})
	require.NoError(t, err)
	assert.Len(t, vendor, 2)
}

func TestTrialRepository_List(t *testing.T) {
	ctx := context.Background()
	store := NewSeeded().Store()

	later := &domain.TrialBooking{ID: "TRIAL-002", CustomerID: "cust-2", ProductID: "prod-1", CenterID: "center-1",
		TrialDate: time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC), Status: domain.TrialStatusPending}
	earlier := &domain.TrialBooking{ID: "TRIAL-003", CustomerID: "cust-2", ProductID: "prod-1", CenterID: "center-2",
		TrialDate: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC), Status: domain.TrialStatusPending}
	require.NoError(t, store.Trials.Create(ctx, later))
	require.NoError(t, store.Trials.Create(ctx, earlier))

	all, err := store.Trials.List(ctx, repository.TrialFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"TRIAL-003", "TRIAL-001", "TRIAL-002"}, []string{all[0].ID, all[1].ID, all[2].ID})

	from := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC)
	window, err := store.Trials.List(ctx, repository.TrialFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "TRIAL-001", window[0].ID)

	pending, err := store.Trials.List(ctx, repository.TrialFilter{Status: domain.TrialStatusPending, CenterID: "center-1"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "TRIAL-002", pending[0].ID)
}

func TestSanitizationRepository(t *testing.T) {
	ctx := context.Background()
	store := New().Store()
	base := day(2026, time.March, 1)

	for i, id := range []string{"s1", "s2", "s3"} {
		rec := &domain.SanitizationRecord{ID: id, OrderID: "ORD-001", DateTime: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, store.Sanitizations.Append(ctx, rec))
	}
	require.NoError(t, store.Sanitizations.Append(ctx, &domain.SanitizationRecord{ID: "s4", OrderID: "ORD-002", DateTime: base}))

	t.Run("Most recent first", func(t *testing.T) {
		recent, err := store.Sanitizations.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "s3", recent[0].ID)
		assert.Equal(t, "s2", recent[1].ID)

		all, err := store.Sanitizations.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("By order", func(t *testing.T) {
		recs, err := store.Sanitizations.ListByOrder(ctx, "ORD-002")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "s4", recs[0].ID)
	})

	t.Run("Same timestamp returns the later insert first", func(t *testing.T) {
		at := base.Add(10 * time.Hour)
		require.NoError(t, store.Sanitizations.Append(ctx, &domain.SanitizationRecord{ID: "s7", OrderID: "ORD-003", DateTime: at, TagID: "SANT-S7"}))
		require.NoError(t, store.Sanitizations.Append(ctx, &domain.SanitizationRecord{ID: "s8", OrderID: "ORD-003", DateTime: at}))

		recs, err := store.Sanitizations.ListByOrder(ctx, "ORD-003")
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "s8", recs[0].ID)
	})

	t.Run("Duplicate tag rejected", func(t *testing.T) {
		require.NoError(t, store.Sanitizations.Append(ctx, &domain.SanitizationRecord{ID: "s5", TagID: "SANT-ABC"}))
		err := store.Sanitizations.Append(ctx, &domain.SanitizationRecord{ID: "s6", TagID: "SANT-ABC"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	store := NewSeeded().Store()

	count, err := store.Notifications.CountUnread(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := store.Notifications.List(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "notif-2", list[0].ID)

	t.Run("Mark read is idempotent", func(t *testing.T) {
		require.NoError(t, store.Notifications.MarkAsRead(ctx, "notif-1", "cust-1"))
		require.NoError(t, store.Notifications.MarkAsRead(ctx, "notif-1", "cust-1"))

		count, err := store.Notifications.CountUnread(ctx, "cust-1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Other user's notification", func(t *testing.T) {
		err := store.Notifications.MarkAsRead(ctx, "notif-4", "cust-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestContainer_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := New().Store()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := &domain.Notification{ID: fmt.Sprintf("n-%d", i), UserID: "u1"}
			_ = store.Notifications.Create(ctx, n)
			_, _ = store.Notifications.CountUnread(ctx, "u1")
		}(i)
	}
	wg.Wait()

	count, err := store.Notifications.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

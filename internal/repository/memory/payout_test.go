package memory

import (
	"context"
	"testing"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayoutRepository(t *testing.T) {
	ctx := context.Background()
	store := NewSeeded().Store()

	seeded, err := store.Payouts.GetByID(ctx, "PAY-001")
	require.NoError(t, err)
	assert.Equal(t, "ORD-003", seeded.OrderID)
	assert.Equal(t, int64(2625), seeded.Net)

	t.Run("One payout per order", func(t *testing.T) {
		err := store.Payouts.Create(ctx, &domain.Payout{ID: "PAY-009", OrderID: "ORD-003", VendorID: "vendor-2"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("List filters and orders newest first", func(t *testing.T) {
		require.NoError(t, store.Payouts.Create(ctx, &domain.Payout{ID: "PAY-002", OrderID: "ORD-001", VendorID: "vendor-1",
			Status: domain.PayoutStatusPending, CreatedAt: day(2026, time.March, 2)}))

		pending, err := store.Payouts.List(ctx, repository.PayoutFilter{Status: domain.PayoutStatusPending})
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "PAY-002", pending[0].ID)

		mine, err := store.Payouts.List(ctx, repository.PayoutFilter{VendorID: "vendor-2"})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "PAY-001", mine[0].ID)
	})

	t.Run("Update requires the status that was read", func(t *testing.T) {
		p, err := store.Payouts.GetByID(ctx, "PAY-001")
		require.NoError(t, err)
		p.Status = domain.PayoutStatusReleased
		require.NoError(t, store.Payouts.Update(ctx, p, domain.PayoutStatusPending))

		p.Status = domain.PayoutStatusProcessing
		err = store.Payouts.Update(ctx, p, domain.PayoutStatusPending)
		assert.ErrorIs(t, err, domain.ErrConflict)

		_, err = store.Payouts.GetByID(ctx, "PAY-404")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

package jobs

import (
	"context"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

// FlagOverdueReturns warns customers and centers about rented orders past
// their rental end. Orders are flagged at most once per day.
func (jr *JobRunner) FlagOverdueReturns() {
	jr.runWithRecovery("FlagOverdueReturns", func() {
		count, err := jr.flagOverdueReturns(context.Background())
		if err != nil {
			logger.Error("Failed to flag overdue returns", "error", err)
			return
		}
		logger.Info("Flagged overdue returns", "count", count)
	})
}

func (jr *JobRunner) flagOverdueReturns(ctx context.Context) (int, error) {
	now := jr.now()
	jr.prune(jr.flagged, now)
	endOfDay := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	orders, err := jr.store.Orders.List(ctx, repository.OrderFilter{Status: domain.OrderStatusRented})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, o := range orders {
		if o.RentalEnd == nil || !o.RentalEnd.Before(now) {
			continue
		}
		if !jr.markOnce(jr.flagged, o.ID, now, endOfDay) {
			continue
		}
		jr.emitter.Emit(ctx, domain.Event{
			Type:      domain.EventOrderReturnOverdue,
			EntityID:  o.ID,
			ActorID:   domain.System.UserID,
			ActorRole: domain.System.Role,
			Attributes: map[string]string{
				domain.AttrCustomerID:  o.CustomerID,
				domain.AttrCenterID:    o.CenterID,
				domain.AttrVendorID:    o.VendorID,
				domain.AttrProductName: o.ProductName,
				domain.AttrRentalEnd:   o.RentalEnd.Format(time.RFC3339),
			},
			OccurredAt: now,
		})
		count++
		logger.Debug("Flagged overdue return", "order_id", o.ID, "rental_end", o.RentalEnd)
	}
	return count, nil
}

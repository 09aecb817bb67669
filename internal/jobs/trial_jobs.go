package jobs

import (
	"context"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

const reminderWindow = 24 * time.Hour

// SendTrialReminders reminds customers of confirmed trials starting within
// the next 24 hours. Each trial is reminded at most once per process.
func (jr *JobRunner) SendTrialReminders() {
	jr.runWithRecovery("SendTrialReminders", func() {
		count, err := jr.sendTrialReminders(context.Background())
		if err != nil {
			logger.Error("Failed to send trial reminders", "error", err)
			return
		}
		logger.Info("Sent trial reminders", "count", count)
	})
}

func (jr *JobRunner) sendTrialReminders(ctx context.Context) (int, error) {
	now := jr.now()
	jr.prune(jr.reminded, now)
	until := now.Add(reminderWindow)
	trials, err := jr.store.Trials.List(ctx, repository.TrialFilter{
		Status: domain.TrialStatusConfirmed,
		From:   &now,
		To:     &until,
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, t := range trials {
		if !jr.markOnce(jr.reminded, t.ID, now, t.TrialDate) {
			continue
		}
		jr.emitter.Emit(ctx, domain.Event{
			Type:      domain.EventTrialReminderDue,
			EntityID:  t.ID,
			ActorID:   domain.System.UserID,
			ActorRole: domain.System.Role,
			Attributes: map[string]string{
				domain.AttrCustomerID:  t.CustomerID,
				domain.AttrCenterID:    t.CenterID,
				domain.AttrProductName: t.ProductName,
				domain.AttrTrialDate:   t.TrialDate.Format(time.RFC3339),
			},
			OccurredAt: now,
		})
		count++
		logger.Debug("Sent trial reminder", "trial_id", t.ID, "customer_id", t.CustomerID)
	}
	return count, nil
}


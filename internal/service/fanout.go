package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentwear-backend/internal/domain"
)

// DefaultAdminUserID receives admin-facing notifications.
const DefaultAdminUserID = "admin-1"

type recipient struct {
	userID string
	role   domain.Role
	kind   domain.NotificationType
	msg    string
}

// NotificationFanout turns workflow events into in-app notifications for the
// users each event concerns.
type NotificationFanout struct {
	notes       NotificationService
	adminUserID string
}

func NewNotificationFanout(notes NotificationService, adminUserID string) *NotificationFanout {
	if adminUserID == "" {
		adminUserID = DefaultAdminUserID
	}
	return &NotificationFanout{notes: notes, adminUserID: adminUserID}
}

func (f *NotificationFanout) Handle(ctx context.Context, e domain.Event) error {
	var errs []error
	for _, r := range f.recipients(e) {
		if r.userID == "" {
			continue
		}
		_, err := f.notes.Add(ctx, &domain.Notification{
			UserID:  r.userID,
			Role:    r.role,
			Message: r.msg,
			Type:    r.kind,
			Attributes: map[string]string{
				"event_type": string(e.Type),
				"entity_id":  e.EntityID,
			},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", r.userID, err))
		}
	}
	return errors.Join(errs...)
}

func (f *NotificationFanout) recipients(e domain.Event) []recipient {
	customer := e.Attr(domain.AttrCustomerID)
	center := e.Attr(domain.AttrCenterID)
	vendor := e.Attr(domain.AttrVendorID)
	product := e.Attr(domain.AttrProductName)
	to := e.Attr(domain.AttrTo)

	switch e.Type {
	case domain.EventOrderCreated:
		return []recipient{
			{customer, domain.RoleCustomer, domain.NotificationTypeSuccess, fmt.Sprintf("New order %s created for %s.", e.EntityID, product)},
			{center, domain.RoleCenter, domain.NotificationTypeInfo, fmt.Sprintf("New order %s for %s assigned to your center.", e.EntityID, product)},
		}

	case domain.EventOrderStatusChanged:
		status := domain.OrderStatus(to)
		out := []recipient{{customer, domain.RoleCustomer, orderStatusSeverity(status),
			fmt.Sprintf("Order %s is now %s.", e.EntityID, status.Label())}}
		switch status {
		case domain.OrderStatusRented:
			out = append(out, recipient{vendor, domain.RoleVendor, domain.NotificationTypeInfo,
				fmt.Sprintf("Product %q is currently rented.", product)})
		case domain.OrderStatusReturned:
			out = append(out,
				recipient{center, domain.RoleCenter, domain.NotificationTypeInfo, fmt.Sprintf("Order %s has been returned and needs inspection.", e.EntityID)},
				recipient{vendor, domain.RoleVendor, domain.NotificationTypeInfo, fmt.Sprintf("Product %q has been returned.", product)})
		}
		return out

	case domain.EventTrialBooked:
		date := formatDay(e.Attr(domain.AttrTrialDate))
		msg := fmt.Sprintf("Trial booking %s requested for %s. The center will confirm shortly.", e.EntityID, date)
		kind := domain.NotificationTypeInfo
		if domain.TrialStatus(to) == domain.TrialStatusConfirmed {
			msg = fmt.Sprintf("Trial booking %s confirmed for %s.", e.EntityID, date)
			kind = domain.NotificationTypeSuccess
		}
		return []recipient{
			{customer, domain.RoleCustomer, kind, msg},
			{center, domain.RoleCenter, domain.NotificationTypeInfo, fmt.Sprintf("New trial booking %s for %s on %s.", e.EntityID, product, date)},
		}

	case domain.EventTrialStatusChanged:
		date := formatDay(e.Attr(domain.AttrTrialDate))
		switch domain.TrialStatus(to) {
		case domain.TrialStatusConfirmed:
			return []recipient{{customer, domain.RoleCustomer, domain.NotificationTypeSuccess, fmt.Sprintf("Trial booking %s confirmed for %s.", e.EntityID, date)}}
		case domain.TrialStatusCancelled:
			return []recipient{
				{customer, domain.RoleCustomer, domain.NotificationTypeWarning, fmt.Sprintf("Trial booking %s for %s was cancelled.", e.EntityID, date)},
				{center, domain.RoleCenter, domain.NotificationTypeWarning, fmt.Sprintf("Trial booking %s for %s was cancelled.", e.EntityID, date)},
			}
		case domain.TrialStatusCompleted:
			return []recipient{{customer, domain.RoleCustomer, domain.NotificationTypeInfo, fmt.Sprintf("Thanks for visiting. Trial %s for %s is complete.", e.EntityID, product)}}
		}

	case domain.EventSanitizationRecorded:
		order := e.Attr(domain.AttrOrderID)
		if tag := e.Attr(domain.AttrTagID); tag != "" {
			return []recipient{{center, domain.RoleCenter, domain.NotificationTypeSuccess,
				fmt.Sprintf("Sanitization approved for order %s. Tag %s issued.", order, tag)}}
		}
		if vendor != "" {
			return []recipient{{vendor, domain.RoleVendor, domain.NotificationTypeWarning, fmt.Sprintf("Order %s failed inspection and needs recleaning.", order)}}
		}
		return []recipient{{center, domain.RoleCenter, domain.NotificationTypeWarning, fmt.Sprintf("Order %s failed inspection and needs recleaning.", order)}}

	case domain.EventDisputeOpened:
		order := e.Attr(domain.AttrOrderID)
		return []recipient{
			{customer, domain.RoleCustomer, domain.NotificationTypeInfo, fmt.Sprintf("Dispute %s opened for order %s. We will review it shortly.", e.EntityID, order)},
			{f.adminUserID, domain.RoleAdmin, domain.NotificationTypeWarning, fmt.Sprintf("New dispute %s on order %s: %s.", e.EntityID, order, e.Attr(domain.AttrReason))},
		}

	case domain.EventDisputeStatusChanged:
		switch domain.DisputeStatus(to) {
		case domain.DisputeStatusResolved:
			return []recipient{{customer, domain.RoleCustomer, domain.NotificationTypeSuccess, fmt.Sprintf("Dispute %s has been resolved.", e.EntityID)}}
		case domain.DisputeStatusEscalated:
			return []recipient{
				{customer, domain.RoleCustomer, domain.NotificationTypeWarning, fmt.Sprintf("Dispute %s has been escalated for review.", e.EntityID)},
				{f.adminUserID, domain.RoleAdmin, domain.NotificationTypeWarning, fmt.Sprintf("Dispute %s on order %s was escalated.", e.EntityID, e.Attr(domain.AttrOrderID))},
			}
		}

	case domain.EventOrderReturnOverdue:
		due := formatDay(e.Attr(domain.AttrRentalEnd))
		return []recipient{
			{customer, domain.RoleCustomer, domain.NotificationTypeWarning, fmt.Sprintf("Rental %s was due back on %s. Please return it to the center.", e.EntityID, due)},
			{center, domain.RoleCenter, domain.NotificationTypeWarning, fmt.Sprintf("Order %s is overdue for return since %s.", e.EntityID, due)},
		}

	case domain.EventTrialReminderDue:
		return []recipient{{customer, domain.RoleCustomer, domain.NotificationTypeInfo,
			fmt.Sprintf("Reminder: your trial of %s is on %s.", product, formatDay(e.Attr(domain.AttrTrialDate)))}}

	case domain.EventPayoutStatusChanged:
		if domain.PayoutStatus(to) == domain.PayoutStatusReleased {
			return []recipient{{vendor, domain.RoleVendor, domain.NotificationTypeSuccess,
				fmt.Sprintf("Payout %s of ₹%s for order %s has been released.", e.EntityID, e.Attr(domain.AttrAmount), e.Attr(domain.AttrOrderID))}}
		}
	}
	return nil
}

func orderStatusSeverity(s domain.OrderStatus) domain.NotificationType {
	switch s {
	case domain.OrderStatusReadyForHandover, domain.OrderStatusClosed, domain.OrderStatusPaymentDone:
		return domain.NotificationTypeSuccess
	}
	return domain.NotificationTypeInfo
}

// formatDay renders an RFC 3339 attribute as "Mar 5".
func formatDay(v string) string {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return v
	}
	return t.Format("Jan 2")
}

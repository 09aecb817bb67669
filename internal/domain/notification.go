package domain

import "time"

type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning, NotificationTypeError:
		return true
	}
	return false
}

// Notification is a role-scoped in-app message. Read only ever moves from
// false to true.
type Notification struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id" validate:"required"`
	Role       Role              `json:"role" validate:"required"`
	Message    string            `json:"message" validate:"required"`
	Type       NotificationType  `json:"type" validate:"required"`
	Read       bool              `json:"read"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (n Notification) Clone() Notification {
	c := n
	if n.Attributes != nil {
		c.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			c.Attributes[k] = v
		}
	}
	return c
}

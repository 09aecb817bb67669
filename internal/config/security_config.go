// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health - Public
	"Healthz": SecurityPublic,

	// Images are linked from sanitization records and fetched by browsers
	"GetImage": SecurityPublic,

	// Orders - Access Protected
	"CreateOrder":        SecurityAccess,
	"ListOrders":         SecurityAccess,
	"GetOrder":           SecurityAccess,
	"AdvanceOrderStatus": SecurityAccess,
	"ForceOrderStatus":   SecurityAccess,
	"ConfirmHandover":    SecurityAccess,
	"RecordReturn":       SecurityAccess,
	"GetSettlement":      SecurityAccess,

	// Trials - Access Protected
	"BookTrial":         SecurityAccess,
	"BookWalkIn":        SecurityAccess,
	"ListTrials":        SecurityAccess,
	"UpdateTrialStatus": SecurityAccess,

	// Sanitization - Access Protected
	"RecordSanitization": SecurityAccess,
	"ListSanitization":   SecurityAccess,
	"UploadImage":        SecurityAccess,

	// Disputes - Access Protected
	"OpenDispute":         SecurityAccess,
	"ListDisputes":        SecurityAccess,
	"UpdateDisputeStatus": SecurityAccess,

	// Notifications - Access Protected
	"ListNotifications":    SecurityAccess,
	"UnreadCount":          SecurityAccess,
	"MarkNotificationRead": SecurityAccess,

	// Finance - Access Protected
	"VendorEarnings":     SecurityAccess,
	"CustomerWallet":     SecurityAccess,
	"ListPayouts":        SecurityAccess,
	"UpdatePayoutStatus": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}

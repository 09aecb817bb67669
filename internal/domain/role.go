package domain

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleCenter   Role = "center"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleCenter, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller of a workflow operation.
type Principal struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// System is the principal used by scheduled jobs.
var System = Principal{UserID: "system", Role: RoleAdmin}

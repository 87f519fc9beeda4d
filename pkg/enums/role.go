package enums

import "fmt"

// Role is the closed set of marketplace roles. Every comparison goes
// through the enum; raw role strings never leave the persistence layer.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
)

var validRoles = []Role{
	RoleAdmin,
	RoleVendor,
	RoleCustomer,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// HomePath returns the role's own landing area. Authorization failures
// redirect here rather than to an error page.
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleVendor:
		return "/vendor/dashboard"
	case RoleCustomer:
		return "/customer/dashboard"
	default:
		return "/customer/dashboard"
	}
}

package enums

import "fmt"

// Role identifies which side of the marketplace a user belongs to.
// A user's role is fixed at registration and never changes.
type Role string

const (
	RoleFarmer   Role = "FARMER"
	RoleRetailer Role = "RETAILER"
	RoleDelivery Role = "DELIVERY"
	RoleAdmin    Role = "ADMIN"
)

var validRoles = []Role{
	RoleFarmer,
	RoleRetailer,
	RoleDelivery,
	RoleAdmin,
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

// Registerable reports whether self-service registration may create this role.
// Admin accounts are provisioned out of band.
func (r Role) Registerable() bool {
	return r == RoleFarmer || r == RoleRetailer || r == RoleDelivery
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

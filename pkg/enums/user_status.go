package enums

// UserStatus tracks account standing.
type UserStatus string

const (
	UserStatusActive              UserStatus = "ACTIVE"
	UserStatusPendingVerification UserStatus = "PENDING_VERIFICATION"
	UserStatusSuspended           UserStatus = "SUSPENDED"
)

var validUserStatuses = []UserStatus{
	UserStatusActive,
	UserStatusPendingVerification,
	UserStatusSuspended,
}

// String implements fmt.Stringer.
func (s UserStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known UserStatus.
func (s UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

package enums

// UserRole is the capability attached to an account.
type UserRole string

const (
	UserRoleCustomer   UserRole = "customer"
	UserRoleConsultant UserRole = "consultant"
	UserRoleStaff      UserRole = "staff"
	UserRoleAdmin      UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleConsultant,
	UserRoleStaff,
	UserRoleAdmin,
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsBackOffice reports whether the role may run staff-gated operations (refunds, payouts, fulfillment).
func (r UserRole) IsBackOffice() bool {
	return r == UserRoleStaff || r == UserRoleAdmin
}

func ParseUserRole(value string) (UserRole, error) {
	return parseEnum("user role", validUserRoles, value)
}

// CanEarnCommission reports whether orders may be attributed to a user with this role.
func (r UserRole) CanEarnCommission() bool {
	return r == UserRoleConsultant
}

package domain

// StaffRole role of a staff member within the provider
type StaffRole string

const (
	RoleOwner   StaffRole = "owner"
	RoleManager StaffRole = "manager"
	RoleStylist StaffRole = "stylist"
)

// Staff member of a provider. Timezone comes from the provider.
type Staff struct {
	ID         int64
	ProviderID int64
	LocationID *int64
	UserID     *int64
	Name       string
	Role       StaffRole
	IsActive   bool
	Timezone   string
}

// CanManage returns true for roles allowed to change provider settings and payroll
func (s *Staff) CanManage() bool {
	return s.Role == RoleOwner || s.Role == RoleManager
}

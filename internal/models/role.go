package models

// Reserved role ids. They are hidden from the role picker for non-administrators.
const (
	RoleAdministratorID = 1
	RoleAdminID         = 2
)

// Role keys as stored in roles.name
const (
	RoleAdministrator = "administrator"
	RoleAdmin         = "admin"
	RoleStaff         = "staff"
	RoleGuest         = "guest"
)

// Role represents a role a user can hold
type Role struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// ReservedRoleIDs returns role ids that only administrators may assign
func ReservedRoleIDs() []int {
	return []int{RoleAdministratorID, RoleAdminID}
}

// Actor is the authenticated user performing a request
type Actor struct {
	ID        int
	Role      string
	IPAddress string
	RequestID string
}

// IsAdministrator reports whether the actor holds the administrator role
func (a Actor) IsAdministrator() bool {
	return a.Role == RoleAdministrator
}

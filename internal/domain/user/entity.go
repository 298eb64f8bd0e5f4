package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve or cancel deductions
	RoleEmployee Role = "employee" // Regular employee
	RoleSystem   Role = "system"   // Automated actor, never issued to people
)

// SystemActorID attributes automatic decisions such as auto-approved deductions.
const SystemActorID = "system"

// IsManager checks if the role is manager or owner
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleOwner
}

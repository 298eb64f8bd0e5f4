package user

type Permission string

const (
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	PermissionDeductionViewAll Permission = "deduction.view_all"
	PermissionDeductionApprove Permission = "deduction.approve"
	PermissionDeductionCancel  Permission = "deduction.cancel"
	PermissionDeductionPayroll Permission = "deduction.payroll"
	PermissionDeductionPolicy  Permission = "deduction.policy"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionDeductionViewAll,
		PermissionDeductionApprove,
		PermissionDeductionCancel,
		PermissionDeductionPayroll,
		PermissionDeductionPolicy,
	},
	RoleManager: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionDeductionViewAll,
		PermissionDeductionApprove,
		PermissionDeductionCancel,
	},
	RoleEmployee: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
	},
	RoleSystem: {
		PermissionDeductionPayroll,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

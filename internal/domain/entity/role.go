package entity

// Staff roles
const (
	RoleOwner   = "owner"
	RoleCashier = "cashier"
)

// Permissions carried in access tokens
const (
	PermissionManageSales       = "manage-sales"
	PermissionManageCustomers   = "manage-customers"
	PermissionManageCatalog     = "manage-catalog"
	PermissionViewCatalog       = "view-catalog"
	PermissionManageConfections = "manage-confections"
	PermissionViewReports       = "view-reports"
	PermissionManageStaff       = "manage-staff"
)

var rolePermissions = map[string][]string{
	RoleOwner: {
		PermissionManageSales,
		PermissionManageCustomers,
		PermissionManageCatalog,
		PermissionViewCatalog,
		PermissionManageConfections,
		PermissionViewReports,
		PermissionManageStaff,
	},
	RoleCashier: {
		PermissionManageSales,
		PermissionManageCustomers,
		PermissionViewCatalog,
	},
}

// PermissionsForRole returns a copy of the role's permission set.
// Unknown roles get none.
func PermissionsForRole(role string) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// IsValidRole reports whether role is a known staff role
func IsValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

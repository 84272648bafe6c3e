package constants

const (
	Donate           = "donate"
	ViewOwnDonations = "view_own_donations"
	ViewAllDonations = "view_all_donations"
	ManageProjects   = "manage_projects"
	ViewAllocations  = "view_allocations"
	ExportReports    = "export_reports"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	Donate:           {User, Superuser},
	ViewOwnDonations: {User, Superuser},
	ViewAllDonations: {Superuser},
	ManageProjects:   {Superuser},
	ViewAllocations:  {Superuser},
	ExportReports:    {Superuser},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	for _, r := range PermissionRoles[permission] {
		if r == role {
			return true
		}
	}
	return false
}

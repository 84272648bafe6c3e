package constants

// Session roles. A user's role is derived from its is_superuser flag.
const (
	Superuser = "superuser"
	User      = "user"
)

var ValidRoles = []string{User, Superuser}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleOf maps the is_superuser flag to a session role.
func RoleOf(isSuperuser bool) string {
	if isSuperuser {
		return Superuser
	}
	return User
}

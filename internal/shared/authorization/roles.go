// Package authorization holds the platform-wide account roles. Workspace
// roles live with the workspace domain.
package authorization

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleClient      UserRole = "client"
	RoleInvitedUser UserRole = "invited_user"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleInvitedUser:
		return true
	}
	return false
}

// ParseUserRole falls back to RoleClient for unknown values.
func ParseUserRole(s string) UserRole {
	role := UserRole(s)
	if role.IsValid() {
		return role
	}
	return RoleClient
}

// CanAccessResourceByOwnerID lets admins through and otherwise requires ownership.
func CanAccessResourceByOwnerID(userID uint, userRole UserRole, resourceOwnerID uint) bool {
	if userRole.IsAdmin() {
		return true
	}
	return userID == resourceOwnerID
}

package permission

import "github.com/connecthub/connecthub/internal/domain/workspace"

// Baseline returns the permissions every member with role holds before
// group grants: owner and admin hold everything, member holds read and
// write levels, viewer holds read only.
func Baseline(role workspace.Role) []string {
	var allowed func(Level) bool
	switch role {
	case workspace.RoleOwner, workspace.RoleAdmin:
		allowed = func(Level) bool { return true }
	case workspace.RoleMember:
		allowed = func(l Level) bool { return l == LevelRead || l == LevelWrite }
	case workspace.RoleViewer:
		allowed = func(l Level) bool { return l == LevelRead }
	default:
		return nil
	}

	var ids []string
	for _, p := range catalog {
		if allowed(p.Level) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Roles lists the workspace roles that carry a baseline.
func Roles() []workspace.Role {
	return []workspace.Role{workspace.RoleOwner, workspace.RoleAdmin, workspace.RoleMember, workspace.RoleViewer}
}

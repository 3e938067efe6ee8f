package workspace

// Role is a member's role inside one workspace. Checks are plain string
// comparisons; fine-grained capabilities come from the permission package.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleOwner:  true,
	RoleAdmin:  true,
	RoleMember: true,
	RoleViewer: true,
}

func (r Role) IsValid() bool  { return validRoles[r] }
func (r Role) String() string { return string(r) }
func (r Role) IsOwner() bool  { return r == RoleOwner }
func (r Role) IsAdmin() bool  { return r == RoleAdmin }

// IsInvitable reports whether the role can be granted through an invitation.
func (r Role) IsInvitable() bool {
	return r == RoleAdmin || r == RoleMember || r == RoleViewer
}

package permission

import (
	"context"

	"github.com/connecthub/connecthub/internal/domain/workspace"
)

// Subjects used by the enforcer. Users are keyed by SID, workspaces form the domain.
func RoleSubject(role workspace.Role) string { return "role:" + string(role) }
func GroupSubject(groupSID string) string    { return "group:" + groupSID }

// Enforcer answers "may user do permission in workspace" and keeps the grant
// graph in sync with memberships and groups.
type Enforcer interface {
	Enforce(userSID, workspaceSID, permission string) (bool, error)
	SetMemberRole(ctx context.Context, userSID, workspaceSID string, role workspace.Role) error
	SetMemberGroup(ctx context.Context, userSID, workspaceSID string, groupSID *string) error
	RemoveMember(ctx context.Context, userSID, workspaceSID string) error
	SetGroupPermissions(ctx context.Context, workspaceSID, groupSID string, permissions []string) error
	RemoveGroup(ctx context.Context, workspaceSID, groupSID string) error
	RemoveWorkspace(ctx context.Context, workspaceSID string) error
}

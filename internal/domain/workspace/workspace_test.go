package workspace

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/shared/biztime"
)

func member(t *testing.T, id uint, role Role) *Member {
	t.Helper()
	m, err := NewMember(1, id*10, role)
	require.NoError(t, err)
	require.NoError(t, m.SetID(id))
	return m
}

func TestNewWorkspace(t *testing.T) {
	ws, err := NewWorkspace("  Marketing  ", 5, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ws.SID(), "ws_"))
	assert.Equal(t, "Marketing", ws.Name())
	assert.Equal(t, uint(5), ws.OwnerID())
	assert.NotNil(t, ws.Settings())

	_, err = NewWorkspace(" ", 5, nil)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestWorkspace_RenameBumpsVersion(t *testing.T) {
	ws, err := NewWorkspace("A", 1, nil)
	require.NoError(t, err)
	require.NoError(t, ws.Rename("unsaved"))
	assert.Equal(t, 1, ws.Version(), "changes before the first insert keep version 1")

	ws.MarkPersisted()
	require.NoError(t, ws.Rename("B"))
	ws.ReplaceSettings(map[string]any{"color": "blue"})
	assert.Equal(t, 2, ws.Version(), "several changes in one save bump once")
	assert.Equal(t, 1, ws.StoredVersion())
	assert.Equal(t, "blue", ws.Settings()["color"])

	ws.MarkPersisted()
	ws.TransferTo(9)
	assert.Equal(t, 3, ws.Version())
}

func TestChangeRole(t *testing.T) {
	tests := []struct {
		name    string
		actor   Role
		target  Role
		newRole Role
		wantErr error
	}{
		{"owner promotes member to admin", RoleOwner, RoleMember, RoleAdmin, nil},
		{"owner demotes admin", RoleOwner, RoleAdmin, RoleViewer, nil},
		{"admin changes member to viewer", RoleAdmin, RoleMember, RoleViewer, nil},
		{"admin cannot grant admin", RoleAdmin, RoleMember, RoleAdmin, ErrInsufficientRole},
		{"admin cannot demote admin", RoleAdmin, RoleAdmin, RoleMember, ErrInsufficientRole},
		{"member with a manage grant changes viewer", RoleMember, RoleViewer, RoleMember, nil},
		{"member cannot demote admin", RoleMember, RoleAdmin, RoleViewer, ErrInsufficientRole},
		{"owner role not assignable", RoleOwner, RoleMember, RoleOwner, ErrOwnerRoleNotAssignable},
		{"owner cannot be changed", RoleAdmin, RoleOwner, RoleMember, ErrOwnerImmutable},
		{"unknown role", RoleOwner, RoleMember, Role("guest"), ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := member(t, 1, tt.actor)
			target := member(t, 2, tt.target)

			err := ChangeRole(actor, target, tt.newRole)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.target, target.Role())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.newRole, target.Role())
		})
	}
}

func TestChangeRole_SuspendedAdminCannotManage(t *testing.T) {
	owner := member(t, 1, RoleOwner)
	admin := member(t, 2, RoleAdmin)
	target := member(t, 3, RoleMember)

	require.NoError(t, ChangeStatus(owner, admin, MemberStatusSuspended))
	assert.ErrorIs(t, ChangeRole(admin, target, RoleViewer), ErrInsufficientRole)
}

func TestChangeStatus_OwnerCannotBeSuspended(t *testing.T) {
	admin := member(t, 1, RoleAdmin)
	owner := member(t, 2, RoleOwner)
	assert.ErrorIs(t, ChangeStatus(admin, owner, MemberStatusSuspended), ErrOwnerImmutable)
	assert.ErrorIs(t, ChangeStatus(admin, member(t, 3, RoleMember), "frozen"), ErrInvalidMemberStatus)
}

func TestCanRemove(t *testing.T) {
	owner := member(t, 1, RoleOwner)
	admin := member(t, 2, RoleAdmin)
	viewer := member(t, 3, RoleViewer)

	assert.NoError(t, CanRemove(viewer, viewer), "members may leave")
	assert.NoError(t, CanRemove(admin, viewer))
	assert.NoError(t, CanRemove(owner, admin))
	assert.ErrorIs(t, CanRemove(owner, owner), ErrOwnerImmutable)
	assert.ErrorIs(t, CanRemove(admin, owner), ErrOwnerImmutable)
	assert.ErrorIs(t, CanRemove(viewer, admin), ErrInsufficientRole)
	assert.ErrorIs(t, CanRemove(member(t, 4, RoleAdmin), admin), ErrInsufficientRole)
}

func TestCanInvite(t *testing.T) {
	assert.NoError(t, CanInvite(member(t, 1, RoleOwner), RoleAdmin))
	assert.NoError(t, CanInvite(member(t, 1, RoleAdmin), RoleMember))
	assert.ErrorIs(t, CanInvite(member(t, 1, RoleAdmin), RoleAdmin), ErrInsufficientRole)
	assert.NoError(t, CanInvite(member(t, 1, RoleMember), RoleViewer))
	assert.ErrorIs(t, CanInvite(member(t, 1, RoleMember), RoleAdmin), ErrInsufficientRole)
	assert.ErrorIs(t, CanInvite(member(t, 1, RoleOwner), RoleOwner), ErrInvalidRole)
}

func TestTransferOwnership(t *testing.T) {
	ws, err := NewWorkspace("Team", 10, nil)
	require.NoError(t, err)
	owner := member(t, 1, RoleOwner)
	next := member(t, 2, RoleMember)

	require.NoError(t, TransferOwnership(ws, owner, next))
	assert.Equal(t, RoleAdmin, owner.Role())
	assert.Equal(t, RoleOwner, next.Role())
	assert.Equal(t, next.UserID(), ws.OwnerID())

	assert.ErrorIs(t, TransferOwnership(ws, owner, next), ErrInsufficientRole)
}

func TestInvitation_Accept(t *testing.T) {
	inv, err := NewInvitation(1, "dana@example.com", RoleMember, "hash", 9, time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(inv.SID(), "inv_"))

	assert.ErrorIs(t, inv.Accept("eve@example.com"), ErrInvitationEmailMismatch)
	require.NoError(t, inv.Accept("dana@example.com"))
	assert.Equal(t, InvitationAccepted, inv.Status())
	assert.NotNil(t, inv.AcceptedAt())
	assert.ErrorIs(t, inv.Accept("dana@example.com"), ErrInvitationNotPending)
	assert.ErrorIs(t, inv.Revoke(), ErrInvitationNotPending)
}

func TestInvitation_AcceptExpired(t *testing.T) {
	inv, err := NewInvitation(1, "dana@example.com", RoleViewer, "hash", 9, time.Hour)
	require.NoError(t, err)

	restore := biztime.SetNowFuncForTest(func() time.Time { return time.Now().Add(2 * time.Hour) })
	defer restore()

	assert.ErrorIs(t, inv.Accept("dana@example.com"), ErrInvitationExpired)
	assert.Equal(t, InvitationExpired, inv.Status())
}

func TestNewInvitation_RejectsOwnerRole(t *testing.T) {
	_, err := NewInvitation(1, "x@example.com", RoleOwner, "hash", 1, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

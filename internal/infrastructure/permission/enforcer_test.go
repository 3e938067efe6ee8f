package permission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

func setupEnforcer(t *testing.T) (*Enforcer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	e, err := NewEnforcer(db, DefaultCacheConfig, logger.NewNopLogger())
	require.NoError(t, err)
	return e, db
}

func TestEnforcer_RoleBaseline(t *testing.T) {
	e, _ := setupEnforcer(t)
	ctx := context.Background()

	require.NoError(t, e.SetMemberRole(ctx, "usr_owner", "ws_a", workspace.RoleOwner))
	require.NoError(t, e.SetMemberRole(ctx, "usr_member", "ws_a", workspace.RoleMember))
	require.NoError(t, e.SetMemberRole(ctx, "usr_viewer", "ws_a", workspace.RoleViewer))

	tests := []struct {
		user    string
		perm    string
		allowed bool
	}{
		{"usr_owner", permission.PermissionsManage, true},
		{"usr_owner", permission.WorkflowsPublish, true},
		{"usr_member", permission.WorkflowsEdit, true},
		{"usr_member", permission.WorkflowsPublish, false},
		{"usr_viewer", permission.WorkflowsView, true},
		{"usr_viewer", permission.WorkflowsCreate, false},
		{"usr_stranger", permission.WorkflowsView, false},
	}
	for _, tt := range tests {
		t.Run(tt.user+"/"+tt.perm, func(t *testing.T) {
			ok, err := e.Enforce(tt.user, "ws_a", tt.perm)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, ok)
		})
	}

	ok, err := e.Enforce("usr_owner", "ws_b", permission.WorkflowsView)
	require.NoError(t, err)
	assert.False(t, ok, "roles do not leak across workspaces")
}

func TestEnforcer_RoleChangeReplacesPreviousRole(t *testing.T) {
	e, _ := setupEnforcer(t)
	ctx := context.Background()

	require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_a", workspace.RoleAdmin))
	ok, _ := e.Enforce("usr_1", "ws_a", permission.MembersManage)
	assert.True(t, ok)

	require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_a", workspace.RoleViewer))
	ok, _ = e.Enforce("usr_1", "ws_a", permission.MembersManage)
	assert.False(t, ok)

	perms, err := e.Permissions("usr_1", "ws_a")
	require.NoError(t, err)
	assert.Equal(t, []string{permission.CredentialsView, permission.LogsView, permission.MembersView, permission.WorkflowsView}, perms)
}

func TestEnforcer_GroupGrants(t *testing.T) {
	e, _ := setupEnforcer(t)
	ctx := context.Background()
	group := "pg_editors"

	require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_a", workspace.RoleViewer))
	require.NoError(t, e.SetGroupPermissions(ctx, "ws_a", group, []string{permission.WorkflowsPublish}))
	require.NoError(t, e.SetMemberGroup(ctx, "usr_1", "ws_a", &group))

	ok, err := e.Enforce("usr_1", "ws_a", permission.WorkflowsPublish)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, e.SetGroupPermissions(ctx, "ws_a", group, []string{permission.WorkflowsEdit}))
	ok, _ = e.Enforce("usr_1", "ws_a", permission.WorkflowsPublish)
	assert.False(t, ok)
	ok, _ = e.Enforce("usr_1", "ws_a", permission.WorkflowsEdit)
	assert.True(t, ok)

	require.NoError(t, e.SetMemberGroup(ctx, "usr_1", "ws_a", nil))
	ok, _ = e.Enforce("usr_1", "ws_a", permission.WorkflowsEdit)
	assert.False(t, ok)
	ok, _ = e.Enforce("usr_1", "ws_a", permission.WorkflowsView)
	assert.True(t, ok, "clearing the group keeps the role")
}

func TestEnforcer_RemoveGroupAndMember(t *testing.T) {
	e, _ := setupEnforcer(t)
	ctx := context.Background()
	group := "pg_x"

	require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_a", workspace.RoleViewer))
	require.NoError(t, e.SetGroupPermissions(ctx, "ws_a", group, []string{permission.LogsView, permission.CredentialsEdit}))
	require.NoError(t, e.SetMemberGroup(ctx, "usr_1", "ws_a", &group))

	require.NoError(t, e.RemoveGroup(ctx, "ws_a", group))
	ok, _ := e.Enforce("usr_1", "ws_a", permission.CredentialsEdit)
	assert.False(t, ok)

	require.NoError(t, e.RemoveMember(ctx, "usr_1", "ws_a"))
	perms, err := e.Permissions("usr_1", "ws_a")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestEnforcer_ConcurrentChecksNeverCacheStaleDecisions(t *testing.T) {
	e, _ := setupEnforcer(t)
	ctx := context.Background()
	require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_a", workspace.RoleMember))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_, _ = e.Enforce("usr_1", "ws_a", permission.WorkflowsCreate)
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_a", workspace.RoleViewer))
		require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_a", workspace.RoleMember))
	}
	require.NoError(t, e.RemoveMember(ctx, "usr_1", "ws_a"))
	close(stop)
	wg.Wait()

	ok, err := e.Enforce("usr_1", "ws_a", permission.WorkflowsCreate)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnforcer_RemoveWorkspace(t *testing.T) {
	e, _ := setupEnforcer(t)
	ctx := context.Background()
	group := "pg_x"

	require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_a", workspace.RoleOwner))
	require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_b", workspace.RoleViewer))
	require.NoError(t, e.SetGroupPermissions(ctx, "ws_a", group, []string{permission.LogsView}))

	require.NoError(t, e.RemoveWorkspace(ctx, "ws_a"))

	ok, _ := e.Enforce("usr_1", "ws_a", permission.WorkflowsView)
	assert.False(t, ok)
	ok, _ = e.Enforce("usr_1", "ws_b", permission.WorkflowsView)
	assert.True(t, ok)

	ok, _ = e.Enforce("usr_1", "ws_b", permission.WorkflowsEdit)
	assert.False(t, ok)
}

func TestEnforcer_PoliciesPersist(t *testing.T) {
	e, db := setupEnforcer(t)
	ctx := context.Background()

	require.NoError(t, e.SetMemberRole(ctx, "usr_1", "ws_a", workspace.RoleMember))

	reloaded, err := NewEnforcer(db, DefaultCacheConfig, logger.NewNopLogger())
	require.NoError(t, err)
	ok, err := reloaded.Enforce("usr_1", "ws_a", permission.WorkflowsCreate)
	require.NoError(t, err)
	assert.True(t, ok)

	var count int64
	require.NoError(t, db.Table("casbin_rule").Where("ptype = ? AND v0 = ?", "p", "role:owner").Count(&count).Error)
	assert.Equal(t, int64(len(permission.Catalog())), count, "baseline sync is idempotent")
}

func TestEnforcer_NotifiesOnChange(t *testing.T) {
	e, _ := setupEnforcer(t)
	got := make(chan string, 4)
	e.SetChangeNotifier(func(ws string) { got <- ws })

	require.NoError(t, e.SetMemberRole(context.Background(), "usr_1", "ws_a", workspace.RoleMember))

	select {
	case ws := <-got:
		assert.Equal(t, "ws_a", ws)
	case <-time.After(2 * time.Second):
		t.Fatal("change notifier not called")
	}
}

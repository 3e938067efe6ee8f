package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

func TestPermissionGroupRepository_CRUD(t *testing.T) {
	repos := newWorkspaceRepos(t)
	groups := NewPermissionGroupRepository(repos.db, logger.NewNopLogger())
	ctx := context.Background()
	ws := repos.createWorkspace(t, "Perms", 1)

	g, err := permission.NewGroup(ws.ID(), "Editors", "can edit", []string{permission.WorkflowsEdit, permission.WorkflowsView})
	require.NoError(t, err)
	require.NoError(t, groups.Create(ctx, g))

	dup, err := permission.NewGroup(ws.ID(), "Editors", "", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, groups.Create(ctx, dup), permission.ErrGroupNameExists)

	got, err := groups.GetBySID(ctx, ws.ID(), g.SID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.ElementsMatch(t, []string{permission.WorkflowsEdit, permission.WorkflowsView}, got.Permissions())

	other, err := groups.GetBySID(ctx, ws.ID()+1, g.SID())
	require.NoError(t, err)
	assert.Nil(t, other)

	name := "Writers"
	require.NoError(t, got.Update(&name, nil, []string{permission.CredentialsView}))
	require.NoError(t, groups.Update(ctx, got))

	list, err := groups.ListByWorkspace(ctx, ws.ID())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Writers", list[0].Name())
	assert.Equal(t, []string{permission.CredentialsView}, list[0].Permissions())
}

func TestPermissionGroupRepository_SetMemberGroupMirrorsMember(t *testing.T) {
	repos := newWorkspaceRepos(t)
	groups := NewPermissionGroupRepository(repos.db, logger.NewNopLogger())
	ctx := context.Background()
	ws := repos.createWorkspace(t, "Links", 1)

	member, err := workspace.NewMember(ws.ID(), 2, workspace.RoleMember)
	require.NoError(t, err)
	require.NoError(t, repos.members.Create(ctx, member))

	g, err := permission.NewGroup(ws.ID(), "Analysts", "", []string{permission.LogsView})
	require.NoError(t, err)
	require.NoError(t, groups.Create(ctx, g))

	gid := g.ID()
	require.NoError(t, groups.SetMemberGroup(ctx, member.ID(), &gid))

	stored, err := repos.members.GetByUser(ctx, ws.ID(), 2)
	require.NoError(t, err)
	require.NotNil(t, stored.PermissionGroupID())
	assert.Equal(t, gid, *stored.PermissionGroupID())

	inGroup, err := repos.members.ListByGroup(ctx, gid)
	require.NoError(t, err)
	assert.Len(t, inGroup, 1)

	require.NoError(t, repos.members.ClearGroup(ctx, gid))
	require.NoError(t, groups.Delete(ctx, gid))

	var links int64
	require.NoError(t, repos.db.Model(&models.UserPermissionGroupModel{}).Count(&links).Error)
	assert.Zero(t, links)

	cleared, err := repos.members.GetByUser(ctx, ws.ID(), 2)
	require.NoError(t, err)
	assert.Nil(t, cleared.PermissionGroupID())
}

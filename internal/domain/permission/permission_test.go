package permission

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/domain/workspace"
)

func TestCatalog(t *testing.T) {
	all := Catalog()
	assert.Len(t, all, 15)

	seen := map[string]bool{}
	for _, p := range all {
		assert.False(t, seen[p.ID], "duplicate %s", p.ID)
		seen[p.ID] = true
		assert.True(t, strings.HasPrefix(p.ID, p.Category+".") || p.Category == "workspace" || p.Category == "analytics")
	}

	all[0].ID = "mutated"
	assert.Equal(t, CredentialsView, Catalog()[0].ID)
}

func TestByCategory(t *testing.T) {
	groups := ByCategory()
	require.Len(t, groups, 5)
	assert.Equal(t, "credentials", groups[0].Category)
	assert.Len(t, groups[0].Permissions, 4)
	assert.Equal(t, "analytics", groups[4].Category)
}

func TestBaseline(t *testing.T) {
	assert.Len(t, Baseline(workspace.RoleOwner), 15)
	assert.Len(t, Baseline(workspace.RoleAdmin), 15)

	member := Baseline(workspace.RoleMember)
	assert.Contains(t, member, WorkflowsEdit)
	assert.NotContains(t, member, WorkflowsPublish)
	assert.NotContains(t, member, MembersManage)

	viewer := Baseline(workspace.RoleViewer)
	assert.ElementsMatch(t, []string{CredentialsView, WorkflowsView, MembersView, LogsView}, viewer)

	assert.Nil(t, Baseline("guest"))
}

func TestNormalizeIDs(t *testing.T) {
	ids, err := NormalizeIDs([]string{LogsView, CredentialsView, LogsView})
	require.NoError(t, err)
	assert.Equal(t, []string{CredentialsView, LogsView}, ids)

	_, err = NormalizeIDs([]string{"billing.view"})
	var unknown *UnknownPermissionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "billing.view", unknown.ID)
}

func TestGroup(t *testing.T) {
	g, err := NewGroup(3, " Publishers ", "can ship", []string{WorkflowsPublish})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(g.SID(), "pg_"))
	assert.Equal(t, "Publishers", g.Name())
	assert.Equal(t, "group:"+g.SID(), g.Subject())

	name := ""
	assert.ErrorIs(t, g.Update(&name, nil, nil), ErrInvalidGroupName)
	assert.Error(t, g.Update(nil, nil, []string{"nope"}))

	require.NoError(t, g.Update(nil, nil, []string{}))
	assert.Empty(t, g.Permissions())
}

// Package permission defines the fixed permission catalog, the per-role
// baseline, and workspace-scoped permission groups that grant extras.
package permission

import "sort"

type Level string

const (
	LevelRead  Level = "read"
	LevelWrite Level = "write"
	LevelAdmin Level = "admin"
)

type Permission struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    Level  `json:"level"`
}

const (
	CredentialsView   = "credentials.view"
	CredentialsCreate = "credentials.create"
	CredentialsEdit   = "credentials.edit"
	CredentialsDelete = "credentials.delete"
	WorkflowsView     = "workflows.view"
	WorkflowsCreate   = "workflows.create"
	WorkflowsEdit     = "workflows.edit"
	WorkflowsDelete   = "workflows.delete"
	WorkflowsPublish  = "workflows.publish"
	MembersView       = "members.view"
	MembersInvite     = "members.invite"
	MembersManage     = "members.manage"
	WorkspaceSettings = "workspace.settings"
	PermissionsManage = "permissions.manage"
	LogsView          = "logs.view"
)

// catalog order is the display order.
var catalog = []Permission{
	{CredentialsView, "View credentials", "credentials", LevelRead},
	{CredentialsCreate, "Create credentials", "credentials", LevelWrite},
	{CredentialsEdit, "Edit credentials", "credentials", LevelWrite},
	{CredentialsDelete, "Delete credentials", "credentials", LevelAdmin},
	{WorkflowsView, "View workflows", "workflows", LevelRead},
	{WorkflowsCreate, "Create workflows", "workflows", LevelWrite},
	{WorkflowsEdit, "Edit workflows", "workflows", LevelWrite},
	{WorkflowsDelete, "Delete workflows", "workflows", LevelAdmin},
	{WorkflowsPublish, "Publish workflows", "workflows", LevelAdmin},
	{MembersView, "View members", "members", LevelRead},
	{MembersInvite, "Invite members", "members", LevelWrite},
	{MembersManage, "Manage members", "members", LevelAdmin},
	{WorkspaceSettings, "Edit workspace settings", "workspace", LevelAdmin},
	{PermissionsManage, "Manage permission groups", "workspace", LevelAdmin},
	{LogsView, "View integration logs", "analytics", LevelRead},
}

var catalogIndex = func() map[string]Permission {
	m := make(map[string]Permission, len(catalog))
	for _, p := range catalog {
		m[p.ID] = p
	}
	return m
}()

// Catalog returns a copy of every known permission.
func Catalog() []Permission {
	return append([]Permission(nil), catalog...)
}

func Lookup(id string) (Permission, bool) {
	p, ok := catalogIndex[id]
	return p, ok
}

func IsKnown(id string) bool {
	_, ok := catalogIndex[id]
	return ok
}

// CategoryGroup is one category of the catalog with its permissions.
type CategoryGroup struct {
	Category    string       `json:"category"`
	Permissions []Permission `json:"permissions"`
}

// ByCategory groups the catalog, keeping catalog order within and across categories.
func ByCategory() []CategoryGroup {
	var groups []CategoryGroup
	index := map[string]int{}
	for _, p := range catalog {
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, CategoryGroup{Category: p.Category})
		}
		groups[i].Permissions = append(groups[i].Permissions, p)
	}
	return groups
}

// NormalizeIDs validates ids against the catalog and returns them deduplicated and sorted.
func NormalizeIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !IsKnown(id) {
			return nil, &UnknownPermissionError{ID: id}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

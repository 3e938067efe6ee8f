package permission

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/id"
)

// Group is a named bundle of permissions inside one workspace.
type Group struct {
	id          uint
	sid         string
	workspaceID uint
	name        string
	description string
	permissions []string
	createdAt   time.Time
	updatedAt   time.Time
}

func NewGroup(workspaceID uint, name, description string, permissions []string) (*Group, error) {
	name, err := validateGroupName(name)
	if err != nil {
		return nil, err
	}
	perms, err := NormalizeIDs(permissions)
	if err != nil {
		return nil, err
	}
	sid, err := id.New(id.PrefixPermissionGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to generate permission group ID: %w", err)
	}
	now := biztime.NowUTC()
	return &Group{
		sid:         sid,
		workspaceID: workspaceID,
		name:        name,
		description: strings.TrimSpace(description),
		permissions: perms,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructGroup(id uint, sid string, workspaceID uint, name, description string, permissions []string, createdAt, updatedAt time.Time) *Group {
	return &Group{
		id:          id,
		sid:         sid,
		workspaceID: workspaceID,
		name:        name,
		description: description,
		permissions: permissions,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (g *Group) ID() uint              { return g.id }
func (g *Group) SID() string           { return g.sid }
func (g *Group) WorkspaceID() uint     { return g.workspaceID }
func (g *Group) Name() string          { return g.name }
func (g *Group) Description() string   { return g.description }
func (g *Group) Permissions() []string { return append([]string(nil), g.permissions...) }
func (g *Group) CreatedAt() time.Time  { return g.createdAt }
func (g *Group) UpdatedAt() time.Time  { return g.updatedAt }

// Subject is the casbin subject under which the group's grants are stored.
func (g *Group) Subject() string {
	return GroupSubject(g.sid)
}

func (g *Group) SetID(id uint) error {
	if g.id != 0 {
		return fmt.Errorf("permission group ID is already set")
	}
	g.id = id
	return nil
}

func (g *Group) Update(name, description *string, permissions []string) error {
	if name != nil {
		n, err := validateGroupName(*name)
		if err != nil {
			return err
		}
		g.name = n
	}
	if description != nil {
		g.description = strings.TrimSpace(*description)
	}
	if permissions != nil {
		perms, err := NormalizeIDs(permissions)
		if err != nil {
			return err
		}
		g.permissions = perms
	}
	g.updatedAt = biztime.NowUTC()
	return nil
}

func validateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return "", ErrInvalidGroupName
	}
	return name, nil
}

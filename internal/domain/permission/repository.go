package permission

import "context"

// GroupRepository persists permission groups. Getters return (nil, nil) when nothing matches.
type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id uint) (*Group, error)
	GetBySID(ctx context.Context, workspaceID uint, sid string) (*Group, error)
	ListByWorkspace(ctx context.Context, workspaceID uint) ([]*Group, error)
	Update(ctx context.Context, g *Group) error
	Delete(ctx context.Context, id uint) error
	DeleteByWorkspace(ctx context.Context, workspaceID uint) error
	// SetMemberGroup records the member→group link in user_permission_groups; nil clears it.
	SetMemberGroup(ctx context.Context, memberID uint, groupID *uint) error
}

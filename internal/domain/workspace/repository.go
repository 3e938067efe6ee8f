package workspace

import (
	"context"
	"time"
)

// Repository persists workspaces. Getters return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, ws *Workspace) error
	GetByID(ctx context.Context, id uint) (*Workspace, error)
	GetBySID(ctx context.Context, sid string) (*Workspace, error)
	// Update fails with ErrVersionConflict when the stored version moved on.
	Update(ctx context.Context, ws *Workspace) error
	Delete(ctx context.Context, id uint) error
	// ListForUser returns workspaces the user is an active member of.
	ListForUser(ctx context.Context, userID uint) ([]*Workspace, error)
	CountForUser(ctx context.Context, userID uint) (int64, error)
}

type MemberRepository interface {
	Create(ctx context.Context, m *Member) error
	GetBySID(ctx context.Context, workspaceID uint, sid string) (*Member, error)
	GetByUser(ctx context.Context, workspaceID, userID uint) (*Member, error)
	ListByWorkspace(ctx context.Context, workspaceID uint) ([]*Member, error)
	// ListByUser returns the user's memberships across all workspaces.
	ListByUser(ctx context.Context, userID uint) ([]*Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, id uint) error
	DeleteByWorkspace(ctx context.Context, workspaceID uint) error
	// ClearGroup detaches a deleted permission group from every member.
	ClearGroup(ctx context.Context, groupID uint) error
	ListByGroup(ctx context.Context, groupID uint) ([]*Member, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetBySID(ctx context.Context, workspaceID uint, sid string) (*Invitation, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)
	GetPendingByEmail(ctx context.Context, workspaceID uint, email string) (*Invitation, error)
	ListPending(ctx context.Context, workspaceID uint) ([]*Invitation, error)
	Update(ctx context.Context, inv *Invitation) error
	DeleteByWorkspace(ctx context.Context, workspaceID uint) error
	// ExpirePending marks pending invitations past their expiry as expired.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

package access

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// GrantSyncer mirrors a stored membership into the enforcer. It runs after
// the database transaction commits.
type GrantSyncer struct {
	userRepo  user.Repository
	groupRepo permission.GroupRepository
	enforcer  permission.Enforcer
	logger    logger.Interface
}

func NewGrantSyncer(userRepo user.Repository, groupRepo permission.GroupRepository, enforcer permission.Enforcer, logger logger.Interface) *GrantSyncer {
	return &GrantSyncer{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		enforcer:  enforcer,
		logger:    logger,
	}
}

// Sync grants the member's role and group, or revokes everything for a
// suspended member.
func (s *GrantSyncer) Sync(ctx context.Context, ws *workspace.Workspace, m *workspace.Member) error {
	userSID, err := s.userSID(ctx, m.UserID())
	if err != nil {
		return err
	}
	if !m.IsActive() {
		return s.revoke(ctx, ws, userSID)
	}

	if err := s.enforcer.SetMemberRole(ctx, userSID, ws.SID(), m.Role()); err != nil {
		s.logger.Errorw("failed to grant member role", "workspace_sid", ws.SID(), "user_sid", userSID, "error", err)
		return fmt.Errorf("failed to grant member role: %w", err)
	}

	var groupSID *string
	if gid := m.PermissionGroupID(); gid != nil {
		g, err := s.groupRepo.GetByID(ctx, *gid)
		if err != nil {
			return fmt.Errorf("failed to get permission group: %w", err)
		}
		if g != nil {
			sid := g.SID()
			groupSID = &sid
		}
	}
	if err := s.enforcer.SetMemberGroup(ctx, userSID, ws.SID(), groupSID); err != nil {
		s.logger.Errorw("failed to grant member group", "workspace_sid", ws.SID(), "user_sid", userSID, "error", err)
		return fmt.Errorf("failed to grant member group: %w", err)
	}
	return nil
}

// Revoke drops every grant the user holds in the workspace.
func (s *GrantSyncer) Revoke(ctx context.Context, ws *workspace.Workspace, userID uint) error {
	userSID, err := s.userSID(ctx, userID)
	if err != nil {
		return err
	}
	return s.revoke(ctx, ws, userSID)
}

func (s *GrantSyncer) revoke(ctx context.Context, ws *workspace.Workspace, userSID string) error {
	if err := s.enforcer.RemoveMember(ctx, userSID, ws.SID()); err != nil {
		s.logger.Errorw("failed to revoke member grants", "workspace_sid", ws.SID(), "user_sid", userSID, "error", err)
		return fmt.Errorf("failed to revoke member grants: %w", err)
	}
	return nil
}

func (s *GrantSyncer) userSID(ctx context.Context, userID uint) (string, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return "", fmt.Errorf("user %d not found", userID)
	}
	return u.SID(), nil
}

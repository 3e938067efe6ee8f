// Package permission manages permission groups and answers effective
// permission queries for workspace members.
package permission

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/shared/db"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type Service struct {
	txManager     *db.TransactionManager
	resolver      *access.Resolver
	workspaceRepo workspace.Repository
	memberRepo    workspace.MemberRepository
	groupRepo     permission.GroupRepository
	enforcer      permission.Enforcer
	grants        *access.GrantSyncer
	logger        logger.Interface
}

func NewService(
	txManager *db.TransactionManager,
	resolver *access.Resolver,
	workspaceRepo workspace.Repository,
	memberRepo workspace.MemberRepository,
	groupRepo permission.GroupRepository,
	enforcer permission.Enforcer,
	grants *access.GrantSyncer,
	logger logger.Interface,
) *Service {
	return &Service{
		txManager:     txManager,
		resolver:      resolver,
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		groupRepo:     groupRepo,
		enforcer:      enforcer,
		grants:        grants,
		logger:        logger,
	}
}

// ListCatalog returns the static catalog grouped by category.
func (s *Service) ListCatalog() []permission.CategoryGroup {
	return permission.ByCategory()
}

// Check answers whether the user holds perm in the workspace.
func (s *Service) Check(userSID, workspaceSID, perm string) (bool, error) {
	if !permission.IsKnown(perm) {
		return false, &permission.UnknownPermissionError{ID: perm}
	}
	allowed, err := s.enforcer.Enforce(userSID, workspaceSID, perm)
	if err != nil {
		s.logger.Errorw("permission check failed", "user_sid", userSID, "workspace_sid", workspaceSID, "permission", perm, "error", err)
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}

// UserPermissions is the effective permission set of one member.
type UserPermissions struct {
	Role        workspace.Role
	Permissions []string
}

// GetUserPermissions computes role baseline plus group grants from stored
// memberships. Non-members and suspended members hold nothing.
func (s *Service) GetUserPermissions(ctx context.Context, userID uint, workspaceSID string) (*UserPermissions, error) {
	ws, err := s.workspaceRepo.GetBySID(ctx, workspaceSID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if ws == nil {
		return nil, access.MapError(workspace.ErrWorkspaceNotFound)
	}
	m, err := s.memberRepo.GetByUser(ctx, ws.ID(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if m == nil || !m.IsActive() {
		return &UserPermissions{Permissions: []string{}}, nil
	}

	set := make(map[string]struct{})
	for _, p := range permission.Baseline(m.Role()) {
		set[p] = struct{}{}
	}
	if gid := m.PermissionGroupID(); gid != nil {
		g, err := s.groupRepo.GetByID(ctx, *gid)
		if err != nil {
			return nil, fmt.Errorf("failed to get permission group: %w", err)
		}
		if g != nil {
			for _, p := range g.Permissions() {
				set[p] = struct{}{}
			}
		}
	}

	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return &UserPermissions{Role: m.Role(), Permissions: perms}, nil
}

func (s *Service) ListGroups(ctx context.Context, actor access.Actor, workspaceSID string) ([]*permission.Group, error) {
	acc, err := s.resolver.Resolve(ctx, workspaceSID, actor.ID)
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.ListByWorkspace(ctx, acc.Workspace.ID())
	if err != nil {
		s.logger.Errorw("failed to list permission groups", "workspace_sid", workspaceSID, "error", err)
		return nil, fmt.Errorf("failed to list permission groups: %w", err)
	}
	return groups, nil
}

type CreateGroupCommand struct {
	Actor        access.Actor
	WorkspaceSID string
	Name         string
	Description  string
	Permissions  []string
}

func (s *Service) CreateGroup(ctx context.Context, cmd CreateGroupCommand) (*permission.Group, error) {
	acc, err := s.requireManage(ctx, cmd.Actor, cmd.WorkspaceSID)
	if err != nil {
		return nil, err
	}
	g, err := permission.NewGroup(acc.Workspace.ID(), cmd.Name, cmd.Description, cmd.Permissions)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.groupRepo.Create(ctx, g); err != nil {
		return nil, mapError(err)
	}
	if err := s.enforcer.SetGroupPermissions(ctx, cmd.WorkspaceSID, g.SID(), g.Permissions()); err != nil {
		s.logger.Errorw("failed to grant group permissions", "group_sid", g.SID(), "error", err)
		return nil, fmt.Errorf("failed to grant group permissions: %w", err)
	}
	s.logger.Infow("permission group created", "workspace_sid", cmd.WorkspaceSID, "group_sid", g.SID(), "permissions", len(g.Permissions()))
	return g, nil
}

type UpdateGroupCommand struct {
	Actor        access.Actor
	WorkspaceSID string
	GroupSID     string
	Name         *string
	Description  *string
	// Permissions replaces the grant list when non-nil.
	Permissions []string
}

func (s *Service) UpdateGroup(ctx context.Context, cmd UpdateGroupCommand) (*permission.Group, error) {
	acc, err := s.requireManage(ctx, cmd.Actor, cmd.WorkspaceSID)
	if err != nil {
		return nil, err
	}
	g, err := s.getGroup(ctx, acc.Workspace.ID(), cmd.GroupSID)
	if err != nil {
		return nil, err
	}
	if err := g.Update(cmd.Name, cmd.Description, cmd.Permissions); err != nil {
		return nil, mapError(err)
	}
	if err := s.groupRepo.Update(ctx, g); err != nil {
		return nil, mapError(err)
	}
	if cmd.Permissions != nil {
		if err := s.enforcer.SetGroupPermissions(ctx, cmd.WorkspaceSID, g.SID(), g.Permissions()); err != nil {
			s.logger.Errorw("failed to update group permissions", "group_sid", g.SID(), "error", err)
			return nil, fmt.Errorf("failed to update group permissions: %w", err)
		}
	}
	s.logger.Infow("permission group updated", "workspace_sid", cmd.WorkspaceSID, "group_sid", g.SID())
	return g, nil
}

// DeleteGroup detaches the group from its members before deleting it.
func (s *Service) DeleteGroup(ctx context.Context, actor access.Actor, workspaceSID, groupSID string) error {
	acc, err := s.requireManage(ctx, actor, workspaceSID)
	if err != nil {
		return err
	}
	g, err := s.getGroup(ctx, acc.Workspace.ID(), groupSID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.memberRepo.ClearGroup(txCtx, g.ID()); err != nil {
			return err
		}
		return s.groupRepo.Delete(txCtx, g.ID())
	})
	if err != nil {
		s.logger.Errorw("failed to delete permission group", "group_sid", groupSID, "error", err)
		return mapError(err)
	}

	if err := s.enforcer.RemoveGroup(ctx, workspaceSID, g.SID()); err != nil {
		s.logger.Errorw("failed to remove group grants", "group_sid", groupSID, "error", err)
		return fmt.Errorf("failed to remove group grants: %w", err)
	}
	s.logger.Infow("permission group deleted", "workspace_sid", workspaceSID, "group_sid", groupSID)
	return nil
}

type AssignGroupCommand struct {
	Actor        access.Actor
	WorkspaceSID string
	MemberSID    string
	// GroupSID clears the assignment when nil or empty.
	GroupSID *string
}

func (s *Service) AssignGroup(ctx context.Context, cmd AssignGroupCommand) (*workspace.Member, error) {
	acc, err := s.requireManage(ctx, cmd.Actor, cmd.WorkspaceSID)
	if err != nil {
		return nil, err
	}
	m, err := s.memberRepo.GetBySID(ctx, acc.Workspace.ID(), cmd.MemberSID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if m == nil {
		return nil, access.MapError(workspace.ErrMemberNotFound)
	}

	var groupID *uint
	if cmd.GroupSID != nil && *cmd.GroupSID != "" {
		g, err := s.getGroup(ctx, acc.Workspace.ID(), *cmd.GroupSID)
		if err != nil {
			return nil, err
		}
		id := g.ID()
		groupID = &id
	}

	if err := s.groupRepo.SetMemberGroup(ctx, m.ID(), groupID); err != nil {
		s.logger.Errorw("failed to assign permission group", "member_sid", cmd.MemberSID, "error", err)
		return nil, fmt.Errorf("failed to assign permission group: %w", err)
	}
	m.AssignGroup(groupID)
	if err := s.grants.Sync(ctx, acc.Workspace, m); err != nil {
		return nil, err
	}
	s.logger.Infow("permission group assigned", "workspace_sid", cmd.WorkspaceSID, "member_sid", m.SID(), "cleared", groupID == nil)
	return m, nil
}

func (s *Service) requireManage(ctx context.Context, actor access.Actor, workspaceSID string) (*access.Access, error) {
	acc, err := s.resolver.Resolve(ctx, workspaceSID, actor.ID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.Check(actor.SID, workspaceSID, permission.PermissionsManage)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewForbiddenError(permission.ErrPermissionDenied.Error(), permission.PermissionsManage)
	}
	return acc, nil
}

func (s *Service) getGroup(ctx context.Context, workspaceID uint, sid string) (*permission.Group, error) {
	g, err := s.groupRepo.GetBySID(ctx, workspaceID, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to get permission group: %w", err)
	}
	if g == nil {
		return nil, mapError(permission.ErrGroupNotFound)
	}
	return g, nil
}

func mapError(err error) error {
	var unknown *permission.UnknownPermissionError
	switch {
	case errors.As(err, &unknown):
		return apperrors.NewValidationError(err.Error(), unknown.ID)
	case errors.Is(err, permission.ErrGroupNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, permission.ErrGroupNameExists):
		return apperrors.NewConflictError(err.Error())
	case errors.Is(err, permission.ErrInvalidGroupName):
		return apperrors.NewValidationError(err.Error())
	case errors.Is(err, permission.ErrPermissionDenied):
		return apperrors.NewForbiddenError(err.Error())
	}
	return err
}

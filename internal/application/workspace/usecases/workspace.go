package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/shared/db"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// WorkspaceResult pairs a workspace with the caller's role in it.
type WorkspaceResult struct {
	Workspace *workspace.Workspace
	Role      workspace.Role
}

type CreateWorkspaceCommand struct {
	UserID   uint
	UserSID  string
	Name     string
	Settings map[string]any
}

type CreateWorkspaceUseCase struct {
	txManager     *db.TransactionManager
	workspaceRepo workspace.Repository
	memberRepo    workspace.MemberRepository
	enforcer      permission.Enforcer
	logger        logger.Interface
}

func NewCreateWorkspaceUseCase(
	txManager *db.TransactionManager,
	workspaceRepo workspace.Repository,
	memberRepo workspace.MemberRepository,
	enforcer permission.Enforcer,
	logger logger.Interface,
) *CreateWorkspaceUseCase {
	return &CreateWorkspaceUseCase{
		txManager:     txManager,
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		enforcer:      enforcer,
		logger:        logger,
	}
}

// Execute stores the workspace and the creator's owner membership together.
func (uc *CreateWorkspaceUseCase) Execute(ctx context.Context, cmd CreateWorkspaceCommand) (*WorkspaceResult, error) {
	ws, err := workspace.NewWorkspace(cmd.Name, cmd.UserID, cmd.Settings)
	if err != nil {
		return nil, access.MapError(err)
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.workspaceRepo.Create(txCtx, ws); err != nil {
			return err
		}
		owner, err := workspace.NewMember(ws.ID(), cmd.UserID, workspace.RoleOwner)
		if err != nil {
			return err
		}
		return uc.memberRepo.Create(txCtx, owner)
	})
	if err != nil {
		uc.logger.Errorw("failed to create workspace", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	if err := uc.enforcer.SetMemberRole(ctx, cmd.UserSID, ws.SID(), workspace.RoleOwner); err != nil {
		uc.logger.Errorw("failed to grant owner role", "workspace_sid", ws.SID(), "error", err)
		return nil, fmt.Errorf("failed to grant owner role: %w", err)
	}

	uc.logger.Infow("workspace created", "workspace_sid", ws.SID(), "user_sid", cmd.UserSID)
	return &WorkspaceResult{Workspace: ws, Role: workspace.RoleOwner}, nil
}

type ListWorkspacesUseCase struct {
	workspaceRepo workspace.Repository
	memberRepo    workspace.MemberRepository
	logger        logger.Interface
}

func NewListWorkspacesUseCase(workspaceRepo workspace.Repository, memberRepo workspace.MemberRepository, logger logger.Interface) *ListWorkspacesUseCase {
	return &ListWorkspacesUseCase{workspaceRepo: workspaceRepo, memberRepo: memberRepo, logger: logger}
}

func (uc *ListWorkspacesUseCase) Execute(ctx context.Context, userID uint) ([]*WorkspaceResult, error) {
	workspaces, err := uc.workspaceRepo.ListForUser(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to list workspaces", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	memberships, err := uc.memberRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	roles := make(map[uint]workspace.Role, len(memberships))
	for _, m := range memberships {
		roles[m.WorkspaceID()] = m.Role()
	}

	results := make([]*WorkspaceResult, 0, len(workspaces))
	for _, ws := range workspaces {
		results = append(results, &WorkspaceResult{Workspace: ws, Role: roles[ws.ID()]})
	}
	return results, nil
}

type GetWorkspaceUseCase struct {
	resolver *access.Resolver
}

func NewGetWorkspaceUseCase(resolver *access.Resolver) *GetWorkspaceUseCase {
	return &GetWorkspaceUseCase{resolver: resolver}
}

func (uc *GetWorkspaceUseCase) Execute(ctx context.Context, userID uint, workspaceSID string) (*WorkspaceResult, error) {
	acc, err := uc.resolver.Resolve(ctx, workspaceSID, userID)
	if err != nil {
		return nil, err
	}
	return &WorkspaceResult{Workspace: acc.Workspace, Role: acc.Role()}, nil
}

type UpdateWorkspaceCommand struct {
	Actor        access.Actor
	WorkspaceSID string
	Name         *string
	Settings     map[string]any
	Version      *int
}

type UpdateWorkspaceUseCase struct {
	guard         *access.Guard
	workspaceRepo workspace.Repository
	logger        logger.Interface
}

func NewUpdateWorkspaceUseCase(guard *access.Guard, workspaceRepo workspace.Repository, logger logger.Interface) *UpdateWorkspaceUseCase {
	return &UpdateWorkspaceUseCase{guard: guard, workspaceRepo: workspaceRepo, logger: logger}
}

func (uc *UpdateWorkspaceUseCase) Execute(ctx context.Context, cmd UpdateWorkspaceCommand) (*WorkspaceResult, error) {
	acc, err := uc.guard.Require(ctx, cmd.Actor, cmd.WorkspaceSID, permission.WorkspaceSettings)
	if err != nil {
		return nil, err
	}
	ws := acc.Workspace
	if cmd.Version != nil && *cmd.Version != ws.Version() {
		return nil, access.MapError(workspace.ErrVersionConflict)
	}
	if cmd.Name == nil && cmd.Settings == nil {
		return &WorkspaceResult{Workspace: ws, Role: acc.Role()}, nil
	}

	if cmd.Name != nil {
		if err := ws.Rename(*cmd.Name); err != nil {
			return nil, access.MapError(err)
		}
	}
	if cmd.Settings != nil {
		ws.ReplaceSettings(cmd.Settings)
	}
	if err := uc.workspaceRepo.Update(ctx, ws); err != nil {
		uc.logger.Warnw("failed to update workspace", "workspace_sid", ws.SID(), "error", err)
		return nil, access.MapError(err)
	}
	uc.logger.Infow("workspace updated", "workspace_sid", ws.SID(), "version", ws.Version())
	return &WorkspaceResult{Workspace: ws, Role: acc.Role()}, nil
}

type DeleteWorkspaceUseCase struct {
	txManager      *db.TransactionManager
	resolver       *access.Resolver
	workspaceRepo  workspace.Repository
	memberRepo     workspace.MemberRepository
	invitationRepo workspace.InvitationRepository
	groupRepo      permission.GroupRepository
	workflowRepo   workflow.Repository
	enforcer       permission.Enforcer
	logger         logger.Interface
}

func NewDeleteWorkspaceUseCase(
	txManager *db.TransactionManager,
	resolver *access.Resolver,
	workspaceRepo workspace.Repository,
	memberRepo workspace.MemberRepository,
	invitationRepo workspace.InvitationRepository,
	groupRepo permission.GroupRepository,
	workflowRepo workflow.Repository,
	enforcer permission.Enforcer,
	logger logger.Interface,
) *DeleteWorkspaceUseCase {
	return &DeleteWorkspaceUseCase{
		txManager:      txManager,
		resolver:       resolver,
		workspaceRepo:  workspaceRepo,
		memberRepo:     memberRepo,
		invitationRepo: invitationRepo,
		groupRepo:      groupRepo,
		workflowRepo:   workflowRepo,
		enforcer:       enforcer,
		logger:         logger,
	}
}

// Execute removes the workspace with everything scoped to it. Owner only.
func (uc *DeleteWorkspaceUseCase) Execute(ctx context.Context, userID uint, workspaceSID string) error {
	acc, err := uc.resolver.Resolve(ctx, workspaceSID, userID)
	if err != nil {
		return err
	}
	if !acc.Role().IsOwner() {
		return apperrors.NewForbiddenError("only the workspace owner can delete it")
	}
	wsID := acc.Workspace.ID()

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.workflowRepo.DeleteByWorkspace(txCtx, wsID); err != nil {
			return err
		}
		if err := uc.groupRepo.DeleteByWorkspace(txCtx, wsID); err != nil {
			return err
		}
		if err := uc.invitationRepo.DeleteByWorkspace(txCtx, wsID); err != nil {
			return err
		}
		if err := uc.memberRepo.DeleteByWorkspace(txCtx, wsID); err != nil {
			return err
		}
		return uc.workspaceRepo.Delete(txCtx, wsID)
	})
	if err != nil {
		uc.logger.Errorw("failed to delete workspace", "workspace_sid", workspaceSID, "error", err)
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	if err := uc.enforcer.RemoveWorkspace(ctx, workspaceSID); err != nil {
		uc.logger.Errorw("failed to remove workspace grants", "workspace_sid", workspaceSID, "error", err)
		return fmt.Errorf("failed to remove workspace grants: %w", err)
	}
	uc.logger.Infow("workspace deleted", "workspace_sid", workspaceSID, "user_id", userID)
	return nil
}

package handlers

import (
	"context"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/application/workspace/usecases"
	"github.com/connecthub/connecthub/internal/domain/workspace"
)

// Use case interfaces for WorkspaceHandler.

type createWorkspaceUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateWorkspaceCommand) (*usecases.WorkspaceResult, error)
}

type listWorkspacesUseCase interface {
	Execute(ctx context.Context, userID uint) ([]*usecases.WorkspaceResult, error)
}

type getWorkspaceUseCase interface {
	Execute(ctx context.Context, userID uint, workspaceSID string) (*usecases.WorkspaceResult, error)
}

type updateWorkspaceUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateWorkspaceCommand) (*usecases.WorkspaceResult, error)
}

type deleteWorkspaceUseCase interface {
	Execute(ctx context.Context, userID uint, workspaceSID string) error
}

type transferOwnershipUseCase interface {
	Execute(ctx context.Context, actorID uint, workspaceSID, newOwnerMemberSID string) (*workspace.Workspace, error)
}

type listMembersUseCase interface {
	Execute(ctx context.Context, userID uint, workspaceSID string) ([]*usecases.MemberView, error)
}

type updateMemberUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateMemberCommand) (*workspace.Member, error)
}

type removeMemberUseCase interface {
	Execute(ctx context.Context, actor access.Actor, workspaceSID, memberSID string) error
}

type inviteMemberUseCase interface {
	Execute(ctx context.Context, cmd usecases.InviteMemberCommand) (*usecases.InviteMemberResult, error)
}

type listInvitationsUseCase interface {
	Execute(ctx context.Context, userID uint, workspaceSID string) ([]*workspace.Invitation, error)
}

type revokeInvitationUseCase interface {
	Execute(ctx context.Context, actor access.Actor, workspaceSID, invitationSID string) error
}

type acceptInvitationUseCase interface {
	Execute(ctx context.Context, cmd usecases.AcceptInvitationCommand) (*usecases.WorkspaceResult, error)
}

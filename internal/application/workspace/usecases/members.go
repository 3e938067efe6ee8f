package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/shared/db"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// MemberView is a member joined with its account and group.
type MemberView struct {
	Member   *workspace.Member
	User     *user.User
	GroupSID string
}

type ListMembersUseCase struct {
	resolver   *access.Resolver
	memberRepo workspace.MemberRepository
	userRepo   user.Repository
	groupRepo  permission.GroupRepository
	logger     logger.Interface
}

func NewListMembersUseCase(
	resolver *access.Resolver,
	memberRepo workspace.MemberRepository,
	userRepo user.Repository,
	groupRepo permission.GroupRepository,
	logger logger.Interface,
) *ListMembersUseCase {
	return &ListMembersUseCase{
		resolver:   resolver,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		logger:     logger,
	}
}

func (uc *ListMembersUseCase) Execute(ctx context.Context, userID uint, workspaceSID string) ([]*MemberView, error) {
	acc, err := uc.resolver.Resolve(ctx, workspaceSID, userID)
	if err != nil {
		return nil, err
	}
	members, err := uc.memberRepo.ListByWorkspace(ctx, acc.Workspace.ID())
	if err != nil {
		uc.logger.Errorw("failed to list members", "workspace_sid", workspaceSID, "error", err)
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	userIDs := make([]uint, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID())
	}
	users, err := uc.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get member accounts: %w", err)
	}
	usersByID := make(map[uint]*user.User, len(users))
	for _, u := range users {
		usersByID[u.ID()] = u
	}

	groups, err := uc.groupRepo.ListByWorkspace(ctx, acc.Workspace.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list permission groups: %w", err)
	}
	groupSIDs := make(map[uint]string, len(groups))
	for _, g := range groups {
		groupSIDs[g.ID()] = g.SID()
	}

	views := make([]*MemberView, 0, len(members))
	for _, m := range members {
		v := &MemberView{Member: m, User: usersByID[m.UserID()]}
		if gid := m.PermissionGroupID(); gid != nil {
			v.GroupSID = groupSIDs[*gid]
		}
		views = append(views, v)
	}
	return views, nil
}

type UpdateMemberCommand struct {
	Actor        access.Actor
	WorkspaceSID string
	MemberSID    string
	Role         *string
	Status       *string
}

type UpdateMemberUseCase struct {
	guard      *access.Guard
	memberRepo workspace.MemberRepository
	grants     *access.GrantSyncer
	logger     logger.Interface
}

func NewUpdateMemberUseCase(guard *access.Guard, memberRepo workspace.MemberRepository, grants *access.GrantSyncer, logger logger.Interface) *UpdateMemberUseCase {
	return &UpdateMemberUseCase{guard: guard, memberRepo: memberRepo, grants: grants, logger: logger}
}

func (uc *UpdateMemberUseCase) Execute(ctx context.Context, cmd UpdateMemberCommand) (*workspace.Member, error) {
	acc, err := uc.guard.Require(ctx, cmd.Actor, cmd.WorkspaceSID, permission.MembersManage)
	if err != nil {
		return nil, err
	}
	target, err := uc.memberRepo.GetBySID(ctx, acc.Workspace.ID(), cmd.MemberSID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if target == nil {
		return nil, access.MapError(workspace.ErrMemberNotFound)
	}

	if cmd.Role != nil {
		if err := workspace.ChangeRole(acc.Member, target, workspace.Role(*cmd.Role)); err != nil {
			return nil, access.MapError(err)
		}
	}
	if cmd.Status != nil {
		if err := workspace.ChangeStatus(acc.Member, target, workspace.MemberStatus(*cmd.Status)); err != nil {
			return nil, access.MapError(err)
		}
	}
	if cmd.Role == nil && cmd.Status == nil {
		return target, nil
	}

	if err := uc.memberRepo.Update(ctx, target); err != nil {
		uc.logger.Errorw("failed to update member", "member_sid", cmd.MemberSID, "error", err)
		return nil, access.MapError(err)
	}
	if err := uc.grants.Sync(ctx, acc.Workspace, target); err != nil {
		return nil, err
	}
	uc.logger.Infow("workspace member updated",
		"workspace_sid", cmd.WorkspaceSID,
		"member_sid", target.SID(),
		"role", target.Role(),
		"status", target.Status(),
	)
	return target, nil
}

type RemoveMemberUseCase struct {
	guard      *access.Guard
	memberRepo workspace.MemberRepository
	grants     *access.GrantSyncer
	logger     logger.Interface
}

func NewRemoveMemberUseCase(guard *access.Guard, memberRepo workspace.MemberRepository, grants *access.GrantSyncer, logger logger.Interface) *RemoveMemberUseCase {
	return &RemoveMemberUseCase{guard: guard, memberRepo: memberRepo, grants: grants, logger: logger}
}

// Execute removes a member; a non-owner may remove themselves to leave.
// Removing someone else requires members.manage.
func (uc *RemoveMemberUseCase) Execute(ctx context.Context, actor access.Actor, workspaceSID, memberSID string) error {
	acc, err := uc.guard.Resolve(ctx, actor, workspaceSID)
	if err != nil {
		return err
	}
	target, err := uc.memberRepo.GetBySID(ctx, acc.Workspace.ID(), memberSID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}
	if target == nil {
		return access.MapError(workspace.ErrMemberNotFound)
	}
	if target.ID() != acc.Member.ID() {
		if err := uc.guard.Check(actor, workspaceSID, permission.MembersManage); err != nil {
			return err
		}
	}
	if err := workspace.CanRemove(acc.Member, target); err != nil {
		return access.MapError(err)
	}

	if err := uc.memberRepo.Delete(ctx, target.ID()); err != nil {
		uc.logger.Errorw("failed to remove member", "member_sid", memberSID, "error", err)
		return access.MapError(err)
	}
	if err := uc.grants.Revoke(ctx, acc.Workspace, target.UserID()); err != nil {
		return err
	}
	uc.logger.Infow("workspace member removed", "workspace_sid", workspaceSID, "member_sid", memberSID, "actor_id", actor.ID)
	return nil
}

type TransferOwnershipUseCase struct {
	txManager     *db.TransactionManager
	resolver      *access.Resolver
	workspaceRepo workspace.Repository
	memberRepo    workspace.MemberRepository
	grants        *access.GrantSyncer
	logger        logger.Interface
}

func NewTransferOwnershipUseCase(
	txManager *db.TransactionManager,
	resolver *access.Resolver,
	workspaceRepo workspace.Repository,
	memberRepo workspace.MemberRepository,
	grants *access.GrantSyncer,
	logger logger.Interface,
) *TransferOwnershipUseCase {
	return &TransferOwnershipUseCase{
		txManager:     txManager,
		resolver:      resolver,
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		grants:        grants,
		logger:        logger,
	}
}

// Execute makes the member the owner; the previous owner becomes admin.
func (uc *TransferOwnershipUseCase) Execute(ctx context.Context, actorID uint, workspaceSID, newOwnerMemberSID string) (*workspace.Workspace, error) {
	acc, err := uc.resolver.Resolve(ctx, workspaceSID, actorID)
	if err != nil {
		return nil, err
	}
	to, err := uc.memberRepo.GetBySID(ctx, acc.Workspace.ID(), newOwnerMemberSID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if to == nil {
		return nil, access.MapError(workspace.ErrMemberNotFound)
	}
	from := acc.Member
	ws := acc.Workspace
	if err := workspace.TransferOwnership(ws, from, to); err != nil {
		return nil, access.MapError(err)
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.memberRepo.Update(txCtx, from); err != nil {
			return err
		}
		if err := uc.memberRepo.Update(txCtx, to); err != nil {
			return err
		}
		return uc.workspaceRepo.Update(txCtx, ws)
	})
	if err != nil {
		uc.logger.Errorw("failed to transfer ownership", "workspace_sid", workspaceSID, "error", err)
		return nil, access.MapError(err)
	}

	if err := uc.grants.Sync(ctx, ws, from); err != nil {
		return nil, err
	}
	if err := uc.grants.Sync(ctx, ws, to); err != nil {
		return nil, err
	}
	uc.logger.Infow("workspace ownership transferred", "workspace_sid", workspaceSID, "new_owner_member", to.SID())
	return ws, nil
}

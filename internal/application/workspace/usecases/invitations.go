package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/infrastructure/email"
	"github.com/connecthub/connecthub/internal/infrastructure/token"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/db"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

const DefaultInvitationTTL = 7 * 24 * time.Hour

type InvitationMailer interface {
	SendInvitationEmail(inv email.Invitation) error
}

type InviteMemberCommand struct {
	Actor        access.Actor
	WorkspaceSID string
	Email        string
	Role         string
}

type InviteMemberResult struct {
	Invitation *workspace.Invitation
	// Token is the plaintext token; only its hash is stored.
	Token     string
	EmailSent bool
}

type InviteMemberUseCase struct {
	txManager      *db.TransactionManager
	guard          *access.Guard
	userRepo       user.Repository
	memberRepo     workspace.MemberRepository
	invitationRepo workspace.InvitationRepository
	tokens         token.Generator
	mailer         InvitationMailer
	ttl            time.Duration
	logger         logger.Interface
}

func NewInviteMemberUseCase(
	txManager *db.TransactionManager,
	guard *access.Guard,
	userRepo user.Repository,
	memberRepo workspace.MemberRepository,
	invitationRepo workspace.InvitationRepository,
	tokens token.Generator,
	mailer InvitationMailer,
	ttl time.Duration,
	logger logger.Interface,
) *InviteMemberUseCase {
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	return &InviteMemberUseCase{
		txManager:      txManager,
		guard:          guard,
		userRepo:       userRepo,
		memberRepo:     memberRepo,
		invitationRepo: invitationRepo,
		tokens:         tokens,
		mailer:         mailer,
		ttl:            ttl,
		logger:         logger,
	}
}

// Execute replaces any pending invitation for the same address. The mail is
// best effort: a delivery failure is logged and the invitation kept.
func (uc *InviteMemberUseCase) Execute(ctx context.Context, cmd InviteMemberCommand) (*InviteMemberResult, error) {
	acc, err := uc.guard.Require(ctx, cmd.Actor, cmd.WorkspaceSID, permission.MembersInvite)
	if err != nil {
		return nil, err
	}
	role := workspace.Role(cmd.Role)
	if err := workspace.CanInvite(acc.Member, role); err != nil {
		return nil, access.MapError(err)
	}
	addr, err := user.NormalizeEmail(cmd.Email)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.checkNotMember(ctx, acc.Workspace.ID(), addr); err != nil {
		return nil, err
	}

	plain, hash, err := uc.tokens.Generate(token.PrefixInvitation)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}
	inv, err := workspace.NewInvitation(acc.Workspace.ID(), addr, role, hash, cmd.Actor.ID, uc.ttl)
	if err != nil {
		return nil, access.MapError(err)
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		pending, err := uc.invitationRepo.GetPendingByEmail(txCtx, acc.Workspace.ID(), addr)
		if err != nil {
			return err
		}
		if pending != nil {
			if err := pending.Revoke(); err != nil {
				return err
			}
			if err := uc.invitationRepo.Update(txCtx, pending); err != nil {
				return err
			}
		}
		return uc.invitationRepo.Create(txCtx, inv)
	})
	if err != nil {
		uc.logger.Errorw("failed to create invitation", "workspace_sid", cmd.WorkspaceSID, "error", err)
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	result := &InviteMemberResult{Invitation: inv, Token: plain}
	result.EmailSent = uc.sendMail(ctx, acc.Workspace, inv, plain, cmd.Actor.ID)

	uc.logger.Infow("member invited",
		"workspace_sid", cmd.WorkspaceSID,
		"invitation_sid", inv.SID(),
		"email", utils.MaskEmail(addr),
		"role", role,
	)
	return result, nil
}

func (uc *InviteMemberUseCase) checkNotMember(ctx context.Context, workspaceID uint, addr string) error {
	existing, err := uc.userRepo.GetByEmail(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to look up invitee: %w", err)
	}
	if existing == nil {
		return nil
	}
	m, err := uc.memberRepo.GetByUser(ctx, workspaceID, existing.ID())
	if err != nil {
		return fmt.Errorf("failed to get membership: %w", err)
	}
	if m != nil {
		return access.MapError(workspace.ErrAlreadyMember)
	}
	return nil
}

func (uc *InviteMemberUseCase) sendMail(ctx context.Context, ws *workspace.Workspace, inv *workspace.Invitation, plain string, inviterID uint) bool {
	if uc.mailer == nil {
		return false
	}
	inviterName := "A teammate"
	if inviter, err := uc.userRepo.GetByID(ctx, inviterID); err == nil && inviter != nil {
		inviterName = inviter.DisplayName()
	}
	err := uc.mailer.SendInvitationEmail(email.Invitation{
		To:            inv.Email(),
		WorkspaceName: ws.Name(),
		InviterName:   inviterName,
		Role:          inv.Role().String(),
		Token:         plain,
		ExpiresAt:     inv.ExpiresAt(),
	})
	if err != nil {
		if errors.Is(err, email.ErrEmailServiceNotConfigured) {
			uc.logger.Debugw("invitation email skipped, smtp not configured", "invitation_sid", inv.SID())
		} else {
			uc.logger.Warnw("failed to send invitation email", "invitation_sid", inv.SID(), "error", err)
		}
		return false
	}
	return true
}

type ListInvitationsUseCase struct {
	resolver       *access.Resolver
	invitationRepo workspace.InvitationRepository
}

func NewListInvitationsUseCase(resolver *access.Resolver, invitationRepo workspace.InvitationRepository) *ListInvitationsUseCase {
	return &ListInvitationsUseCase{resolver: resolver, invitationRepo: invitationRepo}
}

// Execute lists pending invitations.
func (uc *ListInvitationsUseCase) Execute(ctx context.Context, userID uint, workspaceSID string) ([]*workspace.Invitation, error) {
	acc, err := uc.resolver.Resolve(ctx, workspaceSID, userID)
	if err != nil {
		return nil, err
	}
	invitations, err := uc.invitationRepo.ListPending(ctx, acc.Workspace.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

type RevokeInvitationUseCase struct {
	guard          *access.Guard
	invitationRepo workspace.InvitationRepository
	logger         logger.Interface
}

func NewRevokeInvitationUseCase(guard *access.Guard, invitationRepo workspace.InvitationRepository, logger logger.Interface) *RevokeInvitationUseCase {
	return &RevokeInvitationUseCase{guard: guard, invitationRepo: invitationRepo, logger: logger}
}

func (uc *RevokeInvitationUseCase) Execute(ctx context.Context, actor access.Actor, workspaceSID, invitationSID string) error {
	acc, err := uc.guard.Require(ctx, actor, workspaceSID, permission.MembersInvite)
	if err != nil {
		return err
	}
	inv, err := uc.invitationRepo.GetBySID(ctx, acc.Workspace.ID(), invitationSID)
	if err != nil {
		return fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return access.MapError(workspace.ErrInvitationNotFound)
	}
	if err := inv.Revoke(); err != nil {
		return access.MapError(err)
	}
	if err := uc.invitationRepo.Update(ctx, inv); err != nil {
		return fmt.Errorf("failed to revoke invitation: %w", err)
	}
	uc.logger.Infow("invitation revoked", "workspace_sid", workspaceSID, "invitation_sid", invitationSID)
	return nil
}

type AcceptInvitationCommand struct {
	UserID uint
	Token  string
}

type AcceptInvitationUseCase struct {
	txManager      *db.TransactionManager
	userRepo       user.Repository
	workspaceRepo  workspace.Repository
	memberRepo     workspace.MemberRepository
	invitationRepo workspace.InvitationRepository
	tokens         token.Generator
	grants         *access.GrantSyncer
	logger         logger.Interface
}

func NewAcceptInvitationUseCase(
	txManager *db.TransactionManager,
	userRepo user.Repository,
	workspaceRepo workspace.Repository,
	memberRepo workspace.MemberRepository,
	invitationRepo workspace.InvitationRepository,
	tokens token.Generator,
	grants *access.GrantSyncer,
	logger logger.Interface,
) *AcceptInvitationUseCase {
	return &AcceptInvitationUseCase{
		txManager:      txManager,
		userRepo:       userRepo,
		workspaceRepo:  workspaceRepo,
		memberRepo:     memberRepo,
		invitationRepo: invitationRepo,
		tokens:         tokens,
		grants:         grants,
		logger:         logger,
	}
}

func (uc *AcceptInvitationUseCase) Execute(ctx context.Context, cmd AcceptInvitationCommand) (*WorkspaceResult, error) {
	inv, err := uc.invitationRepo.GetByTokenHash(ctx, uc.tokens.Hash(cmd.Token))
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, access.MapError(workspace.ErrInvitationNotFound)
	}
	u, err := uc.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, apperrors.NewUnauthorizedError("user not found")
	}
	ws, err := uc.workspaceRepo.GetByID(ctx, inv.WorkspaceID())
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if ws == nil {
		return nil, access.MapError(workspace.ErrInvitationNotFound)
	}

	if err := inv.Accept(u.Email()); err != nil {
		if errors.Is(err, workspace.ErrInvitationExpired) {
			if uerr := uc.invitationRepo.Update(ctx, inv); uerr != nil {
				uc.logger.Warnw("failed to mark invitation expired", "invitation_sid", inv.SID(), "error", uerr)
			}
		}
		return nil, access.MapError(err)
	}

	existing, err := uc.memberRepo.GetByUser(ctx, ws.ID(), u.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if existing != nil {
		return nil, access.MapError(workspace.ErrAlreadyMember)
	}
	member, err := workspace.NewMember(ws.ID(), u.ID(), inv.Role())
	if err != nil {
		return nil, access.MapError(err)
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.memberRepo.Create(txCtx, member); err != nil {
			return err
		}
		return uc.invitationRepo.Update(txCtx, inv)
	})
	if err != nil {
		uc.logger.Errorw("failed to accept invitation", "invitation_sid", inv.SID(), "error", err)
		return nil, access.MapError(err)
	}

	if err := uc.grants.Sync(ctx, ws, member); err != nil {
		return nil, err
	}
	uc.logger.Infow("invitation accepted", "workspace_sid", ws.SID(), "user_sid", u.SID(), "role", member.Role())
	return &WorkspaceResult{Workspace: ws, Role: member.Role()}, nil
}

// InvitationExpiryJob marks pending invitations past their expiry as expired.
type InvitationExpiryJob struct {
	invitationRepo workspace.InvitationRepository
}

func NewInvitationExpiryJob(invitationRepo workspace.InvitationRepository) *InvitationExpiryJob {
	return &InvitationExpiryJob{invitationRepo: invitationRepo}
}

func (j *InvitationExpiryJob) Execute(ctx context.Context) (int, error) {
	n, err := j.invitationRepo.ExpirePending(ctx, biztime.NowUTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	return int(n), nil
}

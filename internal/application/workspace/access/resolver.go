// Package access resolves a caller's membership in a workspace and keeps the
// enforcer's grants in line with stored memberships.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/workspace"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
)

// Actor identifies the authenticated caller.
type Actor struct {
	ID  uint
	SID string
}

// Access is a caller's active membership in a workspace.
type Access struct {
	Workspace *workspace.Workspace
	Member    *workspace.Member
}

func (a *Access) Role() workspace.Role { return a.Member.Role() }

type Resolver struct {
	workspaceRepo workspace.Repository
	memberRepo    workspace.MemberRepository
}

func NewResolver(workspaceRepo workspace.Repository, memberRepo workspace.MemberRepository) *Resolver {
	return &Resolver{workspaceRepo: workspaceRepo, memberRepo: memberRepo}
}

// Resolve returns not found both for a missing workspace and for one the
// user is not an active member of.
func (r *Resolver) Resolve(ctx context.Context, workspaceSID string, userID uint) (*Access, error) {
	ws, err := r.workspaceRepo.GetBySID(ctx, workspaceSID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if ws == nil {
		return nil, MapError(workspace.ErrWorkspaceNotFound)
	}
	m, err := r.memberRepo.GetByUser(ctx, ws.ID(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if m == nil || !m.IsActive() {
		return nil, MapError(workspace.ErrWorkspaceNotFound)
	}
	return &Access{Workspace: ws, Member: m}, nil
}

// MapError turns workspace sentinels into API errors.
func MapError(err error) error {
	switch {
	case errors.Is(err, workspace.ErrWorkspaceNotFound),
		errors.Is(err, workspace.ErrMemberNotFound),
		errors.Is(err, workspace.ErrInvitationNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, workspace.ErrAlreadyMember),
		errors.Is(err, workspace.ErrVersionConflict),
		errors.Is(err, workspace.ErrInvitationNotPending):
		return apperrors.NewConflictError(err.Error())
	case errors.Is(err, workspace.ErrInsufficientRole),
		errors.Is(err, workspace.ErrOwnerImmutable),
		errors.Is(err, workspace.ErrOwnerRoleNotAssignable),
		errors.Is(err, workspace.ErrInvitationEmailMismatch):
		return apperrors.NewForbiddenError(err.Error())
	case errors.Is(err, workspace.ErrInvalidName),
		errors.Is(err, workspace.ErrInvalidRole),
		errors.Is(err, workspace.ErrInvalidMemberStatus),
		errors.Is(err, workspace.ErrInvitationExpired),
		errors.Is(err, workspace.ErrNotMember):
		return apperrors.NewValidationError(err.Error())
	}
	return err
}

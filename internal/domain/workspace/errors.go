package workspace

import "errors"

var (
	ErrWorkspaceNotFound       = errors.New("workspace not found")
	ErrInvalidName             = errors.New("workspace name must be between 1 and 100 characters")
	ErrMemberNotFound          = errors.New("workspace member not found")
	ErrAlreadyMember           = errors.New("user is already a member of this workspace")
	ErrNotMember               = errors.New("user is not a member of this workspace")
	ErrInvalidRole             = errors.New("invalid workspace role")
	ErrInsufficientRole        = errors.New("insufficient workspace role")
	ErrOwnerImmutable          = errors.New("the workspace owner cannot be changed this way")
	ErrOwnerRoleNotAssignable  = errors.New("owner role can only be assigned by transferring ownership")
	ErrInvalidMemberStatus     = errors.New("invalid member status")
	ErrInvitationNotFound      = errors.New("invitation not found")
	ErrInvitationNotPending    = errors.New("invitation is no longer pending")
	ErrInvitationExpired       = errors.New("invitation has expired")
	ErrInvitationEmailMismatch = errors.New("invitation was sent to a different email address")
	ErrVersionConflict         = errors.New("workspace was modified concurrently")
)

package workspace

import (
	"fmt"
	"time"

	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/id"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation grants a role to whoever proves ownership of email by presenting
// the token. Only the token's hash is stored.
type Invitation struct {
	id          uint
	sid         string
	workspaceID uint
	email       string
	role        Role
	tokenHash   string
	invitedBy   uint
	status      InvitationStatus
	expiresAt   time.Time
	acceptedAt  *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewInvitation expects an already normalized email.
func NewInvitation(workspaceID uint, email string, role Role, tokenHash string, invitedBy uint, ttl time.Duration) (*Invitation, error) {
	if !role.IsInvitable() {
		return nil, ErrInvalidRole
	}
	if email == "" || tokenHash == "" {
		return nil, fmt.Errorf("email and token are required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invitation ttl must be positive")
	}
	sid, err := id.New(id.PrefixInvitation)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation ID: %w", err)
	}
	now := biztime.NowUTC()
	return &Invitation{
		sid:         sid,
		workspaceID: workspaceID,
		email:       email,
		role:        role,
		tokenHash:   tokenHash,
		invitedBy:   invitedBy,
		status:      InvitationPending,
		expiresAt:   now.Add(ttl),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructInvitation(id uint, sid string, workspaceID uint, email string, role Role, tokenHash string, invitedBy uint,
	status InvitationStatus, expiresAt time.Time, acceptedAt *time.Time, createdAt, updatedAt time.Time) *Invitation {
	return &Invitation{
		id:          id,
		sid:         sid,
		workspaceID: workspaceID,
		email:       email,
		role:        role,
		tokenHash:   tokenHash,
		invitedBy:   invitedBy,
		status:      status,
		expiresAt:   expiresAt,
		acceptedAt:  acceptedAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (i *Invitation) ID() uint                 { return i.id }
func (i *Invitation) SID() string              { return i.sid }
func (i *Invitation) WorkspaceID() uint        { return i.workspaceID }
func (i *Invitation) Email() string            { return i.email }
func (i *Invitation) Role() Role               { return i.role }
func (i *Invitation) TokenHash() string        { return i.tokenHash }
func (i *Invitation) InvitedBy() uint          { return i.invitedBy }
func (i *Invitation) Status() InvitationStatus { return i.status }
func (i *Invitation) ExpiresAt() time.Time     { return i.expiresAt }
func (i *Invitation) AcceptedAt() *time.Time   { return i.acceptedAt }
func (i *Invitation) CreatedAt() time.Time     { return i.createdAt }
func (i *Invitation) UpdatedAt() time.Time     { return i.updatedAt }

func (i *Invitation) SetID(id uint) error {
	if i.id != 0 {
		return fmt.Errorf("invitation ID is already set")
	}
	i.id = id
	return nil
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.expiresAt)
}

// Accept validates the invitation for the given normalized email and marks it accepted.
func (i *Invitation) Accept(email string) error {
	if i.status != InvitationPending {
		return ErrInvitationNotPending
	}
	now := biztime.NowUTC()
	if i.IsExpired(now) {
		i.status = InvitationExpired
		i.updatedAt = now
		return ErrInvitationExpired
	}
	if email != i.email {
		return ErrInvitationEmailMismatch
	}
	i.status = InvitationAccepted
	i.acceptedAt = &now
	i.updatedAt = now
	return nil
}

func (i *Invitation) Revoke() error {
	if i.status != InvitationPending {
		return ErrInvitationNotPending
	}
	i.status = InvitationRevoked
	i.updatedAt = biztime.NowUTC()
	return nil
}

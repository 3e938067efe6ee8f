package dto

import (
	"time"

	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workspace"
)

type WorkspaceResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Settings  map[string]any `json:"settings"`
	Role      string         `json:"role,omitempty"`
	IsOwner   bool           `json:"is_owner"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Version   int            `json:"version"`
}

type MemberResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Email             string    `json:"email"`
	DisplayName       string    `json:"display_name"`
	Role              string    `json:"role"`
	Status            string    `json:"status"`
	PermissionGroupID string    `json:"permission_group_id,omitempty"`
	JoinedAt          time.Time `json:"joined_at"`
}

type InvitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	// Token is only present in the response to the invite itself.
	Token     string `json:"token,omitempty"`
	EmailSent bool   `json:"email_sent"`
}

type CreateWorkspaceRequest struct {
	Name     string         `json:"name" binding:"required,max=100"`
	Settings map[string]any `json:"settings,omitempty"`
}

type UpdateWorkspaceRequest struct {
	Name     *string        `json:"name,omitempty" binding:"omitempty,max=100"`
	Settings map[string]any `json:"settings,omitempty"`
	// Version, when given, must match the stored version.
	Version *int `json:"version,omitempty"`
}

type UpdateMemberRequest struct {
	Role   *string `json:"role,omitempty" binding:"omitempty,oneof=owner admin member viewer"`
	Status *string `json:"status,omitempty" binding:"omitempty,oneof=active suspended"`
}

type TransferOwnershipRequest struct {
	MemberID string `json:"member_id" binding:"required"`
}

type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin member viewer"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

func ToWorkspaceResponse(ws *workspace.Workspace, role workspace.Role) *WorkspaceResponse {
	return &WorkspaceResponse{
		ID:        ws.SID(),
		Name:      ws.Name(),
		Settings:  ws.Settings(),
		Role:      role.String(),
		IsOwner:   role.IsOwner(),
		CreatedAt: ws.CreatedAt(),
		UpdatedAt: ws.UpdatedAt(),
		Version:   ws.Version(),
	}
}

// ToMemberResponse renders a member; u may be nil when the account is gone.
func ToMemberResponse(m *workspace.Member, u *user.User, groupSID string) *MemberResponse {
	resp := &MemberResponse{
		ID:                m.SID(),
		Role:              m.Role().String(),
		Status:            string(m.Status()),
		PermissionGroupID: groupSID,
		JoinedAt:          m.JoinedAt(),
	}
	if u != nil {
		resp.UserID = u.SID()
		resp.Email = u.Email()
		resp.DisplayName = u.DisplayName()
	}
	return resp
}

func ToInvitationResponse(inv *workspace.Invitation) *InvitationResponse {
	return &InvitationResponse{
		ID:        inv.SID(),
		Email:     inv.Email(),
		Role:      inv.Role().String(),
		Status:    string(inv.Status()),
		ExpiresAt: inv.ExpiresAt(),
		CreatedAt: inv.CreatedAt(),
	}
}

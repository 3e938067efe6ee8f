package dto

import (
	"time"

	"github.com/connecthub/connecthub/internal/domain/permission"
)

type GroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserPermissionsResponse struct {
	WorkspaceID string   `json:"workspace_id"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions"`
}

type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Permissions []string `json:"permissions" binding:"required"`
}

type UpdateGroupRequest struct {
	Name        *string  `json:"name,omitempty" binding:"omitempty,max=100"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=500"`
	Permissions []string `json:"permissions,omitempty"`
}

type AssignGroupRequest struct {
	// GroupID clears the assignment when null or empty.
	GroupID *string `json:"group_id"`
}

func ToGroupResponse(g *permission.Group) *GroupResponse {
	perms := g.Permissions()
	if perms == nil {
		perms = []string{}
	}
	return &GroupResponse{
		ID:          g.SID(),
		Name:        g.Name(),
		Description: g.Description(),
		Permissions: perms,
		CreatedAt:   g.CreatedAt(),
		UpdatedAt:   g.UpdatedAt(),
	}
}

package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/connecthub/connecthub/internal/shared/constants"
)

// WorkspaceModel represents the database persistence model for workspaces.
type WorkspaceModel struct {
	ID        uint           `gorm:"primarykey"`
	SID       string         `gorm:"column:sid;not null;size:32;uniqueIndex:idx_workspaces_sid"` // ws_xxxxxxxx
	Name      string         `gorm:"not null;size:100"`
	OwnerID   uint           `gorm:"not null;index:idx_workspaces_owner"`
	Settings  datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM.
func (WorkspaceModel) TableName() string {
	return constants.TableWorkspaces
}

// BeforeCreate hook for GORM.
func (m *WorkspaceModel) BeforeCreate(tx *gorm.DB) error {
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}

// WorkspaceMemberModel links a user to a workspace. A user has at most one
// membership per workspace.
type WorkspaceMemberModel struct {
	ID                uint   `gorm:"primarykey"`
	SID               string `gorm:"column:sid;not null;size:32;uniqueIndex:idx_workspace_members_sid"` // wm_xxxxxxxx
	WorkspaceID       uint   `gorm:"not null;uniqueIndex:uk_workspace_member,priority:1"`
	UserID            uint   `gorm:"not null;uniqueIndex:uk_workspace_member,priority:2;index:idx_workspace_members_user"`
	Role              string `gorm:"not null;size:20"`
	Status            string `gorm:"not null;size:20;default:active"`
	PermissionGroupID *uint  `gorm:"index:idx_workspace_members_group"`
	JoinedAt          time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for GORM.
func (WorkspaceMemberModel) TableName() string {
	return constants.TableWorkspaceMembers
}

// WorkspaceInvitationModel stores pending and settled invitations. Only the
// SHA-256 of the invitation token is kept.
type WorkspaceInvitationModel struct {
	ID          uint   `gorm:"primarykey"`
	SID         string `gorm:"column:sid;not null;size:32;uniqueIndex:idx_workspace_invitations_sid"` // inv_xxxxxxxx
	WorkspaceID uint   `gorm:"not null;index:idx_workspace_invitations_ws_email,priority:1"`
	Email       string `gorm:"not null;size:255;index:idx_workspace_invitations_ws_email,priority:2"`
	Role        string `gorm:"not null;size:20"`
	TokenHash   string `gorm:"not null;size:64;uniqueIndex:idx_workspace_invitations_token"`
	InvitedBy   uint   `gorm:"not null"`
	Status      string `gorm:"not null;size:20;default:pending;index:idx_workspace_invitations_status"`
	ExpiresAt   time.Time
	AcceptedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM.
func (WorkspaceInvitationModel) TableName() string {
	return constants.TableWorkspaceInvitations
}

package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/connecthub/connecthub/internal/shared/constants"
)

// PermissionGroupModel represents a named permission set inside a workspace.
type PermissionGroupModel struct {
	ID          uint                        `gorm:"primarykey"`
	SID         string                      `gorm:"column:sid;not null;size:32;uniqueIndex:idx_permission_groups_sid"` // pg_xxxxxxxx
	WorkspaceID uint                        `gorm:"not null;uniqueIndex:uk_permission_group_name,priority:1"`
	Name        string                      `gorm:"not null;size:100;uniqueIndex:uk_permission_group_name,priority:2"`
	Description string                      `gorm:"size:500"`
	Permissions datatypes.JSONSlice[string] `gorm:"type:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM.
func (PermissionGroupModel) TableName() string {
	return constants.TablePermissionGroups
}

// UserPermissionGroupModel records which group a workspace member belongs to.
type UserPermissionGroupModel struct {
	MemberID  uint `gorm:"primarykey;autoIncrement:false"`
	GroupID   uint `gorm:"not null;index:idx_user_permission_groups_group"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM.
func (UserPermissionGroupModel) TableName() string {
	return constants.TableUserPermissionGroups
}

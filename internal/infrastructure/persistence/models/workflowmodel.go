package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/connecthub/connecthub/internal/shared/constants"
)

// WorkflowModel represents the database persistence model for workflows.
// Nodes and edges are stored as JSON documents.
type WorkflowModel struct {
	ID          uint           `gorm:"primarykey"`
	SID         string         `gorm:"column:sid;not null;size:32;uniqueIndex:idx_workflows_sid"` // wf_xxxxxxxx
	WorkspaceID uint           `gorm:"not null;index:idx_workflows_workspace_status,priority:1"`
	CreatedBy   uint           `gorm:"not null"`
	Name        string         `gorm:"not null;size:200"`
	Description string         `gorm:"type:text"`
	Status      string         `gorm:"not null;size:20;default:draft;index:idx_workflows_workspace_status,priority:2"`
	Nodes       datatypes.JSON `gorm:"type:json"`
	Edges       datatypes.JSON `gorm:"type:json"`
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM.
func (WorkflowModel) TableName() string {
	return constants.TableWorkflows
}

// BeforeCreate hook for GORM.
func (m *WorkflowModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = "draft"
	}
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}

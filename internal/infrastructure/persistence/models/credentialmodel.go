package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/connecthub/connecthub/internal/shared/constants"
)

// CredentialModel stores one credential per (user, platform). SecretPayload is
// the sealed JSON of every secret field; KeyHint is a masked preview.
type CredentialModel struct {
	ID             uint                        `gorm:"primarykey"`
	SID            string                      `gorm:"column:sid;not null;size:32;uniqueIndex:idx_credentials_sid"` // cred_xxxxxxxx
	UserID         uint                        `gorm:"not null;uniqueIndex:uk_credential_user_platform,priority:1"`
	Platform       string                      `gorm:"not null;size:64;uniqueIndex:uk_credential_user_platform,priority:2"`
	CredentialType string                      `gorm:"not null;size:20"`
	Status         string                      `gorm:"not null;size:20;default:connected;index:idx_credentials_status"`
	SecretPayload  string                      `gorm:"type:text;not null"`
	KeyHint        string                      `gorm:"size:32"`
	Scopes         datatypes.JSONSlice[string] `gorm:"type:json"`
	TokenExpiresAt *time.Time                  `gorm:"index:idx_credentials_expires"`
	Metadata       datatypes.JSON              `gorm:"type:json"`
	UsageCount     int64                       `gorm:"not null;default:0"`
	ErrorCount     int64                       `gorm:"not null;default:0"`
	LastUsedAt     *time.Time
	LastError      string `gorm:"size:500"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM.
func (CredentialModel) TableName() string {
	return constants.TableCredentials
}

// IntegrationLogModel is an append-only activity record.
type IntegrationLogModel struct {
	ID            uint           `gorm:"primarykey"`
	UserID        uint           `gorm:"not null;index:idx_integration_logs_user_created,priority:1"`
	Platform      string         `gorm:"size:64;index:idx_integration_logs_platform"`
	CredentialSID string         `gorm:"column:credential_sid;size:32"`
	Action        string         `gorm:"not null;size:64"`
	Level         string         `gorm:"not null;size:16;default:info"`
	Message       string         `gorm:"type:text"`
	Details       datatypes.JSON `gorm:"type:json"`
	CreatedAt     time.Time      `gorm:"index:idx_integration_logs_user_created,priority:2"`
}

// TableName specifies the table name for GORM.
func (IntegrationLogModel) TableName() string {
	return constants.TableIntegrationLogs
}

// PlatformUsageStatModel holds per-day API call counters.
type PlatformUsageStatModel struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"not null;uniqueIndex:uk_platform_usage_day,priority:1"`
	Platform  string    `gorm:"not null;size:64;uniqueIndex:uk_platform_usage_day,priority:2"`
	Date      time.Time `gorm:"not null;uniqueIndex:uk_platform_usage_day,priority:3"`
	APICalls  int64     `gorm:"column:api_calls;not null;default:0"`
	Errors    int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM.
func (PlatformUsageStatModel) TableName() string {
	return constants.TablePlatformUsageStats
}

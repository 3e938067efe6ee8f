package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/connecthub/connecthub/internal/shared/constants"
)

// UserModel represents the database persistence model for users.
type UserModel struct {
	ID               uint   `gorm:"primarykey"`
	SID              string `gorm:"column:sid;not null;size:32;uniqueIndex:idx_users_sid"` // usr_xxxxxxxx
	Email            string `gorm:"not null;size:255;uniqueIndex:idx_users_email"`
	DisplayName      string `gorm:"not null;size:100"`
	PasswordHash     string `gorm:"not null;size:255"`
	Role             string `gorm:"not null;size:20;default:client;index:idx_users_role"`
	SubscriptionTier string `gorm:"not null;size:20;default:free"`
	Status           string `gorm:"not null;size:20;default:active;index:idx_users_status"`
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM.
func (UserModel) TableName() string {
	return constants.TableUsers
}

// BeforeCreate hook for GORM.
func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}

// UserPreferenceModel stores one row per user; users without a row get defaults.
type UserPreferenceModel struct {
	UserID              uint   `gorm:"primarykey;autoIncrement:false"`
	Theme               string `gorm:"not null;size:16;default:system"`
	Language            string `gorm:"not null;size:16;default:en"`
	Timezone            string `gorm:"not null;size:64;default:UTC"`
	EmailNotifications  bool   `gorm:"not null"`
	DefaultWorkspaceSID string `gorm:"column:default_workspace_sid;size:32"`
	UpdatedAt           time.Time
}

// TableName specifies the table name for GORM.
func (UserPreferenceModel) TableName() string {
	return constants.TableUserPreferences
}

package user

import (
	"time"

	"github.com/connecthub/connecthub/internal/shared/biztime"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// Preferences is the per-user dashboard configuration. A user without a
// stored row gets DefaultPreferences.
type Preferences struct {
	UserID              uint
	Theme               Theme
	Language            string
	Timezone            string
	EmailNotifications  bool
	DefaultWorkspaceSID string
	UpdatedAt           time.Time
}

func DefaultPreferences(userID uint) *Preferences {
	return &Preferences{
		UserID:             userID,
		Theme:              ThemeSystem,
		Language:           "en",
		Timezone:           "UTC",
		EmailNotifications: true,
	}
}

// PreferencesPatch carries the fields a client wants to change.
type PreferencesPatch struct {
	Theme               *string
	Language            *string
	Timezone            *string
	EmailNotifications  *bool
	DefaultWorkspaceSID *string
}

// Apply validates and merges the patch.
func (p *Preferences) Apply(patch PreferencesPatch) error {
	if patch.Theme != nil {
		theme := Theme(*patch.Theme)
		if !theme.IsValid() {
			return ErrInvalidPreference
		}
		p.Theme = theme
	}
	if patch.Language != nil {
		if l := len(*patch.Language); l < 2 || l > 10 {
			return ErrInvalidPreference
		}
		p.Language = *patch.Language
	}
	if patch.Timezone != nil {
		if _, err := time.LoadLocation(*patch.Timezone); err != nil {
			return ErrInvalidPreference
		}
		p.Timezone = *patch.Timezone
	}
	if patch.EmailNotifications != nil {
		p.EmailNotifications = *patch.EmailNotifications
	}
	if patch.DefaultWorkspaceSID != nil {
		p.DefaultWorkspaceSID = *patch.DefaultWorkspaceSID
	}
	p.UpdatedAt = biztime.NowUTC()
	return nil
}

package credential

import (
	"strings"
	"time"

	"github.com/connecthub/connecthub/internal/shared/biztime"
)

// IntegrationLog is an append-only activity record for one user.
type IntegrationLog struct {
	ID            uint
	UserID        uint
	Platform      string
	CredentialSID string
	Action        string
	Level         LogLevel
	Message       string
	Details       map[string]any
	CreatedAt     time.Time
}

func NewIntegrationLog(userID uint, platform, credentialSID, action string, level LogLevel, message string, details map[string]any) (*IntegrationLog, error) {
	action = strings.TrimSpace(action)
	if action == "" || len(action) > 64 {
		return nil, ErrInvalidAction
	}
	if level == "" {
		level = LogLevelInfo
	}
	if !level.IsValid() {
		return nil, ErrInvalidLogLevel
	}
	if details == nil {
		details = map[string]any{}
	}
	return &IntegrationLog{
		UserID:        userID,
		Platform:      strings.TrimSpace(platform),
		CredentialSID: credentialSID,
		Action:        action,
		Level:         level,
		Message:       message,
		Details:       details,
		CreatedAt:     biztime.NowUTC(),
	}, nil
}

// UsageStat is one user's API call counters for one platform and business day.
type UsageStat struct {
	UserID   uint
	Platform string
	Date     time.Time
	APICalls int64
	Errors   int64
}

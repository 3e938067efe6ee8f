package credential

import "github.com/connecthub/connecthub/internal/domain/shared/events"

const (
	EventCredentialSaved     = "credential.saved"
	EventCredentialDeleted   = "credential.deleted"
	EventCredentialExpired   = "credential.expired"
	EventCredentialRefreshed = "credential.refreshed"
)

// ActivityEvent is published for every credential lifecycle change and
// turned into an integration log entry by the subscriber.
type ActivityEvent struct {
	events.BaseEvent
	UserID   uint
	Platform string
	Action   string
	Level    LogLevel
	Message  string
	Details  map[string]any
}

func NewActivityEvent(eventType string, c *Credential, action string, level LogLevel, message string, details map[string]any) ActivityEvent {
	return ActivityEvent{
		BaseEvent: events.NewBaseEvent(c.SID(), eventType),
		UserID:    c.UserID(),
		Platform:  c.Platform(),
		Action:    action,
		Level:     level,
		Message:   message,
		Details:   details,
	}
}

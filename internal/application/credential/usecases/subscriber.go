package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/shared/events"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// ActivityLogSubscriber turns credential events into integration log entries.
type ActivityLogSubscriber struct {
	logRepo credential.LogRepository
	logger  logger.Interface
}

func NewActivityLogSubscriber(logRepo credential.LogRepository, logger logger.Interface) *ActivityLogSubscriber {
	return &ActivityLogSubscriber{logRepo: logRepo, logger: logger}
}

// Register subscribes to every credential lifecycle event.
func (s *ActivityLogSubscriber) Register(dispatcher events.EventDispatcher) error {
	for _, eventType := range []string{
		credential.EventCredentialSaved,
		credential.EventCredentialDeleted,
		credential.EventCredentialExpired,
		credential.EventCredentialRefreshed,
	} {
		if err := dispatcher.Subscribe(eventType, events.HandlerFunc(s.Handle)); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
		}
	}
	return nil
}

func (s *ActivityLogSubscriber) Handle(ctx context.Context, event events.DomainEvent) error {
	e, ok := event.(credential.ActivityEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	entry, err := credential.NewIntegrationLog(e.UserID, e.Platform, e.GetAggregateID(), e.Action, e.Level, e.Message, e.Details)
	if err != nil {
		return err
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		s.logger.Errorw("failed to log credential event", "event", e.GetEventType(), "credential_sid", e.GetAggregateID(), "error", err)
		return err
	}
	return nil
}

package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
	"github.com/connecthub/connecthub/internal/domain/shared/events"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type SaveCredentialCommand struct {
	UserID    uint
	Platform  string
	Type      credential.Type
	Secrets   credential.Secrets
	Scopes    []string
	Metadata  map[string]any
	ExpiresAt *time.Time
}

type SaveCredentialUseCase struct {
	registry       *platform.Registry
	credentialRepo credential.Repository
	publisher      events.EventPublisher
	logger         logger.Interface
}

func NewSaveCredentialUseCase(
	registry *platform.Registry,
	credentialRepo credential.Repository,
	publisher events.EventPublisher,
	logger logger.Interface,
) *SaveCredentialUseCase {
	return &SaveCredentialUseCase{
		registry:       registry,
		credentialRepo: credentialRepo,
		publisher:      publisher,
		logger:         logger,
	}
}

// Execute replaces any credential the user already holds for the platform.
func (uc *SaveCredentialUseCase) Execute(ctx context.Context, cmd SaveCredentialCommand) (*credential.Credential, error) {
	p, err := lookupPlatform(uc.registry, cmd.Platform)
	if err != nil {
		return nil, err
	}
	if !p.Supports(cmd.Type) {
		return nil, mapError(fmt.Errorf("%w: %s does not accept %s", credential.ErrInvalidType, p.Key, cmd.Type))
	}

	c, err := credential.NewCredential(cmd.UserID, p.Key, cmd.Type, cmd.Secrets, cmd.Scopes, cmd.ExpiresAt, cmd.Metadata)
	if err != nil {
		return nil, mapError(err)
	}
	stored, err := uc.credentialRepo.Upsert(ctx, c)
	if err != nil {
		return nil, err
	}

	publish(uc.publisher, uc.logger, credential.NewActivityEvent(credential.EventCredentialSaved, stored,
		credential.ActionCredentialSaved, credential.LogLevelInfo, fmt.Sprintf("%s credential saved", p.Name),
		map[string]any{"credential_type": string(stored.Type())}))

	uc.logger.Infow("credential saved", "user_id", cmd.UserID, "platform", p.Key, "type", cmd.Type)
	return stored, nil
}

func publish(publisher events.EventPublisher, log logger.Interface, event credential.ActivityEvent) {
	if err := publisher.Publish(event); err != nil {
		log.Warnw("failed to publish credential event", "event", event.GetEventType(), "credential_sid", event.GetAggregateID(), "error", err)
	}
}

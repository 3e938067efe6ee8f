package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/shared/events"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type DeleteCredentialUseCase struct {
	credentialRepo credential.Repository
	publisher      events.EventPublisher
	logger         logger.Interface
}

func NewDeleteCredentialUseCase(credentialRepo credential.Repository, publisher events.EventPublisher, logger logger.Interface) *DeleteCredentialUseCase {
	return &DeleteCredentialUseCase{credentialRepo: credentialRepo, publisher: publisher, logger: logger}
}

func (uc *DeleteCredentialUseCase) Execute(ctx context.Context, userID uint, sid string) error {
	c, err := getOwned(ctx, uc.credentialRepo, userID, sid)
	if err != nil {
		return err
	}
	return uc.remove(ctx, c)
}

// DisconnectPlatform deletes the credential held for a platform key.
func (uc *DeleteCredentialUseCase) DisconnectPlatform(ctx context.Context, userID uint, platformKey string) error {
	c, err := uc.credentialRepo.GetByPlatform(ctx, userID, platformKey)
	if err != nil {
		return fmt.Errorf("failed to get credential: %w", err)
	}
	if c == nil {
		return mapError(credential.ErrCredentialNotFound)
	}
	return uc.remove(ctx, c)
}

func (uc *DeleteCredentialUseCase) remove(ctx context.Context, c *credential.Credential) error {
	if err := uc.credentialRepo.Delete(ctx, c.ID()); err != nil {
		uc.logger.Errorw("failed to delete credential", "sid", c.SID(), "error", err)
		return mapError(err)
	}
	publish(uc.publisher, uc.logger, credential.NewActivityEvent(credential.EventCredentialDeleted, c,
		credential.ActionCredentialDeleted, credential.LogLevelInfo, "credential deleted", nil))
	uc.logger.Infow("credential deleted", "user_id", c.UserID(), "platform", c.Platform(), "sid", c.SID())
	return nil
}

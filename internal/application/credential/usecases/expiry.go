package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
	"github.com/connecthub/connecthub/internal/domain/shared/events"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

const expiryBatchSize = 200

// CredentialExpiryJob refreshes connected credentials whose token expired
// when the platform allows it, and marks the rest expired.
type CredentialExpiryJob struct {
	refresher
}

func NewCredentialExpiryJob(
	registry *platform.Registry,
	client OAuthClient,
	credentialRepo credential.Repository,
	logRepo credential.LogRepository,
	publisher events.EventPublisher,
	logger logger.Interface,
) *CredentialExpiryJob {
	return &CredentialExpiryJob{refresher{
		registry:       registry,
		client:         client,
		credentialRepo: credentialRepo,
		activity:       activityLog{repo: logRepo, logger: logger},
		publisher:      publisher,
		logger:         logger,
	}}
}

// Execute returns the number of credentials it changed.
func (j *CredentialExpiryJob) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()
	creds, err := j.credentialRepo.ListExpiring(ctx, now, expiryBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring credentials: %w", err)
	}

	handled := 0
	for _, c := range creds {
		if ctx.Err() != nil {
			return handled, ctx.Err()
		}
		if j.refreshable(c) {
			if err := j.refresh(ctx, c); err != nil {
				j.logger.Warnw("scheduled refresh failed", "sid", c.SID(), "platform", c.Platform(), "error", err)
			}
			handled++
			continue
		}

		changed, err := j.credentialRepo.MarkExpired(ctx, c, now)
		if err != nil {
			j.logger.Errorw("failed to mark credential expired", "sid", c.SID(), "error", err)
			continue
		}
		if !changed {
			continue
		}
		c.MarkExpired()
		publish(j.publisher, j.logger, credential.NewActivityEvent(credential.EventCredentialExpired, c,
			credential.ActionCredentialExpired, credential.LogLevelWarning, "access token expired", nil))
		handled++
	}
	return handled, nil
}

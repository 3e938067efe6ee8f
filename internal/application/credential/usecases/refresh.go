package usecases

import (
	"context"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
	"github.com/connecthub/connecthub/internal/domain/shared/events"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// refresher exchanges a stored refresh token and records the outcome on the
// credential and in the integration log.
type refresher struct {
	registry       *platform.Registry
	client         OAuthClient
	credentialRepo credential.Repository
	activity       activityLog
	publisher      events.EventPublisher
	logger         logger.Interface
}

func (r *refresher) refresh(ctx context.Context, c *credential.Credential) error {
	p, err := r.registry.Get(c.Platform())
	if err != nil {
		return err
	}
	tok, err := r.client.Refresh(ctx, p, c.SID(), c.Secrets().RefreshToken)
	if err == nil {
		err = c.ApplyRefreshedToken(tok.AccessToken, tok.RefreshToken, tok.Expiry)
	}
	if err != nil {
		c.MarkError(err.Error())
		if uerr := r.credentialRepo.RecordFailure(ctx, c); uerr != nil {
			r.logger.Errorw("failed to record refresh failure", "sid", c.SID(), "error", uerr)
		}
		r.activity.record(ctx, c.UserID(), c.Platform(), c.SID(), credential.ActionRefreshFailed, credential.LogLevelError,
			"token refresh failed", map[string]any{"error": err.Error()})
		return err
	}

	if err := r.credentialRepo.SaveRefreshedToken(ctx, c); err != nil {
		return err
	}
	publish(r.publisher, r.logger, credential.NewActivityEvent(credential.EventCredentialRefreshed, c,
		credential.ActionCredentialRefreshed, credential.LogLevelInfo, "access token refreshed", nil))
	return nil
}

// refreshable reports whether the platform is configured for the refresh grant.
func (r *refresher) refreshable(c *credential.Credential) bool {
	if !c.CanRefresh() {
		return false
	}
	p, err := r.registry.Get(c.Platform())
	return err == nil && p.OAuthReady()
}

type RefreshCredentialUseCase struct {
	refresher
}

func NewRefreshCredentialUseCase(
	registry *platform.Registry,
	client OAuthClient,
	credentialRepo credential.Repository,
	logRepo credential.LogRepository,
	publisher events.EventPublisher,
	logger logger.Interface,
) *RefreshCredentialUseCase {
	return &RefreshCredentialUseCase{refresher{
		registry:       registry,
		client:         client,
		credentialRepo: credentialRepo,
		activity:       activityLog{repo: logRepo, logger: logger},
		publisher:      publisher,
		logger:         logger,
	}}
}

func (uc *RefreshCredentialUseCase) Execute(ctx context.Context, userID uint, sid string) (*credential.Credential, error) {
	c, err := getOwned(ctx, uc.credentialRepo, userID, sid)
	if err != nil {
		return nil, err
	}
	if !c.CanRefresh() {
		return nil, mapError(credential.ErrNotRefreshable)
	}
	if !uc.refreshable(c) {
		return nil, mapError(credential.ErrOAuthNotConfigured)
	}
	if err := uc.refresh(ctx, c); err != nil {
		uc.logger.Warnw("credential refresh failed", "sid", sid, "platform", c.Platform(), "error", err)
		return nil, apperrors.NewBadRequestError("failed to refresh credential", err.Error())
	}
	uc.logger.Infow("credential refreshed", "sid", sid, "platform", c.Platform())
	return c, nil
}

package usecases

import (
	"context"
	"errors"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
	"github.com/connecthub/connecthub/internal/infrastructure/cache"
	"github.com/connecthub/connecthub/internal/infrastructure/oauth"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// OAuthClient runs the authorization code flow against a platform.
type OAuthClient interface {
	AuthCodeURL(p *platform.Platform, state, verifier string) (string, error)
	Exchange(ctx context.Context, p *platform.Platform, code, verifier string) (*oauth.Token, error)
	Refresh(ctx context.Context, p *platform.Platform, key, refreshToken string) (*oauth.Token, error)
}

// StateStore keeps one-time OAuth states between authorize and callback.
type StateStore interface {
	Save(ctx context.Context, state string, info cache.OAuthState) error
	Consume(ctx context.Context, state string) (*cache.OAuthState, error)
}

// activityLog writes integration log entries the server records on its own.
// A failed write is logged and never fails the operation.
type activityLog struct {
	repo   credential.LogRepository
	logger logger.Interface
}

func (a activityLog) record(ctx context.Context, userID uint, platformKey, credentialSID, action string, level credential.LogLevel, message string, details map[string]any) {
	entry, err := credential.NewIntegrationLog(userID, platformKey, credentialSID, action, level, message, details)
	if err == nil {
		err = a.repo.Create(ctx, entry)
	}
	if err != nil {
		a.logger.Warnw("failed to write integration log", "user_id", userID, "platform", platformKey, "action", action, "error", err)
	}
}

func lookupPlatform(registry *platform.Registry, key string) (*platform.Platform, error) {
	p, err := registry.Get(key)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), key)
	}
	return p, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, credential.ErrCredentialNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, credential.ErrInvalidType),
		errors.Is(err, credential.ErrMissingSecret),
		errors.Is(err, credential.ErrPlatformRequired),
		errors.Is(err, credential.ErrNotRefreshable),
		errors.Is(err, credential.ErrInvalidLogLevel),
		errors.Is(err, credential.ErrInvalidAction),
		errors.Is(err, credential.ErrOAuthStateInvalid),
		errors.Is(err, credential.ErrOAuthNotConfigured):
		return apperrors.NewValidationError(err.Error())
	}
	return err
}

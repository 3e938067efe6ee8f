package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
	"github.com/connecthub/connecthub/internal/domain/shared/events"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/infrastructure/cache"
	"github.com/connecthub/connecthub/internal/infrastructure/oauth"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type InitiateOAuthCommand struct {
	UserSID   string
	Platform  string
	ReturnURL string
}

type InitiateOAuthResult struct {
	AuthorizationURL string
	State            string
}

type InitiateOAuthUseCase struct {
	registry *platform.Registry
	client   OAuthClient
	states   StateStore
	logger   logger.Interface
}

func NewInitiateOAuthUseCase(registry *platform.Registry, client OAuthClient, states StateStore, logger logger.Interface) *InitiateOAuthUseCase {
	return &InitiateOAuthUseCase{registry: registry, client: client, states: states, logger: logger}
}

func (uc *InitiateOAuthUseCase) Execute(ctx context.Context, cmd InitiateOAuthCommand) (*InitiateOAuthResult, error) {
	p, err := lookupPlatform(uc.registry, cmd.Platform)
	if err != nil {
		return nil, err
	}
	if !p.OAuthReady() {
		return nil, mapError(fmt.Errorf("%w: %s", credential.ErrOAuthNotConfigured, p.Key))
	}

	verifier, _, err := oauth.GeneratePKCE()
	if err != nil {
		return nil, err
	}
	state, err := oauth.GenerateState()
	if err != nil {
		return nil, err
	}
	authURL, err := uc.client.AuthCodeURL(p, state, verifier)
	if err != nil {
		if errors.Is(err, oauth.ErrPlatformNotConfigured) {
			return nil, mapError(credential.ErrOAuthNotConfigured)
		}
		return nil, err
	}

	if err := uc.states.Save(ctx, state, cache.OAuthState{
		UserSID:      cmd.UserSID,
		Platform:     p.Key,
		CodeVerifier: verifier,
		ReturnURL:    cmd.ReturnURL,
	}); err != nil {
		uc.logger.Errorw("failed to store oauth state", "platform", p.Key, "error", err)
		return nil, fmt.Errorf("failed to start oauth flow: %w", err)
	}

	uc.logger.Infow("oauth flow started", "user_sid", cmd.UserSID, "platform", p.Key)
	return &InitiateOAuthResult{AuthorizationURL: authURL, State: state}, nil
}

type OAuthCallbackCommand struct {
	Platform string
	State    string
	Code     string
	// Error is the error parameter the platform sends when consent was refused.
	Error string
}

// OAuthCallbackResult always carries a redirect for the browser. Failure is
// set when the connection was not made.
type OAuthCallbackResult struct {
	RedirectURL string
	Credential  *credential.Credential
	Failure     error
}

type HandleOAuthCallbackUseCase struct {
	registry       *platform.Registry
	client         OAuthClient
	states         StateStore
	userRepo       user.Repository
	credentialRepo credential.Repository
	activity       activityLog
	publisher      events.EventPublisher
	frontendURL    string
	logger         logger.Interface
}

func NewHandleOAuthCallbackUseCase(
	registry *platform.Registry,
	client OAuthClient,
	states StateStore,
	userRepo user.Repository,
	credentialRepo credential.Repository,
	logRepo credential.LogRepository,
	publisher events.EventPublisher,
	frontendCallbackURL string,
	logger logger.Interface,
) *HandleOAuthCallbackUseCase {
	return &HandleOAuthCallbackUseCase{
		registry:       registry,
		client:         client,
		states:         states,
		userRepo:       userRepo,
		credentialRepo: credentialRepo,
		activity:       activityLog{repo: logRepo, logger: logger},
		publisher:      publisher,
		frontendURL:    frontendCallbackURL,
		logger:         logger,
	}
}

func (uc *HandleOAuthCallbackUseCase) Execute(ctx context.Context, cmd OAuthCallbackCommand) *OAuthCallbackResult {
	info, err := uc.states.Consume(ctx, cmd.State)
	if err != nil {
		if !errors.Is(err, cache.ErrStateNotFound) {
			uc.logger.Errorw("failed to read oauth state", "platform", cmd.Platform, "error", err)
		}
		uc.logger.Warnw("oauth callback with unknown state", "platform", cmd.Platform)
		return uc.fail(cmd.Platform, "", credential.ErrOAuthStateInvalid)
	}
	if info.Platform != cmd.Platform {
		uc.logger.Warnw("oauth state issued for another platform", "state_platform", info.Platform, "platform", cmd.Platform)
		return uc.fail(cmd.Platform, info.ReturnURL, credential.ErrOAuthStateInvalid)
	}

	u, err := uc.userRepo.GetBySID(ctx, info.UserSID)
	if err != nil || u == nil {
		uc.logger.Warnw("oauth state user not found", "user_sid", info.UserSID, "error", err)
		return uc.fail(cmd.Platform, info.ReturnURL, credential.ErrOAuthStateInvalid)
	}

	c, err := uc.connect(ctx, u.ID(), info, cmd)
	if err != nil {
		uc.activity.record(ctx, u.ID(), info.Platform, "", credential.ActionOAuthFailed, credential.LogLevelError,
			"OAuth connection failed", map[string]any{"error": err.Error()})
		uc.logger.Warnw("oauth connection failed", "user_id", u.ID(), "platform", info.Platform, "error", err)
		return uc.fail(info.Platform, info.ReturnURL, err)
	}

	// The activity subscriber writes the single audit row for this event.
	publish(uc.publisher, uc.logger, credential.NewActivityEvent(credential.EventCredentialSaved, c,
		credential.ActionOAuthConnected, credential.LogLevelInfo, "OAuth connection established",
		map[string]any{"credential_type": string(c.Type()), "scopes": c.Scopes()}))
	uc.logger.Infow("oauth connection established", "user_id", u.ID(), "platform", c.Platform())
	return &OAuthCallbackResult{
		RedirectURL: uc.redirect(c.Platform(), info.ReturnURL, "connected"),
		Credential:  c,
	}
}

func (uc *HandleOAuthCallbackUseCase) connect(ctx context.Context, userID uint, info *cache.OAuthState, cmd OAuthCallbackCommand) (*credential.Credential, error) {
	if cmd.Error != "" {
		return nil, fmt.Errorf("authorization denied: %s", cmd.Error)
	}
	if cmd.Code == "" {
		return nil, errors.New("authorization code missing")
	}
	p, err := uc.registry.Get(info.Platform)
	if err != nil {
		return nil, err
	}
	tok, err := uc.client.Exchange(ctx, p, cmd.Code, info.CodeVerifier)
	if err != nil {
		return nil, err
	}
	c, err := credential.NewCredential(userID, p.Key, credential.TypeOAuth2,
		credential.Secrets{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken},
		tok.Scopes, tok.Expiry, map[string]any{"connected_at": biztime.NowUTC().Format(time.RFC3339)})
	if err != nil {
		return nil, err
	}
	return uc.credentialRepo.Upsert(ctx, c)
}

func (uc *HandleOAuthCallbackUseCase) fail(platformKey, returnURL string, err error) *OAuthCallbackResult {
	return &OAuthCallbackResult{RedirectURL: uc.redirect(platformKey, returnURL, "error"), Failure: err}
}

// redirect builds frontend_callback_url?platform=<key>&status=<status>,
// keeping any query the configured URL already has.
func (uc *HandleOAuthCallbackUseCase) redirect(platformKey, returnURL, status string) string {
	u, err := url.Parse(uc.frontendURL)
	if err != nil {
		uc.logger.Errorw("invalid frontend callback url", "url", uc.frontendURL, "error", err)
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("platform", platformKey)
	q.Set("status", status)
	if returnURL != "" {
		q.Set("return_url", returnURL)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

package usecases

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/application/testutil"
	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
	"github.com/connecthub/connecthub/internal/domain/shared/events"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/infrastructure/cache"
	"github.com/connecthub/connecthub/internal/infrastructure/oauth"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
)

// capturePublisher records events and hands them to the activity log
// subscriber synchronously, as the dispatcher would.
type capturePublisher struct {
	mu     sync.Mutex
	events []credential.ActivityEvent
	sink   *ActivityLogSubscriber
}

func (p *capturePublisher) Publish(event events.DomainEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event.(credential.ActivityEvent))
	p.mu.Unlock()
	if p.sink != nil {
		return p.sink.Handle(context.Background(), event)
	}
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.GetEventType())
	}
	return out
}

type fakeOAuthClient struct {
	exchanged    []string
	exchangeErr  error
	refreshErr   error
	refreshCalls int
}

func (c *fakeOAuthClient) AuthCodeURL(p *platform.Platform, state, verifier string) (string, error) {
	if !p.OAuthReady() {
		return "", oauth.ErrPlatformNotConfigured
	}
	q := url.Values{}
	q.Set("state", state)
	q.Set("code_challenge", oauth.S256Challenge(verifier))
	q.Set("code_challenge_method", "S256")
	return p.OAuth.AuthURL + "?" + q.Encode(), nil
}

func (c *fakeOAuthClient) Exchange(_ context.Context, _ *platform.Platform, code, verifier string) (*oauth.Token, error) {
	if c.exchangeErr != nil {
		return nil, c.exchangeErr
	}
	c.exchanged = append(c.exchanged, code+":"+verifier)
	exp := biztime.NowUTC().Add(time.Hour)
	return &oauth.Token{AccessToken: "at-" + code, RefreshToken: "rt-" + code, Expiry: &exp, Scopes: []string{"chat:write"}}, nil
}

func (c *fakeOAuthClient) Refresh(_ context.Context, _ *platform.Platform, _, refreshToken string) (*oauth.Token, error) {
	c.refreshCalls++
	if c.refreshErr != nil {
		return nil, c.refreshErr
	}
	exp := biztime.NowUTC().Add(time.Hour)
	return &oauth.Token{AccessToken: "fresh-" + refreshToken, Expiry: &exp}, nil
}

type fixture struct {
	*testutil.Stack
	registry  *platform.Registry
	client    *fakeOAuthClient
	states    *cache.RedisStateStore
	publisher *capturePublisher
	user      *user.User
}

func newFixture(t *testing.T) *fixture {
	s := testutil.NewStack(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	registry := platform.NewRegistry([]*platform.Platform{
		{Key: "stripe", Name: "Stripe", Category: platform.CategoryPayments, AuthTypes: []credential.Type{credential.TypeAPIKey}},
		{Key: "slack", Name: "Slack", Category: platform.CategoryMessaging, AuthTypes: []credential.Type{credential.TypeOAuth2, credential.TypeBearerToken},
			OAuth: &platform.OAuthSettings{AuthURL: "https://slack.test/authorize", TokenURL: "https://slack.test/token", ClientID: "cid", ClientSecret: "secret"}},
		{Key: "notion", Name: "Notion", Category: platform.CategoryProductivity, AuthTypes: []credential.Type{credential.TypeOAuth2}},
	})

	return &fixture{
		Stack:     s,
		registry:  registry,
		client:    &fakeOAuthClient{},
		states:    cache.NewRedisStateStore(rdb, "oauth:state:", 10*time.Minute),
		publisher: &capturePublisher{sink: NewActivityLogSubscriber(s.Logs, s.Log)},
		user:      s.CreateUser(t, "dana@example.com"),
	}
}

func (f *fixture) save(t *testing.T, cmd SaveCredentialCommand) *credential.Credential {
	t.Helper()
	c, err := NewSaveCredentialUseCase(f.registry, f.Credentials, f.publisher, f.Log).Execute(context.Background(), cmd)
	require.NoError(t, err)
	return c
}

func (f *fixture) callback() *HandleOAuthCallbackUseCase {
	return NewHandleOAuthCallbackUseCase(f.registry, f.client, f.states, f.Users, f.Credentials, f.Logs, f.publisher,
		"https://app.test/integrations/callback", f.Log)
}

func (f *fixture) actions(t *testing.T) []string {
	t.Helper()
	logs, _, err := f.Logs.List(context.Background(), credential.LogFilter{UserID: f.user.ID()})
	require.NoError(t, err)
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func TestSaveCredential_LastWriteWins(t *testing.T) {
	f := newFixture(t)

	first := f.save(t, SaveCredentialCommand{UserID: f.user.ID(), Platform: "stripe", Type: credential.TypeAPIKey,
		Secrets: credential.Secrets{APIKey: "sk_live_first_key"}})
	second := f.save(t, SaveCredentialCommand{UserID: f.user.ID(), Platform: "Stripe", Type: credential.TypeAPIKey,
		Secrets: credential.Secrets{APIKey: "sk_live_second_key"}, Metadata: map[string]any{"account": "acme"}})

	assert.Equal(t, first.SID(), second.SID(), "the stored row is replaced, not duplicated")
	assert.Equal(t, "sk_live_second_key", second.Secrets().APIKey)
	assert.Equal(t, credential.StatusConnected, second.Status())

	creds, err := NewListCredentialsUseCase(f.Credentials, f.Log).Execute(context.Background(), f.user.ID())
	require.NoError(t, err)
	assert.Len(t, creds, 1)
	assert.Equal(t, []string{credential.EventCredentialSaved, credential.EventCredentialSaved}, f.publisher.types())
}

func TestSaveCredential_Validation(t *testing.T) {
	f := newFixture(t)
	uc := NewSaveCredentialUseCase(f.registry, f.Credentials, f.publisher, f.Log)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  SaveCredentialCommand
	}{
		{"unknown platform", SaveCredentialCommand{UserID: f.user.ID(), Platform: "myspace", Type: credential.TypeAPIKey, Secrets: credential.Secrets{APIKey: "k"}}},
		{"unsupported type", SaveCredentialCommand{UserID: f.user.ID(), Platform: "stripe", Type: credential.TypeBasicAuth, Secrets: credential.Secrets{Username: "u", Password: "p"}}},
		{"missing secret", SaveCredentialCommand{UserID: f.user.ID(), Platform: "stripe", Type: credential.TypeAPIKey}},
		{"missing token", SaveCredentialCommand{UserID: f.user.ID(), Platform: "slack", Type: credential.TypeBearerToken}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tt.cmd)
			assert.True(t, apperrors.IsValidationError(err), "got %v", err)
		})
	}
	assert.Empty(t, f.publisher.types())
}

func TestGetAndDeleteCredential_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.SaveCredential(t, f.user, "stripe")
	other := f.CreateUser(t, "mallory@example.com")

	_, err := NewGetCredentialUseCase(f.Credentials).Execute(ctx, other.ID(), c.SID())
	assert.True(t, apperrors.IsNotFoundError(err))

	del := NewDeleteCredentialUseCase(f.Credentials, f.publisher, f.Log)
	err = del.Execute(ctx, other.ID(), c.SID())
	assert.True(t, apperrors.IsNotFoundError(err), "deleting someone else's credential looks like a missing one")

	require.NoError(t, del.Execute(ctx, f.user.ID(), c.SID()))
	_, err = NewGetCredentialUseCase(f.Credentials).Execute(ctx, f.user.ID(), c.SID())
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Equal(t, []string{credential.EventCredentialDeleted}, f.publisher.types())
}

func TestDisconnectPlatform(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.SaveCredential(t, f.user, "stripe")
	del := NewDeleteCredentialUseCase(f.Credentials, f.publisher, f.Log)

	require.NoError(t, del.DisconnectPlatform(ctx, f.user.ID(), "stripe"))
	err := del.DisconnectPlatform(ctx, f.user.ID(), "stripe")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestOAuthFlow_Connects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, err := NewInitiateOAuthUseCase(f.registry, f.client, f.states, f.Log).Execute(ctx, InitiateOAuthCommand{
		UserSID: f.user.SID(), Platform: "slack", ReturnURL: "/integrations",
	})
	require.NoError(t, err)
	u, err := url.Parse(start.AuthorizationURL)
	require.NoError(t, err)
	assert.Equal(t, start.State, u.Query().Get("state"))
	assert.Equal(t, "S256", u.Query().Get("code_challenge_method"))

	res := f.callback().Execute(ctx, OAuthCallbackCommand{Platform: "slack", State: start.State, Code: "abc"})
	require.NoError(t, res.Failure)
	require.NotNil(t, res.Credential)
	assert.Equal(t, credential.TypeOAuth2, res.Credential.Type())
	assert.Equal(t, "at-abc", res.Credential.Secrets().AccessToken)
	assert.Equal(t, []string{"chat:write"}, res.Credential.Scopes())
	assert.NotNil(t, res.Credential.TokenExpiresAt())

	redirect, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "app.test", redirect.Host)
	assert.Equal(t, "slack", redirect.Query().Get("platform"))
	assert.Equal(t, "connected", redirect.Query().Get("status"))
	assert.Equal(t, "/integrations", redirect.Query().Get("return_url"))
	assert.Equal(t, []string{credential.ActionOAuthConnected}, f.actions(t), "one audit row per connection")
	assert.Equal(t, []string{credential.EventCredentialSaved}, f.publisher.types())

	replay := f.callback().Execute(ctx, OAuthCallbackCommand{Platform: "slack", State: start.State, Code: "abc"})
	assert.ErrorIs(t, replay.Failure, credential.ErrOAuthStateInvalid)
	redirect, err = url.Parse(replay.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "error", redirect.Query().Get("status"))
	assert.Len(t, f.client.exchanged, 1, "a replayed state never reaches the token endpoint")
}

func TestOAuthFlow_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	initiate := NewInitiateOAuthUseCase(f.registry, f.client, f.states, f.Log)

	_, err := initiate.Execute(ctx, InitiateOAuthCommand{UserSID: f.user.SID(), Platform: "notion"})
	assert.True(t, apperrors.IsValidationError(err), "no client id configured")
	_, err = initiate.Execute(ctx, InitiateOAuthCommand{UserSID: f.user.SID(), Platform: "stripe"})
	assert.True(t, apperrors.IsValidationError(err), "api key only platform")

	start, err := initiate.Execute(ctx, InitiateOAuthCommand{UserSID: f.user.SID(), Platform: "slack"})
	require.NoError(t, err)
	res := f.callback().Execute(ctx, OAuthCallbackCommand{Platform: "slack", State: start.State, Error: "access_denied"})
	require.Error(t, res.Failure)
	assert.Contains(t, res.RedirectURL, "status=error")
	assert.Contains(t, f.actions(t), credential.ActionOAuthFailed)

	f.client.exchangeErr = errors.New("invalid_grant")
	start, err = initiate.Execute(ctx, InitiateOAuthCommand{UserSID: f.user.SID(), Platform: "slack"})
	require.NoError(t, err)
	res = f.callback().Execute(ctx, OAuthCallbackCommand{Platform: "slack", State: start.State, Code: "bad"})
	require.Error(t, res.Failure)

	start, err = initiate.Execute(ctx, InitiateOAuthCommand{UserSID: f.user.SID(), Platform: "slack"})
	require.NoError(t, err)
	res = f.callback().Execute(ctx, OAuthCallbackCommand{Platform: "notion", State: start.State, Code: "x"})
	assert.ErrorIs(t, res.Failure, credential.ErrOAuthStateInvalid)

	creds, err := f.Credentials.ListByUser(ctx, f.user.ID())
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestRefreshCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	refresh := NewRefreshCredentialUseCase(f.registry, f.client, f.Credentials, f.Logs, f.publisher, f.Log)

	apiKey := f.SaveCredential(t, f.user, "stripe")
	_, err := refresh.Execute(ctx, f.user.ID(), apiKey.SID())
	assert.True(t, apperrors.IsValidationError(err))

	c := f.save(t, SaveCredentialCommand{UserID: f.user.ID(), Platform: "slack", Type: credential.TypeOAuth2,
		Secrets: credential.Secrets{AccessToken: "old", RefreshToken: "rt-1"}})
	refreshed, err := refresh.Execute(ctx, f.user.ID(), c.SID())
	require.NoError(t, err)
	assert.Equal(t, "fresh-rt-1", refreshed.Secrets().AccessToken)
	assert.Equal(t, "rt-1", refreshed.Secrets().RefreshToken, "an empty refresh token in the response keeps the old one")

	f.client.refreshErr = errors.New("revoked")
	_, err = refresh.Execute(ctx, f.user.ID(), c.SID())
	require.Error(t, err)
	stored, err := f.Credentials.GetBySID(ctx, f.user.ID(), c.SID())
	require.NoError(t, err)
	assert.Equal(t, credential.StatusError, stored.Status())
	assert.Equal(t, "revoked", stored.LastError())
	assert.Contains(t, f.actions(t), credential.ActionRefreshFailed)
}

func TestRecordUsage_AndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.SaveCredential(t, f.user, "stripe")
	record := NewRecordUsageUseCase(f.Credentials, f.Usage, f.Logs, f.Log)

	_, err := record.Execute(ctx, RecordUsageCommand{UserID: f.user.ID(), Platform: "stripe", Success: true})
	require.NoError(t, err)
	c, err := record.Execute(ctx, RecordUsageCommand{UserID: f.user.ID(), Platform: "stripe", ErrorMessage: "rate limited"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.UsageCount())
	assert.Equal(t, int64(1), c.ErrorCount())
	assert.Equal(t, "rate limited", c.LastError())

	_, err = record.Execute(ctx, RecordUsageCommand{UserID: f.user.ID(), Platform: "slack", Success: true})
	assert.True(t, apperrors.IsNotFoundError(err))

	stats, err := NewGetUsageStatsUseCase(f.Usage, f.Log).Execute(ctx, UsageStatsQuery{UserID: f.user.ID()})
	require.NoError(t, err)
	assert.Equal(t, DefaultUsageDays, stats.Days)
	require.Len(t, stats.Stats, 1)
	assert.Equal(t, int64(2), stats.TotalCalls)
	assert.Equal(t, int64(1), stats.TotalErrors)

	_, err = NewGetUsageStatsUseCase(f.Usage, f.Log).Execute(ctx, UsageStatsQuery{UserID: f.user.ID(), Days: 400})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestLogActivity_AndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.SaveCredential(t, f.user, "stripe")
	logActivity := NewLogActivityUseCase(f.Credentials, f.Logs, f.Log)

	entry, err := logActivity.Execute(ctx, LogActivityCommand{UserID: f.user.ID(), Platform: "stripe", Action: "charge_created",
		Message: "charge ok", Details: map[string]any{"amount": 1200}})
	require.NoError(t, err)
	assert.Equal(t, c.SID(), entry.CredentialSID)
	assert.Equal(t, credential.LogLevelInfo, entry.Level)

	_, err = logActivity.Execute(ctx, LogActivityCommand{UserID: f.user.ID(), Action: "sync", Level: credential.LogLevelError, Message: "boom"})
	require.NoError(t, err)
	_, err = logActivity.Execute(ctx, LogActivityCommand{UserID: f.user.ID(), Action: "sync", Level: "fatal"})
	assert.True(t, apperrors.IsValidationError(err))

	list := NewListLogsUseCase(f.Logs, f.Log)
	res, err := list.Execute(ctx, ListLogsQuery{UserID: f.user.ID()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, "sync", res.Logs[0].Action, "newest first")

	res, err = list.Execute(ctx, ListLogsQuery{UserID: f.user.ID(), Level: "error"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)

	other := f.CreateUser(t, "mallory@example.com")
	res, err = list.Execute(ctx, ListLogsQuery{UserID: other.ID()})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestCredentialExpiryJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := biztime.NowUTC().Add(-time.Minute)

	refreshable := f.save(t, SaveCredentialCommand{UserID: f.user.ID(), Platform: "slack", Type: credential.TypeOAuth2,
		Secrets: credential.Secrets{AccessToken: "old", RefreshToken: "rt-9"}, ExpiresAt: &past})
	stale := f.save(t, SaveCredentialCommand{UserID: f.user.ID(), Platform: "notion", Type: credential.TypeOAuth2,
		Secrets: credential.Secrets{AccessToken: "old"}, ExpiresAt: &past})
	f.publisher.events = nil

	job := NewCredentialExpiryJob(f.registry, f.client, f.Credentials, f.Logs, f.publisher, f.Log)
	n, err := job.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := f.Credentials.GetBySID(ctx, f.user.ID(), refreshable.SID())
	require.NoError(t, err)
	assert.Equal(t, credential.StatusConnected, got.Status())
	assert.Equal(t, "fresh-rt-9", got.Secrets().AccessToken)

	got, err = f.Credentials.GetBySID(ctx, f.user.ID(), stale.SID())
	require.NoError(t, err)
	assert.Equal(t, credential.StatusExpired, got.Status())
	assert.ElementsMatch(t, []string{credential.EventCredentialRefreshed, credential.EventCredentialExpired}, f.publisher.types())

	n, err = job.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "expired credentials are not picked up again")
}

func TestActivityLogSubscriber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.SaveCredential(t, f.user, "stripe")

	dispatcher := events.NewInMemoryEventDispatcher(10, f.Log)
	sub := NewActivityLogSubscriber(f.Logs, f.Log)
	require.NoError(t, sub.Register(dispatcher))
	require.NoError(t, dispatcher.Start())

	require.NoError(t, dispatcher.Publish(credential.NewActivityEvent(credential.EventCredentialSaved, c,
		credential.ActionCredentialSaved, credential.LogLevelInfo, "saved", nil)))
	require.NoError(t, dispatcher.Stop())

	logs, total, err := f.Logs.List(ctx, credential.LogFilter{UserID: f.user.ID()})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, credential.ActionCredentialSaved, logs[0].Action)
	assert.Equal(t, c.SID(), logs[0].CredentialSID)
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/infrastructure/encryption"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

func newCredentialRepo(t *testing.T) (*CredentialRepositoryImpl, *IntegrationLogRepositoryImpl, *UsageStatRepositoryImpl) {
	t.Helper()
	db := setupTestDB(t)
	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	box, err := encryption.NewSecretBox(key)
	require.NoError(t, err)
	log := logger.NewNopLogger()
	return NewCredentialRepository(db, box, log), NewIntegrationLogRepository(db, log), NewUsageStatRepository(db, log)
}

func apiKeyCredential(t *testing.T, userID uint, platform, key string) *credential.Credential {
	t.Helper()
	c, err := credential.NewCredential(userID, platform, credential.TypeAPIKey,
		credential.Secrets{APIKey: key}, nil, nil, map[string]any{"account": "main"})
	require.NoError(t, err)
	return c
}

func TestCredentialRepository_UpsertLastWriteWins(t *testing.T) {
	repo, _, _ := newCredentialRepo(t)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, apiKeyCredential(t, 1, "stripe", "sk_live_first_1111"))
	require.NoError(t, err)
	require.NoError(t, repo.RecordUsage(ctx, first, true, ""))

	second, err := repo.Upsert(ctx, apiKeyCredential(t, 1, "stripe", "sk_live_second_2222"))
	require.NoError(t, err)

	assert.Equal(t, first.SID(), second.SID())
	assert.Equal(t, "sk_live_second_2222", second.Secrets().APIKey)
	assert.Equal(t, int64(1), second.UsageCount())
	assert.Equal(t, credential.StatusConnected, second.Status())

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCredentialRepository_UsageOnStaleReadKeepsNewerSecret(t *testing.T) {
	repo, _, _ := newCredentialRepo(t)
	ctx := context.Background()

	stale, err := repo.Upsert(ctx, apiKeyCredential(t, 1, "openai", "sk_old_key_000000"))
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, apiKeyCredential(t, 1, "openai", "sk_new_key_123456"))
	require.NoError(t, err)

	require.NoError(t, repo.RecordUsage(ctx, stale, true, ""))
	require.NoError(t, repo.RecordUsage(ctx, stale, false, "rate limited"))

	got, err := repo.GetByPlatform(ctx, 1, "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk_new_key_123456", got.Secrets().APIKey)
	assert.Equal(t, int64(2), got.UsageCount())
	assert.Equal(t, int64(1), got.ErrorCount())
	assert.Equal(t, "rate limited", got.LastError())
	assert.NotNil(t, got.LastUsedAt())
	assert.Equal(t, credential.StatusConnected, got.Status())
}

func TestCredentialRepository_MarkExpiredSkipsResavedToken(t *testing.T) {
	repo, _, _ := newCredentialRepo(t)
	ctx := context.Background()
	now := biztime.NowUTC()

	past := now.Add(-time.Minute)
	old, err := credential.NewCredential(1, "github", credential.TypeOAuth2,
		credential.Secrets{AccessToken: "gho_old"}, nil, &past, nil)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, old)
	require.NoError(t, err)

	due, err := repo.ListExpiring(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)

	future := now.Add(time.Hour)
	fresh, err := credential.NewCredential(1, "github", credential.TypeOAuth2,
		credential.Secrets{AccessToken: "gho_fresh"}, nil, &future, nil)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, fresh)
	require.NoError(t, err)

	changed, err := repo.MarkExpired(ctx, due[0], now)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := repo.GetByPlatform(ctx, 1, "github")
	require.NoError(t, err)
	assert.Equal(t, credential.StatusConnected, got.Status())
	assert.Equal(t, "gho_fresh", got.Secrets().AccessToken)
}

func TestCredentialRepository_FailureKeepsCountersAndMetadata(t *testing.T) {
	repo, _, _ := newCredentialRepo(t)
	ctx := context.Background()

	saved, err := repo.Upsert(ctx, apiKeyCredential(t, 1, "hubspot", "pat-na1-000000"))
	require.NoError(t, err)
	require.NoError(t, repo.RecordUsage(ctx, saved, true, ""))

	saved.MarkError("invalid_grant")
	require.NoError(t, repo.RecordFailure(ctx, saved))

	got, err := repo.GetBySID(ctx, 1, saved.SID())
	require.NoError(t, err)
	assert.Equal(t, credential.StatusError, got.Status())
	assert.Equal(t, "invalid_grant", got.LastError())
	assert.Equal(t, int64(1), got.UsageCount())
	assert.Equal(t, int64(1), got.ErrorCount())
	assert.Equal(t, "main", got.Metadata()["account"])
}

func TestCredentialRepository_SecretsAreSealed(t *testing.T) {
	repo, _, _ := newCredentialRepo(t)
	ctx := context.Background()

	saved, err := repo.Upsert(ctx, apiKeyCredential(t, 1, "hubspot", "pat-na1-abcdef123456"))
	require.NoError(t, err)

	var row models.CredentialModel
	require.NoError(t, repo.db.First(&row, saved.ID()).Error)
	assert.NotContains(t, row.SecretPayload, "pat-na1-abcdef123456")
	assert.Equal(t, "********3456", row.KeyHint)

	got, err := repo.GetBySID(ctx, 1, saved.SID())
	require.NoError(t, err)
	assert.Equal(t, "pat-na1-abcdef123456", got.Secrets().APIKey)
	assert.Equal(t, "main", got.Metadata()["account"])
}

func TestCredentialRepository_ScopedToUser(t *testing.T) {
	repo, _, _ := newCredentialRepo(t)
	ctx := context.Background()

	saved, err := repo.Upsert(ctx, apiKeyCredential(t, 1, "slack", "xoxb-123456789"))
	require.NoError(t, err)

	other, err := repo.GetBySID(ctx, 2, saved.SID())
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, repo.Delete(ctx, saved.ID()))
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID()), credential.ErrCredentialNotFound)
}

func TestCredentialRepository_ListExpiring(t *testing.T) {
	repo, _, _ := newCredentialRepo(t)
	ctx := context.Background()
	now := biztime.NowUTC()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	expired, err := credential.NewCredential(1, "google", credential.TypeOAuth2,
		credential.Secrets{AccessToken: "ya29.old", RefreshToken: "1//r"}, []string{"email"}, &past, nil)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, expired)
	require.NoError(t, err)

	valid, err := credential.NewCredential(1, "github", credential.TypeOAuth2,
		credential.Secrets{AccessToken: "gho_valid"}, nil, &future, nil)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, valid)
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, apiKeyCredential(t, 1, "stripe", "sk_test_123456"))
	require.NoError(t, err)

	due, err := repo.ListExpiring(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "google", due[0].Platform())
	assert.Equal(t, []string{"email"}, due[0].Scopes())
}

func TestIntegrationLogRepository_ListNewestFirst(t *testing.T) {
	_, logs, _ := newCredentialRepo(t)
	ctx := context.Background()

	for i, action := range []string{credential.ActionCredentialSaved, credential.ActionAPICall, credential.ActionOAuthFailed} {
		level := credential.LogLevelInfo
		if action == credential.ActionOAuthFailed {
			level = credential.LogLevelError
		}
		entry, err := credential.NewIntegrationLog(1, "stripe", "", action, level, "entry", map[string]any{"n": i})
		require.NoError(t, err)
		require.NoError(t, logs.Create(ctx, entry))
		assert.NotZero(t, entry.ID)
	}
	other, err := credential.NewIntegrationLog(2, "stripe", "", credential.ActionAPICall, "", "not mine", nil)
	require.NoError(t, err)
	require.NoError(t, logs.Create(ctx, other))

	list, total, err := logs.List(ctx, credential.LogFilter{UserID: 1, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, credential.ActionOAuthFailed, list[0].Action)

	errorsOnly, total, err := logs.List(ctx, credential.LogFilter{UserID: 1, Level: "error"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, float64(2), errorsOnly[0].Details["n"])
}

func TestUsageStatRepository_IncrementAccumulates(t *testing.T) {
	_, _, usage := newCredentialRepo(t)
	ctx := context.Background()
	today := biztime.StartOfDayUTC(biztime.NowUTC())

	require.NoError(t, usage.Increment(ctx, 1, "stripe", today, 1, 0))
	require.NoError(t, usage.Increment(ctx, 1, "stripe", today, 1, 1))
	require.NoError(t, usage.Increment(ctx, 1, "slack", today, 1, 0))
	require.NoError(t, usage.Increment(ctx, 1, "stripe", today.AddDate(0, 0, -10), 5, 0))

	stats, err := usage.List(ctx, 1, "stripe", today.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(2), stats[0].APICalls)
	assert.Equal(t, int64(1), stats[0].Errors)

	all, err := usage.List(ctx, 1, "", today.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/shared/authorization"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

func createTestUser(t *testing.T, repo *UserRepositoryImpl, email string) *user.User {
	t.Helper()
	u, err := user.NewUser(email, "", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), logger.NewNopLogger())
	ctx := context.Background()

	u := createTestUser(t, repo, "Ada@Example.com")
	assert.NotZero(t, u.ID())

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.SID(), byEmail.SID())
	assert.Equal(t, authorization.RoleClient, byEmail.Role())
	assert.Equal(t, user.TierFree, byEmail.Tier())

	bySID, err := repo.GetBySID(ctx, u.SID())
	require.NoError(t, err)
	assert.Equal(t, u.ID(), bySID.ID())

	missing, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), logger.NewNopLogger())
	createTestUser(t, repo, "dup@example.com")

	again, err := user.NewUser("DUP@example.com", "", "hash")
	require.NoError(t, err)
	err = repo.Create(context.Background(), again)
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

func TestUserRepository_UpdateOptimisticLock(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), logger.NewNopLogger())
	ctx := context.Background()
	u := createTestUser(t, repo, "lock@example.com")

	first, err := repo.GetByID(ctx, u.ID())
	require.NoError(t, err)
	stale, err := repo.GetByID(ctx, u.ID())
	require.NoError(t, err)

	require.NoError(t, first.UpdateDisplayName("First"))
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, stale.UpdateDisplayName("Stale"))
	err = repo.Update(ctx, stale)
	assert.True(t, apperrors.IsConflictError(err))

	stored, err := repo.GetByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "First", stored.DisplayName())
	assert.Equal(t, 2, stored.Version())
}

func TestUserRepository_ListFilters(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), logger.NewNopLogger())
	ctx := context.Background()

	createTestUser(t, repo, "alice@example.com")
	createTestUser(t, repo, "bob@example.com")
	admin := createTestUser(t, repo, "carol@corp.io")
	require.NoError(t, admin.ChangeRole(authorization.RoleAdmin))
	require.NoError(t, repo.Update(ctx, admin))

	all, total, err := repo.List(ctx, user.ListFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)

	admins, total, err := repo.List(ctx, user.ListFilter{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, admin.SID(), admins[0].SID())

	found, total, err := repo.List(ctx, user.ListFilter{Search: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, found, 2)
}

func TestUserRepository_GetByIDs(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t), logger.NewNopLogger())
	a := createTestUser(t, repo, "a@example.com")
	b := createTestUser(t, repo, "b@example.com")

	users, err := repo.GetByIDs(context.Background(), []uint{a.ID(), b.ID(), 404})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	none, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUserPreferencesRepository(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db, logger.NewNopLogger())
	repo := NewUserPreferencesRepository(db, logger.NewNopLogger())
	ctx := context.Background()
	u := createTestUser(t, users, "prefs@example.com")

	prefs, err := repo.Get(ctx, u.ID())
	require.NoError(t, err)
	assert.Nil(t, prefs)

	p := user.DefaultPreferences(u.ID())
	p.Theme = user.ThemeDark
	p.EmailNotifications = false
	require.NoError(t, repo.Upsert(ctx, p))

	p.Language = "de"
	require.NoError(t, repo.Upsert(ctx, p))

	stored, err := repo.Get(ctx, u.ID())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, user.ThemeDark, stored.Theme)
	assert.Equal(t, "de", stored.Language)
	assert.False(t, stored.EmailNotifications)
}

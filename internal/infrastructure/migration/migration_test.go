package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	sharedConfig "github.com/connecthub/connecthub/internal/shared/config"
	"github.com/connecthub/connecthub/internal/shared/constants"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestNewManager_PicksStrategy(t *testing.T) {
	tests := []struct {
		env, driver string
		want        string
	}{
		{constants.EnvDevelopment, sharedConfig.DriverMySQL, "gorm_auto_migrate"},
		{constants.EnvProduction, sharedConfig.DriverSQLite, "gorm_auto_migrate"},
		{constants.EnvProduction, sharedConfig.DriverMySQL, "goose"},
		{constants.EnvTest, sharedConfig.DriverPostgres, "goose"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.driver, func(t *testing.T) {
			m, err := NewManager(tt.env, tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Strategy().Name())
		})
	}

	_, err := NewManager(constants.EnvProduction, "oracle")
	assert.Error(t, err)
}

func TestGormAutoMigrateStrategy(t *testing.T) {
	db := openTestDB(t)
	m := NewManagerWithStrategy(NewGormAutoMigrateStrategy())

	require.NoError(t, m.Migrate(context.Background(), db))
	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.NoError(t, m.CheckPending(context.Background(), db))
}

func TestGooseStrategy_UpDownAndPending(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	g, err := NewGooseStrategy(sharedConfig.DriverSQLite)
	require.NoError(t, err)
	m := NewManagerWithStrategy(g)

	assert.Error(t, m.CheckPending(ctx, db))

	require.NoError(t, m.Migrate(ctx, db))
	assert.NoError(t, m.CheckPending(ctx, db))

	for _, table := range []string{constants.TableUsers, constants.TableCredentials, constants.TableWorkflows, constants.TableUserPermissionGroups} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	latest, err := g.LatestVersion()
	require.NoError(t, err)
	version, err := g.Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, latest, version)

	require.NoError(t, g.MigrateDown(ctx, db, 1))
	assert.False(t, db.Migrator().HasTable(constants.TableUsers))
	pending, err := g.HasPending(ctx, db)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestGooseScriptsMatchAcrossDialects(t *testing.T) {
	var versions []int64
	for _, driver := range []string{sharedConfig.DriverMySQL, sharedConfig.DriverPostgres, sharedConfig.DriverSQLite} {
		g, err := NewGooseStrategy(driver)
		require.NoError(t, err)
		v, err := g.LatestVersion()
		require.NoError(t, err, driver)
		versions = append(versions, v)
	}
	assert.Equal(t, versions[0], versions[1])
	assert.Equal(t, versions[0], versions[2])
}

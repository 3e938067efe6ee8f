package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/connecthub/connecthub/internal/infrastructure/migration"
	sharedConfig "github.com/connecthub/connecthub/internal/shared/config"
)

// setupTestDB opens an in-memory sqlite database carrying the schema the
// goose scripts ship, so repository tests run against production DDL.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	strategy, err := migration.NewGooseStrategy(sharedConfig.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, strategy.Migrate(context.Background(), db))
	return db
}

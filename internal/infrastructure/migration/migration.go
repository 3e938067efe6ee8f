// Package migration applies the database schema, either from versioned goose
// scripts or with GORM AutoMigrate during local development.
package migration

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	sharedConfig "github.com/connecthub/connecthub/internal/shared/config"
	"github.com/connecthub/connecthub/internal/shared/constants"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks AutoMigrate for development and sqlite, goose scripts otherwise.
func NewManager(environment, driver string) (*Manager, error) {
	var strategy Strategy
	if strings.EqualFold(environment, constants.EnvDevelopment) || driver == sharedConfig.DriverSQLite {
		strategy = NewGormAutoMigrateStrategy()
	} else {
		goose, err := NewGooseStrategy(driver)
		if err != nil {
			return nil, err
		}
		strategy = goose
	}
	return NewManagerWithStrategy(strategy), nil
}

func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.WithComponent("migration.manager"),
	}
}

func (m *Manager) Migrate(ctx context.Context, db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.Name())

	if err := m.strategy.Migrate(ctx, db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.Name(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.Name(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.Name())
	return nil
}

// CheckPending returns an error when versioned migrations have not been applied.
// AutoMigrate has no notion of pending work, so it always passes.
func (m *Manager) CheckPending(ctx context.Context, db *gorm.DB) error {
	goose, ok := m.strategy.(*GooseStrategy)
	if !ok {
		return nil
	}
	pending, err := goose.HasPending(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}
	if pending {
		return fmt.Errorf("database has pending migrations, run `connecthub migrate up` or start with --auto-migrate")
	}
	return nil
}

func (m *Manager) Strategy() Strategy {
	return m.strategy
}

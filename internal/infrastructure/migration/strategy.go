package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	sharedConfig "github.com/connecthub/connecthub/internal/shared/config"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

//go:embed scripts
var scriptsFS embed.FS

// ScriptsDir is where `migrate create` writes new files, relative to the repo root.
const ScriptsDir = "internal/infrastructure/migration/scripts"

type Strategy interface {
	Migrate(ctx context.Context, db *gorm.DB) error
	Name() string
}

// GormAutoMigrateStrategy creates or alters tables from the persistence models.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{logger: logger.WithComponent("migration.automigrate")}
}

func (s *GormAutoMigrateStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	all := models.All()
	s.logger.Infow("running gorm automigrate", "models_count", len(all))
	if err := db.WithContext(ctx).AutoMigrate(all...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) Name() string {
	return "gorm_auto_migrate"
}

// GooseStrategy applies the versioned SQL scripts embedded for one dialect.
type GooseStrategy struct {
	driver  string
	dialect string
	logger  logger.Interface
}

func NewGooseStrategy(driver string) (*GooseStrategy, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	return &GooseStrategy{
		driver:  driver,
		dialect: dialect,
		logger:  logger.WithComponent("migration.goose"),
	}, nil
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case sharedConfig.DriverMySQL, "":
		return "mysql", nil
	case sharedConfig.DriverPostgres:
		return "postgres", nil
	case sharedConfig.DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported database driver for migrations: %s", driver)
	}
}

func (s *GooseStrategy) scriptsDir() string {
	if s.driver == "" {
		return sharedConfig.DriverMySQL
	}
	return s.driver
}

// prepare points goose at the embedded scripts and returns the raw connection.
func (s *GooseStrategy) prepare(db *gorm.DB) (*sql.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sub, err := fs.Sub(scriptsFS, "scripts")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded scripts: %w", err)
	}
	goose.SetBaseFS(sub)
	if err := goose.SetDialect(s.dialect); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return sqlDB, nil
}

func (s *GooseStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	s.logger.Infow("starting goose migration", "dialect", s.dialect)

	gdb, err := s.prepare(db)
	if err != nil {
		return err
	}

	currentVersion, err := goose.GetDBVersionContext(ctx, gdb)
	if err != nil {
		s.logger.Errorw("failed to get current version", "error", err)
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if err := goose.UpContext(ctx, gdb, s.scriptsDir()); err != nil {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	finalVersion, err := goose.GetDBVersionContext(ctx, gdb)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}

	s.logger.Infow("migration completed successfully",
		"from_version", currentVersion,
		"to_version", finalVersion)
	return nil
}

func (s *GooseStrategy) Name() string {
	return "goose"
}

func (s *GooseStrategy) MigrateDown(ctx context.Context, db *gorm.DB, steps int) error {
	s.logger.Infow("starting down migration", "steps", steps)

	gdb, err := s.prepare(db)
	if err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		if err := goose.DownContext(ctx, gdb, s.scriptsDir()); err != nil {
			if errors.Is(err, goose.ErrNoNextVersion) {
				break
			}
			s.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
	}

	s.logger.Infow("down migration completed successfully")
	return nil
}

func (s *GooseStrategy) Version(ctx context.Context, db *gorm.DB) (int64, error) {
	gdb, err := s.prepare(db)
	if err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, gdb)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// LatestVersion is the highest version among the embedded scripts.
func (s *GooseStrategy) LatestVersion() (int64, error) {
	sub, err := fs.Sub(scriptsFS, "scripts")
	if err != nil {
		return 0, err
	}
	goose.SetBaseFS(sub)
	migrations, err := goose.CollectMigrations(s.scriptsDir(), 0, goose.MaxVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to collect migrations: %w", err)
	}
	last, err := migrations.Last()
	if err != nil {
		return 0, fmt.Errorf("no migrations found: %w", err)
	}
	return last.Version, nil
}

// HasPending reports whether the database is behind the embedded scripts.
func (s *GooseStrategy) HasPending(ctx context.Context, db *gorm.DB) (bool, error) {
	current, err := s.Version(ctx, db)
	if err != nil {
		return false, err
	}
	latest, err := s.LatestVersion()
	if err != nil {
		return false, err
	}
	return current < latest, nil
}

func (s *GooseStrategy) Status(ctx context.Context, db *gorm.DB) error {
	gdb, err := s.prepare(db)
	if err != nil {
		return err
	}
	if err := goose.StatusContext(ctx, gdb, s.scriptsDir()); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	return nil
}

// Create writes a new timestamped SQL migration into the on-disk scripts directory.
func (s *GooseStrategy) Create(name string) (string, error) {
	goose.SetBaseFS(nil)
	dir := filepath.Join(ScriptsDir, s.scriptsDir())
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return "", fmt.Errorf("failed to create migration: %w", err)
	}
	s.logger.Infow("migration created successfully", "name", name, "dir", dir)
	return dir, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/mappers"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/constants"
	"github.com/connecthub/connecthub/internal/shared/db"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// replacedOnUpsert are the columns a repeated save overwrites. sid, created_at
// and the usage counters keep their stored values.
var replacedOnUpsert = []string{
	"credential_type", "status", "secret_payload", "key_hint", "scopes",
	"token_expires_at", "metadata", "last_error", "updated_at",
}

// CredentialRepositoryImpl implements credential.Repository. Every query is
// scoped by user ID where the interface allows it.
type CredentialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mappers.CredentialMapper
	logger logger.Interface
}

func NewCredentialRepository(db *gorm.DB, sealer mappers.SecretSealer, logger logger.Interface) *CredentialRepositoryImpl {
	return &CredentialRepositoryImpl{db: db, mapper: mappers.NewCredentialMapper(sealer), logger: logger}
}

func (r *CredentialRepositoryImpl) Upsert(ctx context.Context, c *credential.Credential) (*credential.Credential, error) {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		return nil, err
	}
	tx := db.GetTxFromContext(ctx, r.db)
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns(replacedOnUpsert),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert credential", "user_id", model.UserID, "platform", model.Platform, "error", err)
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}

	stored, err := r.GetByPlatform(ctx, model.UserID, model.Platform)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("credential for %s vanished after save", model.Platform)
	}
	r.logger.Infow("credential saved", "sid", stored.SID(), "platform", stored.Platform())
	return stored, nil
}

func (r *CredentialRepositoryImpl) first(ctx context.Context, query string, args ...any) (*credential.Credential, error) {
	var model models.CredentialModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get credential", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *CredentialRepositoryImpl) GetBySID(ctx context.Context, userID uint, sid string) (*credential.Credential, error) {
	return r.first(ctx, "user_id = ? AND sid = ?", userID, sid)
}

func (r *CredentialRepositoryImpl) GetByPlatform(ctx context.Context, userID uint, platform string) (*credential.Credential, error) {
	return r.first(ctx, "user_id = ? AND platform = ?", userID, platform)
}

func (r *CredentialRepositoryImpl) find(ctx context.Context, q *gorm.DB) ([]*credential.Credential, error) {
	var modelList []*models.CredentialModel
	if err := q.Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list credentials", "error", err)
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	out := make([]*credential.Credential, 0, len(modelList))
	for _, m := range modelList {
		c, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CredentialRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*credential.Credential, error) {
	return r.find(ctx, db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).Order("platform ASC"))
}

func (r *CredentialRepositoryImpl) ListExpiring(ctx context.Context, now time.Time, limit int) ([]*credential.Credential, error) {
	q := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND token_expires_at IS NOT NULL AND token_expires_at <= ?", string(credential.StatusConnected), now).
		Order("token_expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.find(ctx, q)
}

// The writers below own disjoint column sets so a write computed from a stale
// read never reverts a newer save.

func (r *CredentialRepositoryImpl) updateColumns(ctx context.Context, c *credential.Credential, action string, values map[string]any) error {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.CredentialModel{}).
		Where("id = ? AND user_id = ?", c.ID(), c.UserID()).
		Updates(values)
	if result.Error != nil {
		r.logger.Errorw("failed to "+action, "id", c.ID(), "error", result.Error)
		return fmt.Errorf("failed to %s: %w", action, result.Error)
	}
	if result.RowsAffected == 0 {
		return credential.ErrCredentialNotFound
	}
	return nil
}

func (r *CredentialRepositoryImpl) RecordUsage(ctx context.Context, c *credential.Credential, success bool, errMessage string) error {
	now := biztime.NowUTC()
	values := map[string]any{
		"usage_count":  gorm.Expr("usage_count + ?", 1),
		"last_used_at": now,
		"updated_at":   now,
	}
	if !success {
		values["error_count"] = gorm.Expr("error_count + ?", 1)
		values["last_error"] = errMessage
	}
	return r.updateColumns(ctx, c, "record credential usage", values)
}

func (r *CredentialRepositoryImpl) SaveRefreshedToken(ctx context.Context, c *credential.Credential) error {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		return err
	}
	return r.updateColumns(ctx, c, "save refreshed token", map[string]any{
		"secret_payload":   model.SecretPayload,
		"key_hint":         model.KeyHint,
		"token_expires_at": model.TokenExpiresAt,
		"status":           model.Status,
		"last_error":       model.LastError,
		"updated_at":       model.UpdatedAt,
	})
}

func (r *CredentialRepositoryImpl) RecordFailure(ctx context.Context, c *credential.Credential) error {
	return r.updateColumns(ctx, c, "record credential failure", map[string]any{
		"status":      string(credential.StatusError),
		"last_error":  c.LastError(),
		"error_count": gorm.Expr("error_count + ?", 1),
		"updated_at":  biztime.NowUTC(),
	})
}

func (r *CredentialRepositoryImpl) MarkExpired(ctx context.Context, c *credential.Credential, now time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.CredentialModel{}).
		Where("id = ? AND user_id = ?", c.ID(), c.UserID()).
		Where("status = ? AND token_expires_at IS NOT NULL AND token_expires_at <= ?", string(credential.StatusConnected), now).
		Updates(map[string]any{
			"status":     string(credential.StatusExpired),
			"updated_at": now,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to mark credential expired", "id", c.ID(), "error", result.Error)
		return false, fmt.Errorf("failed to mark credential expired: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *CredentialRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.CredentialModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete credential", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete credential: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return credential.ErrCredentialNotFound
	}
	return nil
}

// IntegrationLogRepositoryImpl implements credential.LogRepository.
type IntegrationLogRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewIntegrationLogRepository(db *gorm.DB, logger logger.Interface) *IntegrationLogRepositoryImpl {
	return &IntegrationLogRepositoryImpl{db: db, logger: logger}
}

func (r *IntegrationLogRepositoryImpl) Create(ctx context.Context, entry *credential.IntegrationLog) error {
	model, err := mappers.IntegrationLogToModel(entry)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to write integration log", "user_id", entry.UserID, "action", entry.Action, "error", err)
		return fmt.Errorf("failed to write integration log: %w", err)
	}
	entry.ID = model.ID
	return nil
}

// List returns the newest entries first.
func (r *IntegrationLogRepositoryImpl) List(ctx context.Context, filter credential.LogFilter) ([]*credential.IntegrationLog, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.IntegrationLogModel{}).Where("user_id = ?", filter.UserID)
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count integration logs", "error", err)
		return nil, 0, fmt.Errorf("failed to count integration logs: %w", err)
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var modelList []*models.IntegrationLogModel
	if err := query.Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list integration logs", "error", err)
		return nil, 0, fmt.Errorf("failed to list integration logs: %w", err)
	}
	out := make([]*credential.IntegrationLog, 0, len(modelList))
	for _, m := range modelList {
		entry, err := mappers.IntegrationLogToEntity(m)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, entry)
	}
	return out, total, nil
}

// UsageStatRepositoryImpl implements credential.UsageRepository.
type UsageStatRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUsageStatRepository(db *gorm.DB, logger logger.Interface) *UsageStatRepositoryImpl {
	return &UsageStatRepositoryImpl{db: db, logger: logger}
}

func (r *UsageStatRepositoryImpl) Increment(ctx context.Context, userID uint, platform string, day time.Time, calls, errs int64) error {
	row := &models.PlatformUsageStatModel{
		UserID:    userID,
		Platform:  platform,
		Date:      day,
		APICalls:  calls,
		Errors:    errs,
		UpdatedAt: day,
	}
	table := constants.TablePlatformUsageStats
	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"api_calls": gorm.Expr(table+".api_calls + ?", calls),
			"errors":    gorm.Expr(table+".errors + ?", errs),
		}),
	}).Create(row).Error
	if err != nil {
		r.logger.Errorw("failed to increment usage stats", "user_id", userID, "platform", platform, "error", err)
		return fmt.Errorf("failed to increment usage stats: %w", err)
	}
	return nil
}

func (r *UsageStatRepositoryImpl) List(ctx context.Context, userID uint, platform string, since time.Time) ([]*credential.UsageStat, error) {
	query := db.GetTxFromContext(ctx, r.db).Where("user_id = ? AND date >= ?", userID, since)
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}
	var modelList []*models.PlatformUsageStatModel
	if err := query.Order("date ASC").Order("platform ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list usage stats", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list usage stats: %w", err)
	}
	out := make([]*credential.UsageStat, 0, len(modelList))
	for _, m := range modelList {
		out = append(out, mappers.UsageStatToEntity(m))
	}
	return out, nil
}

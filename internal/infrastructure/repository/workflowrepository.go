package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/mappers"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/db"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// WorkflowRepositoryImpl implements workflow.Repository.
type WorkflowRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewWorkflowRepository(db *gorm.DB, logger logger.Interface) *WorkflowRepositoryImpl {
	return &WorkflowRepositoryImpl{db: db, logger: logger}
}

func (r *WorkflowRepositoryImpl) Create(ctx context.Context, w *workflow.Workflow) error {
	model, err := mappers.WorkflowToModel(w)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create workflow", "workspace_id", model.WorkspaceID, "error", err)
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	if err := w.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set workflow ID: %w", err)
	}
	r.logger.Infow("workflow created", "id", model.ID, "sid", model.SID)
	w.MarkPersisted()
	return nil
}

func (r *WorkflowRepositoryImpl) GetBySID(ctx context.Context, workspaceID uint, sid string) (*workflow.Workflow, error) {
	var model models.WorkflowModel
	if err := db.GetTxFromContext(ctx, r.db).Where("workspace_id = ? AND sid = ?", workspaceID, sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get workflow", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return mappers.WorkflowToEntity(&model)
}

func (r *WorkflowRepositoryImpl) List(ctx context.Context, filter workflow.ListFilter) ([]*workflow.Workflow, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.WorkflowModel{}).Where("workspace_id = ?", filter.WorkspaceID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count workflows", "error", err)
		return nil, 0, fmt.Errorf("failed to count workflows: %w", err)
	}

	query = query.Order("updated_at DESC").Order("id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var modelList []*models.WorkflowModel
	if err := query.Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list workflows", "error", err)
		return nil, 0, fmt.Errorf("failed to list workflows: %w", err)
	}
	out := make([]*workflow.Workflow, 0, len(modelList))
	for _, m := range modelList {
		w, err := mappers.WorkflowToEntity(m)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, w)
	}
	return out, total, nil
}

func (r *WorkflowRepositoryImpl) Update(ctx context.Context, w *workflow.Workflow) error {
	model, err := mappers.WorkflowToModel(w)
	if err != nil {
		return err
	}
	result := db.GetTxFromContext(ctx, r.db).Model(&models.WorkflowModel{}).
		Where("id = ? AND version = ?", model.ID, w.StoredVersion()).
		Updates(map[string]any{
			"name":         model.Name,
			"description":  model.Description,
			"status":       model.Status,
			"nodes":        model.Nodes,
			"edges":        model.Edges,
			"published_at": model.PublishedAt,
			"updated_at":   model.UpdatedAt,
			"version":      model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update workflow", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update workflow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workflow.ErrVersionConflict
	}
	w.MarkPersisted()
	return nil
}

func (r *WorkflowRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.WorkflowModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete workflow", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete workflow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workflow.ErrWorkflowNotFound
	}
	return nil
}

func (r *WorkflowRepositoryImpl) DeleteByWorkspace(ctx context.Context, workspaceID uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Where("workspace_id = ?", workspaceID).Delete(&models.WorkflowModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete workflows", "workspace_id", workspaceID, "error", err)
		return fmt.Errorf("failed to delete workflows: %w", err)
	}
	return nil
}

func (r *WorkflowRepositoryImpl) CountByStatus(ctx context.Context, workspaceIDs []uint) (map[workflow.Status]int64, error) {
	counts := map[workflow.Status]int64{}
	if len(workspaceIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		Status string
		Count  int64
	}
	err := db.GetTxFromContext(ctx, r.db).Model(&models.WorkflowModel{}).
		Select("status, COUNT(*) AS count").
		Where("workspace_id IN ?", workspaceIDs).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to count workflows by status", "error", err)
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}
	for _, row := range rows {
		counts[workflow.Status(row.Status)] = row.Count
	}
	return counts, nil
}

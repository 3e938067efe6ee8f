package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/mappers"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/db"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/mapper"
)

// PermissionGroupRepositoryImpl implements permission.GroupRepository.
type PermissionGroupRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPermissionGroupRepository(db *gorm.DB, logger logger.Interface) *PermissionGroupRepositoryImpl {
	return &PermissionGroupRepositoryImpl{db: db, logger: logger}
}

func (r *PermissionGroupRepositoryImpl) Create(ctx context.Context, g *permission.Group) error {
	model := mappers.PermissionGroupToModel(g)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return permission.ErrGroupNameExists
		}
		r.logger.Errorw("failed to create permission group", "workspace_id", model.WorkspaceID, "error", err)
		return fmt.Errorf("failed to create permission group: %w", err)
	}
	return g.SetID(model.ID)
}

func (r *PermissionGroupRepositoryImpl) first(ctx context.Context, query string, args ...any) (*permission.Group, error) {
	var model models.PermissionGroupModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get permission group", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get permission group: %w", err)
	}
	return mappers.PermissionGroupToEntity(&model), nil
}

func (r *PermissionGroupRepositoryImpl) GetByID(ctx context.Context, id uint) (*permission.Group, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PermissionGroupRepositoryImpl) GetBySID(ctx context.Context, workspaceID uint, sid string) (*permission.Group, error) {
	return r.first(ctx, "workspace_id = ? AND sid = ?", workspaceID, sid)
}

func (r *PermissionGroupRepositoryImpl) ListByWorkspace(ctx context.Context, workspaceID uint) ([]*permission.Group, error) {
	var modelList []*models.PermissionGroupModel
	if err := db.GetTxFromContext(ctx, r.db).Where("workspace_id = ?", workspaceID).Order("name ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list permission groups", "workspace_id", workspaceID, "error", err)
		return nil, fmt.Errorf("failed to list permission groups: %w", err)
	}
	return mapper.MapSlice(modelList, mappers.PermissionGroupToEntity), nil
}

func (r *PermissionGroupRepositoryImpl) Update(ctx context.Context, g *permission.Group) error {
	model := mappers.PermissionGroupToModel(g)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.PermissionGroupModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":        model.Name,
			"description": model.Description,
			"permissions": model.Permissions,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return permission.ErrGroupNameExists
		}
		r.logger.Errorw("failed to update permission group", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update permission group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return permission.ErrGroupNotFound
	}
	return nil
}

func (r *PermissionGroupRepositoryImpl) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("group_id = ?", id).Delete(&models.UserPermissionGroupModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete group links: %w", err)
	}
	result := tx.Delete(&models.PermissionGroupModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete permission group", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete permission group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return permission.ErrGroupNotFound
	}
	return nil
}

func (r *PermissionGroupRepositoryImpl) DeleteByWorkspace(ctx context.Context, workspaceID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	groupIDs := tx.Model(&models.PermissionGroupModel{}).Select("id").Where("workspace_id = ?", workspaceID)
	if err := tx.Where("group_id IN (?)", groupIDs).Delete(&models.UserPermissionGroupModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete group links: %w", err)
	}
	if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.PermissionGroupModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete permission groups", "workspace_id", workspaceID, "error", err)
		return fmt.Errorf("failed to delete permission groups: %w", err)
	}
	return nil
}

// SetMemberGroup writes the link row and mirrors it onto workspace_members.
func (r *PermissionGroupRepositoryImpl) SetMemberGroup(ctx context.Context, memberID uint, groupID *uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	now := biztime.NowUTC()

	if groupID == nil {
		if err := tx.Where("member_id = ?", memberID).Delete(&models.UserPermissionGroupModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear member group: %w", err)
		}
	} else {
		link := &models.UserPermissionGroupModel{MemberID: memberID, GroupID: *groupID, CreatedAt: now}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"group_id", "created_at"}),
		}).Create(link).Error
		if err != nil {
			r.logger.Errorw("failed to set member group", "member_id", memberID, "error", err)
			return fmt.Errorf("failed to set member group: %w", err)
		}
	}

	return tx.Model(&models.WorkspaceMemberModel{}).
		Where("id = ?", memberID).
		Updates(map[string]any{"permission_group_id": groupID, "updated_at": now}).Error
}

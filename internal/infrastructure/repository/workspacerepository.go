package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/mappers"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/constants"
	"github.com/connecthub/connecthub/internal/shared/db"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// WorkspaceRepositoryImpl implements workspace.Repository.
type WorkspaceRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.WorkspaceMapper
	logger logger.Interface
}

func NewWorkspaceRepository(db *gorm.DB, logger logger.Interface) *WorkspaceRepositoryImpl {
	return &WorkspaceRepositoryImpl{db: db, mapper: mappers.NewWorkspaceMapper(), logger: logger}
}

func (r *WorkspaceRepositoryImpl) Create(ctx context.Context, ws *workspace.Workspace) error {
	model, err := r.mapper.ToModel(ws)
	if err != nil {
		return fmt.Errorf("failed to map workspace entity: %w", err)
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create workspace", "error", err)
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	if err := ws.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set workspace ID: %w", err)
	}
	r.logger.Infow("workspace created", "id", model.ID, "sid", model.SID)
	ws.MarkPersisted()
	return nil
}

func (r *WorkspaceRepositoryImpl) GetByID(ctx context.Context, id uint) (*workspace.Workspace, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *WorkspaceRepositoryImpl) GetBySID(ctx context.Context, sid string) (*workspace.Workspace, error) {
	return r.first(ctx, "sid = ?", sid)
}

func (r *WorkspaceRepositoryImpl) first(ctx context.Context, query string, arg any) (*workspace.Workspace, error) {
	var model models.WorkspaceModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get workspace", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *WorkspaceRepositoryImpl) Update(ctx context.Context, ws *workspace.Workspace) error {
	model, err := r.mapper.ToModel(ws)
	if err != nil {
		return fmt.Errorf("failed to map workspace entity: %w", err)
	}
	result := db.GetTxFromContext(ctx, r.db).Model(&models.WorkspaceModel{}).
		Where("id = ? AND version = ?", model.ID, ws.StoredVersion()).
		Updates(map[string]any{
			"name":       model.Name,
			"owner_id":   model.OwnerID,
			"settings":   model.Settings,
			"updated_at": model.UpdatedAt,
			"version":    model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update workspace", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update workspace: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workspace.ErrVersionConflict
	}
	ws.MarkPersisted()
	return nil
}

func (r *WorkspaceRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.WorkspaceModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete workspace", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete workspace: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("workspace not found", fmt.Sprintf("%d", id))
	}
	r.logger.Infow("workspace deleted", "id", id)
	return nil
}

func (r *WorkspaceRepositoryImpl) activeMembership(ctx context.Context, userID uint) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db).Model(&models.WorkspaceModel{}).
		Joins("JOIN "+constants.TableWorkspaceMembers+" m ON m.workspace_id = "+constants.TableWorkspaces+".id").
		Where("m.user_id = ? AND m.status = ?", userID, string(workspace.MemberStatusActive))
}

func (r *WorkspaceRepositoryImpl) ListForUser(ctx context.Context, userID uint) ([]*workspace.Workspace, error) {
	var modelList []*models.WorkspaceModel
	err := r.activeMembership(ctx, userID).
		Order(constants.TableWorkspaces + ".created_at ASC").
		Order(constants.TableWorkspaces + ".id ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list workspaces for user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return r.mapper.ToEntities(modelList)
}

func (r *WorkspaceRepositoryImpl) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.activeMembership(ctx, userID).Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count workspaces for user", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to count workspaces: %w", err)
	}
	return count, nil
}

// WorkspaceMemberRepositoryImpl implements workspace.MemberRepository.
type WorkspaceMemberRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.WorkspaceMapper
	logger logger.Interface
}

func NewWorkspaceMemberRepository(db *gorm.DB, logger logger.Interface) *WorkspaceMemberRepositoryImpl {
	return &WorkspaceMemberRepositoryImpl{db: db, mapper: mappers.NewWorkspaceMapper(), logger: logger}
}

func (r *WorkspaceMemberRepositoryImpl) Create(ctx context.Context, m *workspace.Member) error {
	model := r.mapper.MemberToModel(m)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return workspace.ErrAlreadyMember
		}
		r.logger.Errorw("failed to create workspace member", "workspace_id", model.WorkspaceID, "error", err)
		return fmt.Errorf("failed to create workspace member: %w", err)
	}
	return m.SetID(model.ID)
}

func (r *WorkspaceMemberRepositoryImpl) GetBySID(ctx context.Context, workspaceID uint, sid string) (*workspace.Member, error) {
	return r.first(ctx, "workspace_id = ? AND sid = ?", workspaceID, sid)
}

func (r *WorkspaceMemberRepositoryImpl) GetByUser(ctx context.Context, workspaceID, userID uint) (*workspace.Member, error) {
	return r.first(ctx, "workspace_id = ? AND user_id = ?", workspaceID, userID)
}

func (r *WorkspaceMemberRepositoryImpl) first(ctx context.Context, query string, args ...any) (*workspace.Member, error) {
	var model models.WorkspaceMemberModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get workspace member", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get workspace member: %w", err)
	}
	return r.mapper.MemberToEntity(&model), nil
}

func (r *WorkspaceMemberRepositoryImpl) find(ctx context.Context, query string, args ...any) ([]*workspace.Member, error) {
	var modelList []*models.WorkspaceMemberModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).Order("joined_at ASC").Order("id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list workspace members", "query", query, "error", err)
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}
	return r.mapper.MembersToEntities(modelList), nil
}

func (r *WorkspaceMemberRepositoryImpl) ListByWorkspace(ctx context.Context, workspaceID uint) ([]*workspace.Member, error) {
	return r.find(ctx, "workspace_id = ?", workspaceID)
}

func (r *WorkspaceMemberRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*workspace.Member, error) {
	return r.find(ctx, "user_id = ?", userID)
}

func (r *WorkspaceMemberRepositoryImpl) ListByGroup(ctx context.Context, groupID uint) ([]*workspace.Member, error) {
	return r.find(ctx, "permission_group_id = ?", groupID)
}

func (r *WorkspaceMemberRepositoryImpl) Update(ctx context.Context, m *workspace.Member) error {
	model := r.mapper.MemberToModel(m)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.WorkspaceMemberModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"role":                model.Role,
			"status":              model.Status,
			"permission_group_id": model.PermissionGroupID,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update workspace member", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update workspace member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workspace.ErrMemberNotFound
	}
	return nil
}

func (r *WorkspaceMemberRepositoryImpl) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("member_id = ?", id).Delete(&models.UserPermissionGroupModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete member group link: %w", err)
	}
	result := tx.Delete(&models.WorkspaceMemberModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete workspace member", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete workspace member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workspace.ErrMemberNotFound
	}
	return nil
}

func (r *WorkspaceMemberRepositoryImpl) DeleteByWorkspace(ctx context.Context, workspaceID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	memberIDs := tx.Model(&models.WorkspaceMemberModel{}).Select("id").Where("workspace_id = ?", workspaceID)
	if err := tx.Where("member_id IN (?)", memberIDs).Delete(&models.UserPermissionGroupModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete member group links: %w", err)
	}
	if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.WorkspaceMemberModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete workspace members", "workspace_id", workspaceID, "error", err)
		return fmt.Errorf("failed to delete workspace members: %w", err)
	}
	return nil
}

func (r *WorkspaceMemberRepositoryImpl) ClearGroup(ctx context.Context, groupID uint) error {
	err := db.GetTxFromContext(ctx, r.db).Model(&models.WorkspaceMemberModel{}).
		Where("permission_group_id = ?", groupID).
		Updates(map[string]any{"permission_group_id": nil, "updated_at": biztime.NowUTC()}).Error
	if err != nil {
		r.logger.Errorw("failed to clear permission group from members", "group_id", groupID, "error", err)
		return fmt.Errorf("failed to clear permission group: %w", err)
	}
	return nil
}

// InvitationRepositoryImpl implements workspace.InvitationRepository.
type InvitationRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.WorkspaceMapper
	logger logger.Interface
}

func NewInvitationRepository(db *gorm.DB, logger logger.Interface) *InvitationRepositoryImpl {
	return &InvitationRepositoryImpl{db: db, mapper: mappers.NewWorkspaceMapper(), logger: logger}
}

func (r *InvitationRepositoryImpl) Create(ctx context.Context, inv *workspace.Invitation) error {
	model := r.mapper.InvitationToModel(inv)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create invitation", "workspace_id", model.WorkspaceID, "error", err)
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return inv.SetID(model.ID)
}

func (r *InvitationRepositoryImpl) first(ctx context.Context, query string, args ...any) (*workspace.Invitation, error) {
	var model models.WorkspaceInvitationModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get invitation", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return r.mapper.InvitationToEntity(&model), nil
}

func (r *InvitationRepositoryImpl) GetBySID(ctx context.Context, workspaceID uint, sid string) (*workspace.Invitation, error) {
	return r.first(ctx, "workspace_id = ? AND sid = ?", workspaceID, sid)
}

func (r *InvitationRepositoryImpl) GetByTokenHash(ctx context.Context, tokenHash string) (*workspace.Invitation, error) {
	return r.first(ctx, "token_hash = ?", tokenHash)
}

func (r *InvitationRepositoryImpl) GetPendingByEmail(ctx context.Context, workspaceID uint, email string) (*workspace.Invitation, error) {
	return r.first(ctx, "workspace_id = ? AND email = ? AND status = ?", workspaceID, email, string(workspace.InvitationPending))
}

func (r *InvitationRepositoryImpl) ListPending(ctx context.Context, workspaceID uint) ([]*workspace.Invitation, error) {
	var modelList []*models.WorkspaceInvitationModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("workspace_id = ? AND status = ?", workspaceID, string(workspace.InvitationPending)).
		Order("created_at DESC").Order("id DESC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list invitations", "workspace_id", workspaceID, "error", err)
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	out := make([]*workspace.Invitation, 0, len(modelList))
	for _, m := range modelList {
		out = append(out, r.mapper.InvitationToEntity(m))
	}
	return out, nil
}

func (r *InvitationRepositoryImpl) Update(ctx context.Context, inv *workspace.Invitation) error {
	model := r.mapper.InvitationToModel(inv)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.WorkspaceInvitationModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"status":      model.Status,
			"accepted_at": model.AcceptedAt,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update invitation", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update invitation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workspace.ErrInvitationNotFound
	}
	return nil
}

func (r *InvitationRepositoryImpl) DeleteByWorkspace(ctx context.Context, workspaceID uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Where("workspace_id = ?", workspaceID).Delete(&models.WorkspaceInvitationModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete invitations", "workspace_id", workspaceID, "error", err)
		return fmt.Errorf("failed to delete invitations: %w", err)
	}
	return nil
}

func (r *InvitationRepositoryImpl) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.WorkspaceInvitationModel{}).
		Where("status = ? AND expires_at <= ?", string(workspace.InvitationPending), now).
		Updates(map[string]any{"status": string(workspace.InvitationExpired), "updated_at": now})
	if result.Error != nil {
		r.logger.Errorw("failed to expire invitations", "error", result.Error)
		return 0, fmt.Errorf("failed to expire invitations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

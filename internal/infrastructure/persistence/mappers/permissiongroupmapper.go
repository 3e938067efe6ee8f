package mappers

import (
	"gorm.io/datatypes"

	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
)

func PermissionGroupToEntity(model *models.PermissionGroupModel) *permission.Group {
	if model == nil {
		return nil
	}
	return permission.ReconstructGroup(model.ID, model.SID, model.WorkspaceID, model.Name,
		model.Description, []string(model.Permissions), model.CreatedAt, model.UpdatedAt)
}

func PermissionGroupToModel(entity *permission.Group) *models.PermissionGroupModel {
	if entity == nil {
		return nil
	}
	perms := entity.Permissions()
	if perms == nil {
		perms = []string{}
	}
	return &models.PermissionGroupModel{
		ID:          entity.ID(),
		SID:         entity.SID(),
		WorkspaceID: entity.WorkspaceID(),
		Name:        entity.Name(),
		Description: entity.Description(),
		Permissions: datatypes.JSONSlice[string](perms),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}
}

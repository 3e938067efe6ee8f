package mappers

import (
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/authorization"
	"github.com/connecthub/connecthub/internal/shared/mapper"
)

// UserMapper handles the conversion between user entities and persistence models.
type UserMapper interface {
	ToEntity(model *models.UserModel) (*user.User, error)
	ToModel(entity *user.User) *models.UserModel
	ToEntities(models []*models.UserModel) ([]*user.User, error)
	PreferencesToEntity(model *models.UserPreferenceModel) *user.Preferences
	PreferencesToModel(prefs *user.Preferences) *models.UserPreferenceModel
}

type UserMapperImpl struct{}

func NewUserMapper() UserMapper {
	return &UserMapperImpl{}
}

func (m *UserMapperImpl) ToEntity(model *models.UserModel) (*user.User, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := user.ReconstructUser(
		model.ID,
		model.SID,
		model.Email,
		model.DisplayName,
		model.PasswordHash,
		authorization.UserRole(model.Role),
		user.SubscriptionTier(model.SubscriptionTier),
		user.Status(model.Status),
		model.LastLoginAt,
		model.CreatedAt,
		model.UpdatedAt,
		model.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct user entity: %w", err)
	}
	return entity, nil
}

func (m *UserMapperImpl) ToModel(entity *user.User) *models.UserModel {
	if entity == nil {
		return nil
	}
	return &models.UserModel{
		ID:               entity.ID(),
		SID:              entity.SID(),
		Email:            entity.Email(),
		DisplayName:      entity.DisplayName(),
		PasswordHash:     entity.PasswordHash(),
		Role:             string(entity.Role()),
		SubscriptionTier: string(entity.Tier()),
		Status:           string(entity.Status()),
		LastLoginAt:      entity.LastLoginAt(),
		CreatedAt:        entity.CreatedAt(),
		UpdatedAt:        entity.UpdatedAt(),
		Version:          entity.Version(),
	}
}

func (m *UserMapperImpl) ToEntities(modelList []*models.UserModel) ([]*user.User, error) {
	return mapper.MapSliceErr(modelList, m.ToEntity)
}

func (m *UserMapperImpl) PreferencesToEntity(model *models.UserPreferenceModel) *user.Preferences {
	if model == nil {
		return nil
	}
	return &user.Preferences{
		UserID:              model.UserID,
		Theme:               user.Theme(model.Theme),
		Language:            model.Language,
		Timezone:            model.Timezone,
		EmailNotifications:  model.EmailNotifications,
		DefaultWorkspaceSID: model.DefaultWorkspaceSID,
		UpdatedAt:           model.UpdatedAt,
	}
}

func (m *UserMapperImpl) PreferencesToModel(prefs *user.Preferences) *models.UserPreferenceModel {
	if prefs == nil {
		return nil
	}
	return &models.UserPreferenceModel{
		UserID:              prefs.UserID,
		Theme:               string(prefs.Theme),
		Language:            prefs.Language,
		Timezone:            prefs.Timezone,
		EmailNotifications:  prefs.EmailNotifications,
		DefaultWorkspaceSID: prefs.DefaultWorkspaceSID,
		UpdatedAt:           prefs.UpdatedAt,
	}
}

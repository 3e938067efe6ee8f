package mappers

import (
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/mapper"
)

// WorkspaceMapper converts workspaces, members and invitations.
type WorkspaceMapper interface {
	ToEntity(model *models.WorkspaceModel) (*workspace.Workspace, error)
	ToModel(entity *workspace.Workspace) (*models.WorkspaceModel, error)
	ToEntities(models []*models.WorkspaceModel) ([]*workspace.Workspace, error)
	MemberToEntity(model *models.WorkspaceMemberModel) *workspace.Member
	MemberToModel(entity *workspace.Member) *models.WorkspaceMemberModel
	MembersToEntities(models []*models.WorkspaceMemberModel) []*workspace.Member
	InvitationToEntity(model *models.WorkspaceInvitationModel) *workspace.Invitation
	InvitationToModel(entity *workspace.Invitation) *models.WorkspaceInvitationModel
}

type WorkspaceMapperImpl struct{}

func NewWorkspaceMapper() WorkspaceMapper {
	return &WorkspaceMapperImpl{}
}

func (m *WorkspaceMapperImpl) ToEntity(model *models.WorkspaceModel) (*workspace.Workspace, error) {
	if model == nil {
		return nil, nil
	}
	settings, err := decodeJSON(model.Settings)
	if err != nil {
		return nil, fmt.Errorf("workspace %s settings: %w", model.SID, err)
	}
	return workspace.ReconstructWorkspace(model.ID, model.SID, model.Name, model.OwnerID, settings,
		model.CreatedAt, model.UpdatedAt, model.Version), nil
}

func (m *WorkspaceMapperImpl) ToModel(entity *workspace.Workspace) (*models.WorkspaceModel, error) {
	if entity == nil {
		return nil, nil
	}
	settings, err := encodeJSON(entity.Settings())
	if err != nil {
		return nil, err
	}
	return &models.WorkspaceModel{
		ID:        entity.ID(),
		SID:       entity.SID(),
		Name:      entity.Name(),
		OwnerID:   entity.OwnerID(),
		Settings:  settings,
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
		Version:   entity.Version(),
	}, nil
}

func (m *WorkspaceMapperImpl) ToEntities(modelList []*models.WorkspaceModel) ([]*workspace.Workspace, error) {
	return mapper.MapSliceErr(modelList, m.ToEntity)
}

func (m *WorkspaceMapperImpl) MemberToEntity(model *models.WorkspaceMemberModel) *workspace.Member {
	if model == nil {
		return nil
	}
	return workspace.ReconstructMember(model.ID, model.SID, model.WorkspaceID, model.UserID,
		workspace.Role(model.Role), workspace.MemberStatus(model.Status), model.PermissionGroupID,
		model.JoinedAt, model.UpdatedAt)
}

func (m *WorkspaceMapperImpl) MemberToModel(entity *workspace.Member) *models.WorkspaceMemberModel {
	if entity == nil {
		return nil
	}
	return &models.WorkspaceMemberModel{
		ID:                entity.ID(),
		SID:               entity.SID(),
		WorkspaceID:       entity.WorkspaceID(),
		UserID:            entity.UserID(),
		Role:              entity.Role().String(),
		Status:            string(entity.Status()),
		PermissionGroupID: entity.PermissionGroupID(),
		JoinedAt:          entity.JoinedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}
}

func (m *WorkspaceMapperImpl) MembersToEntities(modelList []*models.WorkspaceMemberModel) []*workspace.Member {
	return mapper.MapSlice(modelList, m.MemberToEntity)
}

func (m *WorkspaceMapperImpl) InvitationToEntity(model *models.WorkspaceInvitationModel) *workspace.Invitation {
	if model == nil {
		return nil
	}
	return workspace.ReconstructInvitation(model.ID, model.SID, model.WorkspaceID, model.Email,
		workspace.Role(model.Role), model.TokenHash, model.InvitedBy,
		workspace.InvitationStatus(model.Status), model.ExpiresAt, model.AcceptedAt,
		model.CreatedAt, model.UpdatedAt)
}

func (m *WorkspaceMapperImpl) InvitationToModel(entity *workspace.Invitation) *models.WorkspaceInvitationModel {
	if entity == nil {
		return nil
	}
	return &models.WorkspaceInvitationModel{
		ID:          entity.ID(),
		SID:         entity.SID(),
		WorkspaceID: entity.WorkspaceID(),
		Email:       entity.Email(),
		Role:        entity.Role().String(),
		TokenHash:   entity.TokenHash(),
		InvitedBy:   entity.InvitedBy(),
		Status:      string(entity.Status()),
		ExpiresAt:   entity.ExpiresAt(),
		AcceptedAt:  entity.AcceptedAt(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}
}

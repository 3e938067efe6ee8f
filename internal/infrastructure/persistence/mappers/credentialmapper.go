package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// SecretSealer seals and opens the secret payload column.
type SecretSealer interface {
	Seal(plaintext []byte) (string, error)
	Open(sealed string) ([]byte, error)
}

// CredentialMapper converts credentials and keeps secrets sealed in the model.
type CredentialMapper struct {
	sealer SecretSealer
}

func NewCredentialMapper(sealer SecretSealer) *CredentialMapper {
	return &CredentialMapper{sealer: sealer}
}

func (m *CredentialMapper) ToEntity(model *models.CredentialModel) (*credential.Credential, error) {
	if model == nil {
		return nil, nil
	}

	plaintext, err := m.sealer.Open(model.SecretPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to open secrets of credential %s: %w", model.SID, err)
	}
	var secrets credential.Secrets
	if err := json.Unmarshal(plaintext, &secrets); err != nil {
		return nil, fmt.Errorf("failed to decode secrets of credential %s: %w", model.SID, err)
	}
	metadata, err := decodeJSON(model.Metadata)
	if err != nil {
		return nil, err
	}

	return credential.ReconstructCredential(credential.State{
		ID:             model.ID,
		SID:            model.SID,
		UserID:         model.UserID,
		Platform:       model.Platform,
		Type:           credential.Type(model.CredentialType),
		Status:         credential.Status(model.Status),
		Secrets:        secrets,
		Scopes:         []string(model.Scopes),
		TokenExpiresAt: model.TokenExpiresAt,
		Metadata:       metadata,
		UsageCount:     model.UsageCount,
		ErrorCount:     model.ErrorCount,
		LastUsedAt:     model.LastUsedAt,
		LastError:      model.LastError,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}), nil
}

func (m *CredentialMapper) ToModel(entity *credential.Credential) (*models.CredentialModel, error) {
	if entity == nil {
		return nil, nil
	}

	s := entity.State()
	plaintext, err := json.Marshal(s.Secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode secrets: %w", err)
	}
	sealed, err := m.sealer.Seal(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to seal secrets: %w", err)
	}
	metadata, err := encodeJSON(s.Metadata)
	if err != nil {
		return nil, err
	}
	scopes := s.Scopes
	if scopes == nil {
		scopes = []string{}
	}

	return &models.CredentialModel{
		ID:             s.ID,
		SID:            s.SID,
		UserID:         s.UserID,
		Platform:       s.Platform,
		CredentialType: string(s.Type),
		Status:         string(s.Status),
		SecretPayload:  sealed,
		KeyHint:        utils.MaskSecret(s.Secrets.Hint()),
		Scopes:         datatypes.JSONSlice[string](scopes),
		TokenExpiresAt: s.TokenExpiresAt,
		Metadata:       metadata,
		UsageCount:     s.UsageCount,
		ErrorCount:     s.ErrorCount,
		LastUsedAt:     s.LastUsedAt,
		LastError:      s.LastError,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}, nil
}

func IntegrationLogToEntity(model *models.IntegrationLogModel) (*credential.IntegrationLog, error) {
	details, err := decodeJSON(model.Details)
	if err != nil {
		return nil, err
	}
	return &credential.IntegrationLog{
		ID:            model.ID,
		UserID:        model.UserID,
		Platform:      model.Platform,
		CredentialSID: model.CredentialSID,
		Action:        model.Action,
		Level:         credential.LogLevel(model.Level),
		Message:       model.Message,
		Details:       details,
		CreatedAt:     model.CreatedAt,
	}, nil
}

func IntegrationLogToModel(entity *credential.IntegrationLog) (*models.IntegrationLogModel, error) {
	details, err := encodeJSON(entity.Details)
	if err != nil {
		return nil, err
	}
	return &models.IntegrationLogModel{
		ID:            entity.ID,
		UserID:        entity.UserID,
		Platform:      entity.Platform,
		CredentialSID: entity.CredentialSID,
		Action:        entity.Action,
		Level:         string(entity.Level),
		Message:       entity.Message,
		Details:       details,
		CreatedAt:     entity.CreatedAt,
	}, nil
}

func UsageStatToEntity(model *models.PlatformUsageStatModel) *credential.UsageStat {
	return &credential.UsageStat{
		UserID:   model.UserID,
		Platform: model.Platform,
		Date:     model.Date,
		APICalls: model.APICalls,
		Errors:   model.Errors,
	}
}

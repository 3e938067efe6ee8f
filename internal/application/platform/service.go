// Package platform serves the integration catalog joined with the caller's
// connection state.
package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// Connection is the caller's credential state for one platform.
type Connection struct {
	CredentialSID string
	Connected     bool
	Status        credential.Status
	Type          credential.Type
	ExpiresAt     *time.Time
	MaskedKey     string
}

type View struct {
	Platform   *platform.Platform
	Connection *Connection
}

type Service struct {
	registry       *platform.Registry
	credentialRepo credential.Repository
	logger         logger.Interface
}

func NewService(registry *platform.Registry, credentialRepo credential.Repository, logger logger.Interface) *Service {
	return &Service{registry: registry, credentialRepo: credentialRepo, logger: logger}
}

// ListPlatforms returns every platform in catalog order. Connection is nil
// for platforms the user has no credential for.
func (s *Service) ListPlatforms(ctx context.Context, userID uint) ([]View, error) {
	creds, err := s.credentialRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Errorw("failed to list credentials", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	byPlatform := make(map[string]*credential.Credential, len(creds))
	for _, c := range creds {
		byPlatform[c.Platform()] = c
	}

	platforms := s.registry.List()
	views := make([]View, 0, len(platforms))
	for _, p := range platforms {
		views = append(views, View{Platform: p, Connection: connectionOf(byPlatform[p.Key])})
	}
	return views, nil
}

func (s *Service) GetPlatform(ctx context.Context, userID uint, key string) (*View, error) {
	p, err := s.registry.Get(key)
	if err != nil {
		if errors.Is(err, platform.ErrPlatformNotFound) {
			return nil, apperrors.NewNotFoundError(err.Error(), key)
		}
		return nil, err
	}
	c, err := s.credentialRepo.GetByPlatform(ctx, userID, p.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &View{Platform: p, Connection: connectionOf(c)}, nil
}

func connectionOf(c *credential.Credential) *Connection {
	if c == nil {
		return nil
	}
	return &Connection{
		CredentialSID: c.SID(),
		Connected:     c.Status() == credential.StatusConnected,
		Status:        c.Status(),
		Type:          c.Type(),
		ExpiresAt:     c.TokenExpiresAt(),
		MaskedKey:     utils.MaskSecret(c.Secrets().Hint()),
	}
}

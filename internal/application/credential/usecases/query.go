package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type ListCredentialsUseCase struct {
	credentialRepo credential.Repository
	logger         logger.Interface
}

func NewListCredentialsUseCase(credentialRepo credential.Repository, logger logger.Interface) *ListCredentialsUseCase {
	return &ListCredentialsUseCase{credentialRepo: credentialRepo, logger: logger}
}

func (uc *ListCredentialsUseCase) Execute(ctx context.Context, userID uint) ([]*credential.Credential, error) {
	creds, err := uc.credentialRepo.ListByUser(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to list credentials", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	return creds, nil
}

type GetCredentialUseCase struct {
	credentialRepo credential.Repository
}

func NewGetCredentialUseCase(credentialRepo credential.Repository) *GetCredentialUseCase {
	return &GetCredentialUseCase{credentialRepo: credentialRepo}
}

func (uc *GetCredentialUseCase) Execute(ctx context.Context, userID uint, sid string) (*credential.Credential, error) {
	return getOwned(ctx, uc.credentialRepo, userID, sid)
}

// getOwned treats another user's credential as missing.
func getOwned(ctx context.Context, repo credential.Repository, userID uint, sid string) (*credential.Credential, error) {
	c, err := repo.GetBySID(ctx, userID, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	if c == nil {
		return nil, mapError(credential.ErrCredentialNotFound)
	}
	return c, nil
}

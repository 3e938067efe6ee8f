package handlers

import (
	"context"

	"github.com/connecthub/connecthub/internal/application/credential/usecases"
	"github.com/connecthub/connecthub/internal/domain/credential"
)

// Use case interfaces for CredentialHandler and IntegrationLogHandler.

type saveCredentialUseCase interface {
	Execute(ctx context.Context, cmd usecases.SaveCredentialCommand) (*credential.Credential, error)
}

type listCredentialsUseCase interface {
	Execute(ctx context.Context, userID uint) ([]*credential.Credential, error)
}

type getCredentialUseCase interface {
	Execute(ctx context.Context, userID uint, sid string) (*credential.Credential, error)
}

type deleteCredentialUseCase interface {
	Execute(ctx context.Context, userID uint, sid string) error
}

type refreshCredentialUseCase interface {
	Execute(ctx context.Context, userID uint, sid string) (*credential.Credential, error)
}

type recordUsageUseCase interface {
	Execute(ctx context.Context, cmd usecases.RecordUsageCommand) (*credential.Credential, error)
}

type initiateOAuthUseCase interface {
	Execute(ctx context.Context, cmd usecases.InitiateOAuthCommand) (*usecases.InitiateOAuthResult, error)
}

type oauthCallbackUseCase interface {
	Execute(ctx context.Context, cmd usecases.OAuthCallbackCommand) *usecases.OAuthCallbackResult
}

type listLogsUseCase interface {
	Execute(ctx context.Context, q usecases.ListLogsQuery) (*usecases.ListLogsResult, error)
}

type logActivityUseCase interface {
	Execute(ctx context.Context, cmd usecases.LogActivityCommand) (*credential.IntegrationLog, error)
}

type usageStatsUseCase interface {
	Execute(ctx context.Context, q usecases.UsageStatsQuery) (*usecases.UsageStatsResult, error)
}

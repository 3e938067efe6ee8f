package handlers

import (
	"context"

	"github.com/connecthub/connecthub/internal/application/user/usecases"
	"github.com/connecthub/connecthub/internal/domain/user"
)

// Use case interfaces for AuthHandler and UserHandler so tests can mock them.

type registerUseCase interface {
	Execute(ctx context.Context, cmd usecases.RegisterCommand) (*usecases.AuthResult, error)
}

type loginUseCase interface {
	Execute(ctx context.Context, cmd usecases.LoginCommand) (*usecases.AuthResult, error)
}

type refreshTokenUseCase interface {
	Execute(ctx context.Context, cmd usecases.RefreshTokenCommand) (*usecases.AuthResult, error)
}

type getProfileUseCase interface {
	Execute(ctx context.Context, userID uint) (*user.User, error)
}

type updateProfileUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateProfileCommand) (*user.User, error)
}

type getPreferencesUseCase interface {
	Execute(ctx context.Context, userID uint) (*user.Preferences, error)
}

type updatePreferencesUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdatePreferencesCommand) (*user.Preferences, error)
}

type listUsersUseCase interface {
	Execute(ctx context.Context, query usecases.ListUsersQuery) (*usecases.ListUsersResult, error)
}

type updateUserAccessUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateUserAccessCommand) (*user.User, error)
}

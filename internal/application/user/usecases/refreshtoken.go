package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/user"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type RefreshTokenCommand struct {
	RefreshToken string
}

type RefreshTokenUseCase struct {
	userRepo   user.Repository
	jwtService JWTService
	logger     logger.Interface
}

func NewRefreshTokenUseCase(userRepo user.Repository, jwtService JWTService, logger logger.Interface) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Execute issues a new pair carrying the user's current role.
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, cmd RefreshTokenCommand) (*AuthResult, error) {
	userSID, err := uc.jwtService.ParseRefresh(cmd.RefreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid or expired refresh token")
	}

	existing, err := uc.userRepo.GetBySID(ctx, userSID)
	if err != nil {
		uc.logger.Errorw("failed to get user", "user_sid", userSID, "error", err)
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}
	if existing == nil {
		return nil, apperrors.NewUnauthorizedError("invalid or expired refresh token")
	}
	if !existing.IsActive() {
		uc.logger.Warnw("refresh rejected for disabled user", "user_sid", userSID)
		return nil, mapUserError(user.ErrUserDisabled)
	}

	tokens, err := uc.jwtService.Generate(existing.SID(), existing.Role())
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return newAuthResult(existing, tokens), nil
}

package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

type LoginCommand struct {
	Email    string
	Password string
}

type LoginUseCase struct {
	userRepo   user.Repository
	hasher     PasswordHasher
	jwtService JWTService
	logger     logger.Interface
}

func NewLoginUseCase(userRepo user.Repository, hasher PasswordHasher, jwtService JWTService, logger logger.Interface) *LoginUseCase {
	return &LoginUseCase{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*AuthResult, error) {
	email, err := user.NormalizeEmail(cmd.Email)
	if err != nil {
		return nil, mapUserError(user.ErrInvalidCredentials)
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		uc.logger.Errorw("failed to get user by email", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	// Unknown email and wrong password are indistinguishable to the caller.
	if existing == nil {
		return nil, mapUserError(user.ErrInvalidCredentials)
	}
	if err := uc.hasher.Verify(cmd.Password, existing.PasswordHash()); err != nil {
		uc.logger.Warnw("failed login attempt", "email", utils.MaskEmail(email))
		return nil, mapUserError(user.ErrInvalidCredentials)
	}
	if !existing.IsActive() {
		return nil, mapUserError(user.ErrUserDisabled)
	}

	tokens, err := uc.jwtService.Generate(existing.SID(), existing.Role())
	if err != nil {
		uc.logger.Errorw("failed to issue tokens", "user_id", existing.ID(), "error", err)
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	existing.RecordLogin()
	if err := uc.userRepo.Update(ctx, existing); err != nil {
		uc.logger.Warnw("failed to record login time", "user_id", existing.ID(), "error", err)
	}

	uc.logger.Infow("user logged in", "user_sid", existing.SID())
	return newAuthResult(existing, tokens), nil
}

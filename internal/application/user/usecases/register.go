package usecases

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/connecthub/connecthub/internal/domain/user"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

type RegisterCommand struct {
	Email       string
	Password    string
	DisplayName string
}

type RegisterUseCase struct {
	userRepo   user.Repository
	hasher     PasswordHasher
	jwtService JWTService
	logger     logger.Interface
}

func NewRegisterUseCase(userRepo user.Repository, hasher PasswordHasher, jwtService JWTService, logger logger.Interface) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (*AuthResult, error) {
	if utf8.RuneCountInString(cmd.Password) < user.MinPasswordLength {
		return nil, mapUserError(user.ErrPasswordTooShort)
	}
	email, err := user.NormalizeEmail(cmd.Email)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, mapUserError(user.ErrEmailAlreadyExists)
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		uc.logger.Errorw("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	newUser, err := user.NewUser(email, cmd.DisplayName, hash)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := uc.userRepo.Create(ctx, newUser); err != nil {
		return nil, mapUserError(err)
	}

	tokens, err := uc.jwtService.Generate(newUser.SID(), newUser.Role())
	if err != nil {
		uc.logger.Errorw("failed to issue tokens", "user_id", newUser.ID(), "error", err)
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	uc.logger.Infow("user registered", "user_sid", newUser.SID(), "email", utils.MaskEmail(email))
	return newAuthResult(newUser, tokens), nil
}

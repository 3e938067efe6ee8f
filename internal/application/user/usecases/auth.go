package usecases

import (
	"errors"

	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/shared/authorization"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type JWTService interface {
	Generate(userSID string, role authorization.UserRole) (*TokenPair, error)
	// ParseRefresh returns the user SID of a valid refresh token.
	ParseRefresh(refreshToken string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// AuthResult is returned by every operation that issues tokens.
type AuthResult struct {
	User         *user.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

func newAuthResult(u *user.User, tokens *TokenPair) *AuthResult {
	return &AuthResult{
		User:         u,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, user.ErrEmailAlreadyExists):
		return apperrors.NewConflictError(err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperrors.NewUnauthorizedError(err.Error())
	case errors.Is(err, user.ErrUserDisabled), errors.Is(err, user.ErrCannotModifySelf):
		return apperrors.NewForbiddenError(err.Error())
	case errors.Is(err, user.ErrInvalidDisplayName),
		errors.Is(err, user.ErrInvalidTier),
		errors.Is(err, user.ErrInvalidStatus),
		errors.Is(err, user.ErrInvalidPreference),
		errors.Is(err, user.ErrPasswordTooShort):
		return apperrors.NewValidationError(err.Error())
	}
	return err
}

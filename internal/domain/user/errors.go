package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrInvalidDisplayName = errors.New("display name must be between 1 and 100 characters")
	ErrInvalidTier        = errors.New("invalid subscription tier")
	ErrInvalidStatus      = errors.New("invalid user status")
	ErrCannotModifySelf   = errors.New("administrators cannot demote or disable themselves")
	ErrInvalidPreference  = errors.New("invalid preference value")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

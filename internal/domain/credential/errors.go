package credential

import "errors"

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrInvalidType        = errors.New("invalid credential type")
	ErrMissingSecret      = errors.New("required secret field is missing")
	ErrPlatformRequired   = errors.New("platform is required")
	ErrNotRefreshable     = errors.New("credential cannot be refreshed")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidAction      = errors.New("action must be between 1 and 64 characters")
	ErrOAuthStateInvalid  = errors.New("oauth state is invalid or has already been used")
	ErrOAuthNotConfigured = errors.New("oauth is not configured for this platform")
)

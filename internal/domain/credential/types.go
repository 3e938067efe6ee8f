package credential

// Type is how a credential authenticates against its platform.
type Type string

const (
	TypeOAuth2      Type = "oauth2"
	TypeAPIKey      Type = "api_key"
	TypeBearerToken Type = "bearer_token"
	TypeBasicAuth   Type = "basic_auth"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeOAuth2, TypeAPIKey, TypeBearerToken, TypeBasicAuth:
		return true
	}
	return false
}

// Status is the integration status shown next to a platform.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusExpired      Status = "expired"
	StatusError        Status = "error"
	StatusPending      Status = "pending"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusConnected, StatusDisconnected, StatusExpired, StatusError, StatusPending:
		return true
	}
	return false
}

type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	}
	return false
}

// Activity actions written to the integration log by the server itself.
const (
	ActionCredentialSaved     = "credential_saved"
	ActionCredentialDeleted   = "credential_deleted"
	ActionCredentialRefreshed = "credential_refreshed"
	ActionCredentialExpired   = "credential_expired"
	ActionRefreshFailed       = "credential_refresh_failed"
	ActionOAuthConnected      = "oauth_connected"
	ActionOAuthFailed         = "oauth_failed"
	ActionAPICall             = "api_call"
)

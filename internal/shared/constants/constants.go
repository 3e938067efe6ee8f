package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Gin context keys set by the auth middleware.
	ContextKeyUserID    = "user_id"
	ContextKeyUserSID   = "user_sid"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"

	// Gin context keys set by the workspace middleware.
	ContextKeyWorkspaceID   = "workspace_id"
	ContextKeyWorkspaceSID  = "workspace_sid"
	ContextKeyWorkspaceRole = "workspace_role"

	TableUsers                = "users"
	TableUserPreferences      = "user_preferences"
	TableWorkspaces           = "workspaces"
	TableWorkspaceMembers     = "workspace_members"
	TableWorkspaceInvitations = "workspace_invitations"
	TablePermissionGroups     = "permission_groups"
	TableUserPermissionGroups = "user_permission_groups"
	TableCredentials          = "credentials"
	TableIntegrationLogs      = "integration_logs"
	TablePlatformUsageStats   = "platform_usage_stats"
	TableWorkflows            = "workflows"

	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgUnauthorized        = "Unauthorized access"
	ErrMsgForbidden           = "Access forbidden"
)

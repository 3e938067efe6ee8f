package http

import (
	"github.com/connecthub/connecthub/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler *handlers.HealthHandler

	// User & Auth
	authHandler      *handlers.AuthHandler
	userHandler      *handlers.UserHandler
	dashboardHandler *handlers.DashboardHandler

	// Integrations
	platformHandler       *handlers.PlatformHandler
	credentialHandler     *handlers.CredentialHandler
	integrationLogHandler *handlers.IntegrationLogHandler

	// Workspaces
	workspaceHandler  *handlers.WorkspaceHandler
	permissionHandler *handlers.PermissionHandler
	workflowHandler   *handlers.WorkflowHandler
}

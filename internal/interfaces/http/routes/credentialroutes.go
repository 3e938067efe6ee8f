package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/interfaces/http/handlers"
	"github.com/connecthub/connecthub/internal/interfaces/http/middleware"
)

// CredentialRouteConfig holds dependencies for the integration catalog,
// stored credentials and integration activity routes.
type CredentialRouteConfig struct {
	PlatformHandler       *handlers.PlatformHandler
	CredentialHandler     *handlers.CredentialHandler
	IntegrationLogHandler *handlers.IntegrationLogHandler
	AuthMiddleware        *middleware.AuthMiddleware
}

// SetupCredentialRoutes configures platform, credential and log routes.
func SetupCredentialRoutes(engine *gin.Engine, cfg *CredentialRouteConfig) {
	api := engine.Group(APIPrefix)

	// The provider redirects the browser here without our bearer token; the
	// state parameter identifies the user.
	api.GET("/credentials/oauth/:platform/callback", cfg.CredentialHandler.OAuthCallback)

	platforms := api.Group("/platforms")
	platforms.Use(cfg.AuthMiddleware.RequireAuth())
	{
		platforms.GET("", cfg.PlatformHandler.ListPlatforms)
		platforms.GET("/:key", cfg.PlatformHandler.GetPlatform)
		platforms.DELETE("/:key/connection", cfg.PlatformHandler.Disconnect)
	}

	credentials := api.Group("/credentials")
	credentials.Use(cfg.AuthMiddleware.RequireAuth())
	{
		credentials.GET("", cfg.CredentialHandler.ListCredentials)
		credentials.POST("", cfg.CredentialHandler.SaveCredential)
		credentials.POST("/usage", cfg.CredentialHandler.RecordUsage)
		credentials.POST("/oauth/:platform/authorize", cfg.CredentialHandler.InitiateOAuth)
		credentials.GET("/:id", cfg.CredentialHandler.GetCredential)
		credentials.DELETE("/:id", cfg.CredentialHandler.DeleteCredential)
		credentials.POST("/:id/refresh", cfg.CredentialHandler.RefreshCredential)
	}

	activity := api.Group("")
	activity.Use(cfg.AuthMiddleware.RequireAuth())
	{
		activity.GET("/integration-logs", cfg.IntegrationLogHandler.ListLogs)
		activity.POST("/integration-logs", cfg.IntegrationLogHandler.LogActivity)
		activity.GET("/usage-stats", cfg.IntegrationLogHandler.UsageStats)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/interfaces/http/handlers"
	"github.com/connecthub/connecthub/internal/interfaces/http/middleware"
	"github.com/connecthub/connecthub/internal/shared/authorization"
)

// AdminRouteConfig holds dependencies for platform-admin routes.
type AdminRouteConfig struct {
	UserHandler    *handlers.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupAdminRoutes configures admin-only routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	adminUsers := engine.Group(APIPrefix + "/admin/users")
	adminUsers.Use(cfg.AuthMiddleware.RequireAuth(), authorization.RequireAdmin())
	{
		adminUsers.GET("", cfg.UserHandler.ListUsers)
		adminUsers.PATCH("/:id", cfg.UserHandler.UpdateUserAccess)
	}
}

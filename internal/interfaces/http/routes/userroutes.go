package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/interfaces/http/handlers"
	"github.com/connecthub/connecthub/internal/interfaces/http/middleware"
)

// UserRouteConfig holds dependencies for the signed-in user's own routes.
type UserRouteConfig struct {
	UserHandler      *handlers.UserHandler
	DashboardHandler *handlers.DashboardHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// SetupUserRoutes configures profile, preference and dashboard routes.
func SetupUserRoutes(engine *gin.Engine, cfg *UserRouteConfig) {
	users := engine.Group(APIPrefix + "/users")
	users.Use(cfg.AuthMiddleware.RequireAuth())
	{
		users.GET("/me", cfg.UserHandler.GetProfile)
		users.PATCH("/me", cfg.UserHandler.UpdateProfile)
		users.GET("/me/preferences", cfg.UserHandler.GetPreferences)
		users.PUT("/me/preferences", cfg.UserHandler.UpdatePreferences)
	}

	engine.GET(APIPrefix+"/dashboard", cfg.AuthMiddleware.RequireAuth(), cfg.DashboardHandler.GetDashboard)
}

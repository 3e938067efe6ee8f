package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/connecthub/connecthub/internal/interfaces/http/middleware"
	"github.com/connecthub/connecthub/internal/interfaces/http/routes"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// SetupRoutes configures global middleware and all HTTP routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(middleware.APIVersion())

	r.engine.GET("/health", r.hdlrs.healthHandler.Check)
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupAuthRoutes(r.engine, &routes.AuthRouteConfig{
		AuthHandler:    r.hdlrs.authHandler,
		AuthMiddleware: r.authMiddleware,
		RateLimiter:    r.authRateLimiter,
	})

	routes.SetupUserRoutes(r.engine, &routes.UserRouteConfig{
		UserHandler:      r.hdlrs.userHandler,
		DashboardHandler: r.hdlrs.dashboardHandler,
		AuthMiddleware:   r.authMiddleware,
	})

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		UserHandler:    r.hdlrs.userHandler,
		AuthMiddleware: r.authMiddleware,
	})

	routes.SetupCredentialRoutes(r.engine, &routes.CredentialRouteConfig{
		PlatformHandler:       r.hdlrs.platformHandler,
		CredentialHandler:     r.hdlrs.credentialHandler,
		IntegrationLogHandler: r.hdlrs.integrationLogHandler,
		AuthMiddleware:        r.authMiddleware,
	})

	routes.SetupWorkspaceRoutes(r.engine, &routes.WorkspaceRouteConfig{
		WorkspaceHandler:     r.hdlrs.workspaceHandler,
		PermissionHandler:    r.hdlrs.permissionHandler,
		AuthMiddleware:       r.authMiddleware,
		PermissionMiddleware: r.permissionMiddleware,
	})

	routes.SetupWorkflowRoutes(r.engine, &routes.WorkflowRouteConfig{
		WorkflowHandler:      r.hdlrs.workflowHandler,
		AuthMiddleware:       r.authMiddleware,
		PermissionMiddleware: r.permissionMiddleware,
	})

	r.engine.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, "route not found")
	})
}

// GetEngine returns the gin engine instance.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server on addr.
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}

// Shutdown stops background services. The HTTP server is shut down by the caller.
func (r *Router) Shutdown(ctx context.Context) {
	r.policyEventBusCancelMu.Lock()
	if r.policyEventBusCancel != nil {
		r.policyEventBusCancel()
		r.policyEventBusCancel = nil
	}
	r.policyEventBusCancelMu.Unlock()

	if r.schedulerManager != nil {
		if err := r.schedulerManager.Stop(); err != nil {
			r.log.Errorw("failed to stop scheduler", "error", err)
		}
	}

	// Stop drains queued events so pending activity log writes land.
	if r.dispatcher != nil {
		done := make(chan struct{})
		go func() {
			if err := r.dispatcher.Stop(); err != nil {
				r.log.Errorw("failed to stop event dispatcher", "error", err)
			}
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			r.log.Warnw("event dispatcher did not drain before shutdown deadline")
		}
	}
}

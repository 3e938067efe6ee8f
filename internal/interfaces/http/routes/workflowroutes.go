package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/interfaces/http/handlers"
	"github.com/connecthub/connecthub/internal/interfaces/http/middleware"
)

// WorkflowRouteConfig holds dependencies for workflow routes.
type WorkflowRouteConfig struct {
	WorkflowHandler      *handlers.WorkflowHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupWorkflowRoutes configures workflow routes nested under a workspace.
func SetupWorkflowRoutes(engine *gin.Engine, cfg *WorkflowRouteConfig) {
	workflows := engine.Group(APIPrefix + "/workspaces/:id/workflows")
	workflows.Use(
		cfg.AuthMiddleware.RequireAuth(),
		cfg.PermissionMiddleware.RequirePermission(permission.WorkflowsView),
	)
	{
		workflows.GET("", cfg.WorkflowHandler.ListWorkflows)
		workflows.POST("", cfg.WorkflowHandler.CreateWorkflow)
		workflows.POST("/import", cfg.WorkflowHandler.ImportWorkflow)
		workflows.GET("/:workflowId", cfg.WorkflowHandler.GetWorkflow)
		workflows.PATCH("/:workflowId", cfg.WorkflowHandler.UpdateWorkflow)
		workflows.DELETE("/:workflowId", cfg.WorkflowHandler.DeleteWorkflow)
		workflows.POST("/:workflowId/publish", cfg.WorkflowHandler.PublishWorkflow)
		workflows.POST("/:workflowId/archive", cfg.WorkflowHandler.ArchiveWorkflow)
		workflows.POST("/:workflowId/layout", cfg.WorkflowHandler.LayoutWorkflow)
		workflows.POST("/:workflowId/test-run", cfg.WorkflowHandler.TestRunWorkflow)
		workflows.GET("/:workflowId/export", cfg.WorkflowHandler.ExportWorkflow)
	}
}

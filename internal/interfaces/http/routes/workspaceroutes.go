package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/interfaces/http/handlers"
	"github.com/connecthub/connecthub/internal/interfaces/http/middleware"
)

// WorkspaceRouteConfig holds dependencies for workspace, membership,
// invitation and permission group routes.
type WorkspaceRouteConfig struct {
	WorkspaceHandler     *handlers.WorkspaceHandler
	PermissionHandler    *handlers.PermissionHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupWorkspaceRoutes configures workspace routes. Use cases re-check
// permissions; the middleware rejects non-members before binding bodies.
func SetupWorkspaceRoutes(engine *gin.Engine, cfg *WorkspaceRouteConfig) {
	api := engine.Group(APIPrefix)
	api.Use(cfg.AuthMiddleware.RequireAuth())

	api.GET("/permissions/catalog", cfg.PermissionHandler.GetCatalog)
	api.POST("/invitations/accept", cfg.WorkspaceHandler.AcceptInvitation)

	workspaces := api.Group("/workspaces")
	{
		workspaces.GET("", cfg.WorkspaceHandler.ListWorkspaces)
		workspaces.POST("", cfg.WorkspaceHandler.CreateWorkspace)
		workspaces.GET("/:id", cfg.WorkspaceHandler.GetWorkspace)
		workspaces.PATCH("/:id", cfg.WorkspaceHandler.UpdateWorkspace)
		workspaces.DELETE("/:id", cfg.WorkspaceHandler.DeleteWorkspace)
		workspaces.POST("/:id/transfer-ownership", cfg.WorkspaceHandler.TransferOwnership)
		workspaces.GET("/:id/permissions/me", cfg.PermissionHandler.GetMyPermissions)
	}

	members := workspaces.Group("/:id/members")
	members.Use(cfg.PermissionMiddleware.RequirePermission(permission.MembersView))
	{
		members.GET("", cfg.WorkspaceHandler.ListMembers)
		members.PATCH("/:memberId", cfg.WorkspaceHandler.UpdateMember)
		members.DELETE("/:memberId", cfg.WorkspaceHandler.RemoveMember)
		members.PUT("/:memberId/group", cfg.PermissionHandler.AssignGroup)
	}

	invitations := workspaces.Group("/:id/invitations")
	invitations.Use(cfg.PermissionMiddleware.RequirePermission(permission.MembersInvite))
	{
		invitations.GET("", cfg.WorkspaceHandler.ListInvitations)
		invitations.POST("", cfg.WorkspaceHandler.InviteMember)
		invitations.DELETE("/:invitationId", cfg.WorkspaceHandler.RevokeInvitation)
	}

	groups := workspaces.Group("/:id/permission-groups")
	{
		groups.GET("", cfg.PermissionHandler.ListGroups)
		groups.POST("", cfg.PermissionMiddleware.RequirePermission(permission.PermissionsManage), cfg.PermissionHandler.CreateGroup)
		groups.PATCH("/:groupId", cfg.PermissionMiddleware.RequirePermission(permission.PermissionsManage), cfg.PermissionHandler.UpdateGroup)
		groups.DELETE("/:groupId", cfg.PermissionMiddleware.RequirePermission(permission.PermissionsManage), cfg.PermissionHandler.DeleteGroup)
	}
}

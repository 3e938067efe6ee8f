package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/application/permission"
	"github.com/connecthub/connecthub/internal/application/permission/dto"
	"github.com/connecthub/connecthub/internal/application/workspace/access"
	wsdto "github.com/connecthub/connecthub/internal/application/workspace/dto"
	domainpermission "github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

type permissionService interface {
	ListCatalog() []domainpermission.CategoryGroup
	GetUserPermissions(ctx context.Context, userID uint, workspaceSID string) (*permission.UserPermissions, error)
	ListGroups(ctx context.Context, actor access.Actor, workspaceSID string) ([]*domainpermission.Group, error)
	CreateGroup(ctx context.Context, cmd permission.CreateGroupCommand) (*domainpermission.Group, error)
	UpdateGroup(ctx context.Context, cmd permission.UpdateGroupCommand) (*domainpermission.Group, error)
	DeleteGroup(ctx context.Context, actor access.Actor, workspaceSID, groupSID string) error
	AssignGroup(ctx context.Context, cmd permission.AssignGroupCommand) (*workspace.Member, error)
}

type PermissionHandler struct {
	permissionService permissionService
	logger            logger.Interface
}

func NewPermissionHandler(permissionService permissionService, logger logger.Interface) *PermissionHandler {
	return &PermissionHandler{
		permissionService: permissionService,
		logger:            logger,
	}
}

// GetCatalog godoc
// @Summary Permission catalog
// @Description All grantable permissions grouped by category
// @Tags permissions
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=[]permission.CategoryGroup}
// @Router /permissions/catalog [get]
func (h *PermissionHandler) GetCatalog(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.permissionService.ListCatalog())
}

// GetMyPermissions godoc
// @Summary Caller's effective permissions
// @Description Role baseline plus permission group grants. Empty for suspended members.
// @Tags permissions
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Success 200 {object} utils.APIResponse{data=dto.UserPermissionsResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /workspaces/{id}/permissions/me [get]
func (h *PermissionHandler) GetMyPermissions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	perms, err := h.permissionService.GetUserPermissions(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", &dto.UserPermissionsResponse{
		WorkspaceID: c.Param("id"),
		Role:        perms.Role.String(),
		Permissions: perms.Permissions,
	})
}

// ListGroups godoc
// @Summary List permission groups
// @Tags permissions
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Success 200 {object} utils.APIResponse{data=[]dto.GroupResponse}
// @Router /workspaces/{id}/permission-groups [get]
func (h *PermissionHandler) ListGroups(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	groups, err := h.permissionService.ListGroups(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", mapList(groups, dto.ToGroupResponse))
}

// CreateGroup godoc
// @Summary Create permission group
// @Tags permissions
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param request body dto.CreateGroupRequest true "Group"
// @Success 201 {object} utils.APIResponse{data=dto.GroupResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /workspaces/{id}/permission-groups [post]
func (h *PermissionHandler) CreateGroup(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	g, err := h.permissionService.CreateGroup(c.Request.Context(), permission.CreateGroupCommand{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		Name:         req.Name,
		Description:  req.Description,
		Permissions:  req.Permissions,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, dto.ToGroupResponse(g), "permission group created")
}

// UpdateGroup godoc
// @Summary Update permission group
// @Tags permissions
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param groupId path string true "Group ID"
// @Param request body dto.UpdateGroupRequest true "Changes"
// @Success 200 {object} utils.APIResponse{data=dto.GroupResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /workspaces/{id}/permission-groups/{groupId} [patch]
func (h *PermissionHandler) UpdateGroup(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	g, err := h.permissionService.UpdateGroup(c.Request.Context(), permission.UpdateGroupCommand{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		GroupSID:     c.Param("groupId"),
		Name:         req.Name,
		Description:  req.Description,
		Permissions:  req.Permissions,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "permission group updated", dto.ToGroupResponse(g))
}

// DeleteGroup godoc
// @Summary Delete permission group
// @Description Members assigned to the group fall back to their role baseline.
// @Tags permissions
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param groupId path string true "Group ID"
// @Success 204
// @Failure 404 {object} utils.APIResponse
// @Router /workspaces/{id}/permission-groups/{groupId} [delete]
func (h *PermissionHandler) DeleteGroup(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.permissionService.DeleteGroup(c.Request.Context(), actor, c.Param("id"), c.Param("groupId")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// AssignGroup godoc
// @Summary Assign a member to a permission group
// @Tags permissions
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param memberId path string true "Member ID"
// @Param request body dto.AssignGroupRequest true "Group, null to clear"
// @Success 200 {object} utils.APIResponse{data=wsdto.MemberResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /workspaces/{id}/members/{memberId}/group [put]
func (h *PermissionHandler) AssignGroup(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.AssignGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.permissionService.AssignGroup(c.Request.Context(), permission.AssignGroupCommand{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		MemberSID:    c.Param("memberId"),
		GroupSID:     req.GroupID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	groupSID := ""
	if req.GroupID != nil {
		groupSID = *req.GroupID
	}
	utils.SuccessResponse(c, http.StatusOK, "permission group assigned", wsdto.ToMemberResponse(m, nil, groupSID))
}

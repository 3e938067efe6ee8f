package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/application/workspace/dto"
	"github.com/connecthub/connecthub/internal/application/workspace/usecases"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// WorkspaceHandler serves workspaces, their members and invitations.
type WorkspaceHandler struct {
	createUseCase   createWorkspaceUseCase
	listUseCase     listWorkspacesUseCase
	getUseCase      getWorkspaceUseCase
	updateUseCase   updateWorkspaceUseCase
	deleteUseCase   deleteWorkspaceUseCase
	transferUseCase transferOwnershipUseCase
	listMembersUC   listMembersUseCase
	updateMemberUC  updateMemberUseCase
	removeMemberUC  removeMemberUseCase
	inviteUseCase   inviteMemberUseCase
	listInvitesUC   listInvitationsUseCase
	revokeInviteUC  revokeInvitationUseCase
	acceptInviteUC  acceptInvitationUseCase
	logger          logger.Interface
}

// WorkspaceUseCases groups the use cases WorkspaceHandler depends on.
type WorkspaceUseCases struct {
	Create            createWorkspaceUseCase
	List              listWorkspacesUseCase
	Get               getWorkspaceUseCase
	Update            updateWorkspaceUseCase
	Delete            deleteWorkspaceUseCase
	TransferOwnership transferOwnershipUseCase
	ListMembers       listMembersUseCase
	UpdateMember      updateMemberUseCase
	RemoveMember      removeMemberUseCase
	Invite            inviteMemberUseCase
	ListInvitations   listInvitationsUseCase
	RevokeInvitation  revokeInvitationUseCase
	AcceptInvitation  acceptInvitationUseCase
}

func NewWorkspaceHandler(ucs WorkspaceUseCases, logger logger.Interface) *WorkspaceHandler {
	return &WorkspaceHandler{
		createUseCase:   ucs.Create,
		listUseCase:     ucs.List,
		getUseCase:      ucs.Get,
		updateUseCase:   ucs.Update,
		deleteUseCase:   ucs.Delete,
		transferUseCase: ucs.TransferOwnership,
		listMembersUC:   ucs.ListMembers,
		updateMemberUC:  ucs.UpdateMember,
		removeMemberUC:  ucs.RemoveMember,
		inviteUseCase:   ucs.Invite,
		listInvitesUC:   ucs.ListInvitations,
		revokeInviteUC:  ucs.RevokeInvitation,
		acceptInviteUC:  ucs.AcceptInvitation,
		logger:          logger,
	}
}

func toWorkspaceResponse(r *usecases.WorkspaceResult) *dto.WorkspaceResponse {
	return dto.ToWorkspaceResponse(r.Workspace, r.Role)
}

// ListWorkspaces handles GET /workspaces
// @Summary List the caller's workspaces
// @Tags Workspaces
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=[]dto.WorkspaceResponse}
// @Router /workspaces [get]
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	results, err := h.listUseCase.Execute(c.Request.Context(), actor.ID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", mapList(results, toWorkspaceResponse))
}

// CreateWorkspace handles POST /workspaces
// @Summary Create workspace
// @Tags Workspaces
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.CreateWorkspaceRequest true "Workspace"
// @Success 201 {object} utils.APIResponse{data=dto.WorkspaceResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /workspaces [post]
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.CreateWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), usecases.CreateWorkspaceCommand{
		UserID:   actor.ID,
		UserSID:  actor.SID,
		Name:     req.Name,
		Settings: req.Settings,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, toWorkspaceResponse(result), "workspace created")
}

// GetWorkspace handles GET /workspaces/:id
// @Summary Get workspace
// @Tags Workspaces
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Success 200 {object} utils.APIResponse{data=dto.WorkspaceResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /workspaces/{id} [get]
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	result, err := h.getUseCase.Execute(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toWorkspaceResponse(result))
}

// UpdateWorkspace handles PATCH /workspaces/:id
// @Summary Update workspace
// @Tags Workspaces
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param request body dto.UpdateWorkspaceRequest true "Changes"
// @Success 200 {object} utils.APIResponse{data=dto.WorkspaceResponse}
// @Failure 409 {object} utils.APIResponse
// @Router /workspaces/{id} [patch]
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), usecases.UpdateWorkspaceCommand{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		Name:         req.Name,
		Settings:     req.Settings,
		Version:      req.Version,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "workspace updated", toWorkspaceResponse(result))
}

// DeleteWorkspace handles DELETE /workspaces/:id
// @Summary Delete workspace (owner only)
// @Tags Workspaces
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Success 204
// @Failure 403 {object} utils.APIResponse
// @Router /workspaces/{id} [delete]
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.deleteUseCase.Execute(c.Request.Context(), actor.ID, c.Param("id")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// TransferOwnership handles POST /workspaces/:id/transfer-ownership
// @Summary Transfer ownership to another member
// @Tags Workspaces
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param request body dto.TransferOwnershipRequest true "New owner"
// @Success 200 {object} utils.APIResponse{data=dto.WorkspaceResponse}
// @Failure 403 {object} utils.APIResponse
// @Router /workspaces/{id}/transfer-ownership [post]
func (h *WorkspaceHandler) TransferOwnership(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.TransferOwnershipRequest
	if !bindJSON(c, &req) {
		return
	}

	ws, err := h.transferUseCase.Execute(c.Request.Context(), actor.ID, c.Param("id"), req.MemberID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "ownership transferred", dto.ToWorkspaceResponse(ws, workspace.RoleAdmin))
}

// ListMembers handles GET /workspaces/:id/members
// @Summary List members
// @Tags Workspaces
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Success 200 {object} utils.APIResponse{data=[]dto.MemberResponse}
// @Router /workspaces/{id}/members [get]
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	views, err := h.listMembersUC.Execute(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	resp := make([]*dto.MemberResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, dto.ToMemberResponse(v.Member, v.User, v.GroupSID))
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// UpdateMember handles PATCH /workspaces/:id/members/:memberId
// @Summary Change a member's role or status
// @Tags Workspaces
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param memberId path string true "Member ID"
// @Param request body dto.UpdateMemberRequest true "Changes"
// @Success 200 {object} utils.APIResponse{data=dto.MemberResponse}
// @Failure 403 {object} utils.APIResponse
// @Router /workspaces/{id}/members/{memberId} [patch]
func (h *WorkspaceHandler) UpdateMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.updateMemberUC.Execute(c.Request.Context(), usecases.UpdateMemberCommand{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		MemberSID:    c.Param("memberId"),
		Role:         req.Role,
		Status:       req.Status,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "member updated", dto.ToMemberResponse(m, nil, ""))
}

// RemoveMember handles DELETE /workspaces/:id/members/:memberId
// @Summary Remove a member
// @Tags Workspaces
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param memberId path string true "Member ID"
// @Success 204
// @Failure 403 {object} utils.APIResponse
// @Router /workspaces/{id}/members/{memberId} [delete]
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.removeMemberUC.Execute(c.Request.Context(), actor, c.Param("id"), c.Param("memberId")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// ListInvitations handles GET /workspaces/:id/invitations
// @Summary List pending invitations
// @Tags Workspaces
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Success 200 {object} utils.APIResponse{data=[]dto.InvitationResponse}
// @Router /workspaces/{id}/invitations [get]
func (h *WorkspaceHandler) ListInvitations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	invs, err := h.listInvitesUC.Execute(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", mapList(invs, dto.ToInvitationResponse))
}

// InviteMember handles POST /workspaces/:id/invitations
// @Summary Invite someone by email
// @Tags Workspaces
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param request body dto.InviteMemberRequest true "Invitation"
// @Success 201 {object} utils.APIResponse{data=dto.InvitationResponse}
// @Failure 409 {object} utils.APIResponse
// @Router /workspaces/{id}/invitations [post]
func (h *WorkspaceHandler) InviteMember(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.InviteMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.inviteUseCase.Execute(c.Request.Context(), usecases.InviteMemberCommand{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		Email:        req.Email,
		Role:         req.Role,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := dto.ToInvitationResponse(result.Invitation)
	resp.Token = result.Token
	resp.EmailSent = result.EmailSent
	utils.CreatedResponse(c, resp, "invitation created")
}

// RevokeInvitation handles DELETE /workspaces/:id/invitations/:invitationId
// @Summary Revoke a pending invitation
// @Tags Workspaces
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param invitationId path string true "Invitation ID"
// @Success 204
// @Failure 404 {object} utils.APIResponse
// @Router /workspaces/{id}/invitations/{invitationId} [delete]
func (h *WorkspaceHandler) RevokeInvitation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.revokeInviteUC.Execute(c.Request.Context(), actor, c.Param("id"), c.Param("invitationId")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// AcceptInvitation handles POST /invitations/accept
// @Summary Accept an invitation
// @Tags Workspaces
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.AcceptInvitationRequest true "Token from the invitation"
// @Success 200 {object} utils.APIResponse{data=dto.WorkspaceResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /invitations/accept [post]
func (h *WorkspaceHandler) AcceptInvitation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.AcceptInvitationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.acceptInviteUC.Execute(c.Request.Context(), usecases.AcceptInvitationCommand{
		UserID: actor.ID,
		Token:  req.Token,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "invitation accepted", toWorkspaceResponse(result))
}

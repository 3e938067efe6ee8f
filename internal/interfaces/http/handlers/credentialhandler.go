package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/application/credential/dto"
	"github.com/connecthub/connecthub/internal/application/credential/usecases"
	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// CredentialHandler syncs platform credentials and runs the OAuth connect
// flow. Responses never carry secrets.
type CredentialHandler struct {
	saveUseCase          saveCredentialUseCase
	listUseCase          listCredentialsUseCase
	getUseCase           getCredentialUseCase
	deleteUseCase        deleteCredentialUseCase
	refreshUseCase       refreshCredentialUseCase
	recordUsageUseCase   recordUsageUseCase
	initiateOAuthUseCase initiateOAuthUseCase
	callbackUseCase      oauthCallbackUseCase
	logger               logger.Interface
}

func NewCredentialHandler(
	saveUC saveCredentialUseCase,
	listUC listCredentialsUseCase,
	getUC getCredentialUseCase,
	deleteUC deleteCredentialUseCase,
	refreshUC refreshCredentialUseCase,
	recordUsageUC recordUsageUseCase,
	initiateOAuthUC initiateOAuthUseCase,
	callbackUC oauthCallbackUseCase,
	logger logger.Interface,
) *CredentialHandler {
	return &CredentialHandler{
		saveUseCase:          saveUC,
		listUseCase:          listUC,
		getUseCase:           getUC,
		deleteUseCase:        deleteUC,
		refreshUseCase:       refreshUC,
		recordUsageUseCase:   recordUsageUC,
		initiateOAuthUseCase: initiateOAuthUC,
		callbackUseCase:      callbackUC,
		logger:               logger,
	}
}

// ListCredentials handles GET /credentials
// @Summary List credentials
// @Tags Credentials
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=[]dto.CredentialResponse}
// @Router /credentials [get]
func (h *CredentialHandler) ListCredentials(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	creds, err := h.listUseCase.Execute(c.Request.Context(), actor.ID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", mapList(creds, dto.ToCredentialResponse))
}

// SaveCredential handles POST /credentials. Saving again for the same
// platform replaces the stored credential.
// @Summary Save credential
// @Tags Credentials
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.SaveCredentialRequest true "Credential"
// @Success 200 {object} utils.APIResponse{data=dto.CredentialResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /credentials [post]
func (h *CredentialHandler) SaveCredential(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.SaveCredentialRequest
	if !bindJSON(c, &req) {
		return
	}

	saved, err := h.saveUseCase.Execute(c.Request.Context(), usecases.SaveCredentialCommand{
		UserID:    actor.ID,
		Platform:  req.Platform,
		Type:      credential.Type(req.CredentialType),
		Secrets:   req.Secrets(),
		Scopes:    req.Scopes,
		Metadata:  req.Metadata,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		h.logger.Warnw("failed to save credential", "user_sid", actor.SID, "platform", req.Platform, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "credential saved", dto.ToCredentialResponse(saved))
}

// GetCredential handles GET /credentials/:id
// @Summary Get credential
// @Tags Credentials
// @Produce json
// @Security Bearer
// @Param id path string true "Credential ID"
// @Success 200 {object} utils.APIResponse{data=dto.CredentialResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /credentials/{id} [get]
func (h *CredentialHandler) GetCredential(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	cred, err := h.getUseCase.Execute(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.ToCredentialResponse(cred))
}

// DeleteCredential handles DELETE /credentials/:id
// @Summary Delete credential
// @Tags Credentials
// @Security Bearer
// @Param id path string true "Credential ID"
// @Success 204
// @Failure 404 {object} utils.APIResponse
// @Router /credentials/{id} [delete]
func (h *CredentialHandler) DeleteCredential(c *gin.Context) {
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

// RefreshCredential handles POST /credentials/:id/refresh
// @Summary Refresh an OAuth credential
// @Tags Credentials
// @Produce json
// @Security Bearer
// @Param id path string true "Credential ID"
// @Success 200 {object} utils.APIResponse{data=dto.CredentialResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /credentials/{id}/refresh [post]
func (h *CredentialHandler) RefreshCredential(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	cred, err := h.refreshUseCase.Execute(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "credential refreshed", dto.ToCredentialResponse(cred))
}

// RecordUsage handles POST /credentials/usage
// @Summary Record an API call made with a credential
// @Tags Credentials
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.RecordUsageRequest true "Call outcome"
// @Success 200 {object} utils.APIResponse{data=dto.CredentialResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /credentials/usage [post]
func (h *CredentialHandler) RecordUsage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.RecordUsageRequest
	if !bindJSON(c, &req) {
		return
	}

	cred, err := h.recordUsageUseCase.Execute(c.Request.Context(), usecases.RecordUsageCommand{
		UserID:       actor.ID,
		Platform:     req.Platform,
		Success:      *req.Success,
		ErrorMessage: req.ErrorMessage,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.ToCredentialResponse(cred))
}

// InitiateOAuth handles POST /credentials/oauth/:platform/authorize
// @Summary Start the OAuth connect flow
// @Tags Credentials
// @Accept json
// @Produce json
// @Security Bearer
// @Param platform path string true "Platform key"
// @Param request body dto.InitiateOAuthRequest false "Where the dashboard returns afterwards"
// @Success 200 {object} utils.APIResponse{data=dto.OAuthAuthorizeResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /credentials/oauth/{platform}/authorize [post]
func (h *CredentialHandler) InitiateOAuth(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.InitiateOAuthRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	result, err := h.initiateOAuthUseCase.Execute(c.Request.Context(), usecases.InitiateOAuthCommand{
		UserSID:   actor.SID,
		Platform:  c.Param("platform"),
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", &dto.OAuthAuthorizeResponse{
		AuthorizationURL: result.AuthorizationURL,
		State:            result.State,
	})
}

// OAuthCallback handles GET /credentials/oauth/:platform/callback. The
// platform redirects the browser here, so the answer is always a redirect
// back to the dashboard carrying the outcome.
// @Summary OAuth callback
// @Tags Credentials
// @Param platform path string true "Platform key"
// @Param state query string true "State issued by authorize"
// @Param code query string false "Authorization code"
// @Param error query string false "Error reported by the platform"
// @Success 302
// @Router /credentials/oauth/{platform}/callback [get]
func (h *CredentialHandler) OAuthCallback(c *gin.Context) {
	var req dto.OAuthCallbackRequest
	_ = c.ShouldBindQuery(&req)

	result := h.callbackUseCase.Execute(c.Request.Context(), usecases.OAuthCallbackCommand{
		Platform: c.Param("platform"),
		State:    req.State,
		Code:     req.Code,
		Error:    req.Error,
	})
	if result.Failure != nil {
		h.logger.Warnw("oauth callback failed", "platform", c.Param("platform"), "error", result.Failure)
	}
	c.Redirect(http.StatusFound, result.RedirectURL)
}

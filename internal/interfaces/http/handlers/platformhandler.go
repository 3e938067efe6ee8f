package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	platformApp "github.com/connecthub/connecthub/internal/application/platform"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

type platformService interface {
	ListPlatforms(ctx context.Context, userID uint) ([]platformApp.View, error)
	GetPlatform(ctx context.Context, userID uint, key string) (*platformApp.View, error)
}

type platformDisconnecter interface {
	DisconnectPlatform(ctx context.Context, userID uint, platformKey string) error
}

// PlatformHandler serves the integration catalog joined with the caller's
// connection state.
type PlatformHandler struct {
	service      platformService
	disconnecter platformDisconnecter
	logger       logger.Interface
}

func NewPlatformHandler(service platformService, disconnecter platformDisconnecter, logger logger.Interface) *PlatformHandler {
	return &PlatformHandler{
		service:      service,
		disconnecter: disconnecter,
		logger:       logger,
	}
}

// ListPlatforms handles GET /platforms
// @Summary List platforms
// @Tags Platforms
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=[]platform.PlatformResponse}
// @Router /platforms [get]
func (h *PlatformHandler) ListPlatforms(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	views, err := h.service.ListPlatforms(c.Request.Context(), actor.ID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", mapList(views, platformApp.ToPlatformResponse))
}

// GetPlatform handles GET /platforms/:key
// @Summary Get platform
// @Tags Platforms
// @Produce json
// @Security Bearer
// @Param key path string true "Platform key"
// @Success 200 {object} utils.APIResponse{data=platform.PlatformResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /platforms/{key} [get]
func (h *PlatformHandler) GetPlatform(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	view, err := h.service.GetPlatform(c.Request.Context(), actor.ID, c.Param("key"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", platformApp.ToPlatformResponse(*view))
}

// Disconnect handles DELETE /platforms/:key/connection
// @Summary Disconnect platform
// @Description Deletes the caller's stored credential for the platform.
// @Tags Platforms
// @Security Bearer
// @Param key path string true "Platform key"
// @Success 204
// @Failure 404 {object} utils.APIResponse
// @Router /platforms/{key}/connection [delete]
func (h *PlatformHandler) Disconnect(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.disconnecter.DisconnectPlatform(c.Request.Context(), actor.ID, c.Param("key")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

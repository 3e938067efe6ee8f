package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/application/dashboard"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

type dashboardService interface {
	GetDashboard(ctx context.Context, userID uint, now time.Time) (*dashboard.Dashboard, error)
}

// DashboardHandler handles user dashboard HTTP requests
type DashboardHandler struct {
	service dashboardService
	logger  logger.Interface
}

func NewDashboardHandler(service dashboardService, logger logger.Interface) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// GetDashboard handles GET /dashboard
// @Summary Dashboard summary
// @Tags Dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dashboard.Dashboard}
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := h.service.GetDashboard(c.Request.Context(), actor.ID, biztime.NowUTC())
	if err != nil {
		h.logger.Errorw("failed to get dashboard", "user_sid", actor.SID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

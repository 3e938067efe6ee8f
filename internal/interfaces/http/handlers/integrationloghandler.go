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

type IntegrationLogHandler struct {
	listLogsUseCase    listLogsUseCase
	logActivityUseCase logActivityUseCase
	usageStatsUseCase  usageStatsUseCase
	logger             logger.Interface
}

func NewIntegrationLogHandler(
	listLogsUC listLogsUseCase,
	logActivityUC logActivityUseCase,
	usageStatsUC usageStatsUseCase,
	logger logger.Interface,
) *IntegrationLogHandler {
	return &IntegrationLogHandler{
		listLogsUseCase:    listLogsUC,
		logActivityUseCase: logActivityUC,
		usageStatsUseCase:  usageStatsUC,
		logger:             logger,
	}
}

// ListLogs handles GET /integration-logs
// @Summary List integration logs
// @Tags Integration Logs
// @Produce json
// @Security Bearer
// @Param platform query string false "Platform key"
// @Param level query string false "debug, info, warning or error"
// @Param action query string false "Action name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Router /integration-logs [get]
func (h *IntegrationLogHandler) ListLogs(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ListLogsRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.listLogsUseCase.Execute(c.Request.Context(), usecases.ListLogsQuery{
		UserID:   actor.ID,
		Platform: req.Platform,
		Level:    req.Level,
		Action:   req.Action,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, mapList(result.Logs, dto.ToIntegrationLogResponse), result.Total, result.Page, result.PageSize)
}

// LogActivity handles POST /integration-logs
// @Summary Append an activity entry
// @Tags Integration Logs
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body dto.LogActivityRequest true "Entry"
// @Success 201 {object} utils.APIResponse{data=dto.IntegrationLogResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /integration-logs [post]
func (h *IntegrationLogHandler) LogActivity(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.LogActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.logActivityUseCase.Execute(c.Request.Context(), usecases.LogActivityCommand{
		UserID:   actor.ID,
		Platform: req.Platform,
		Action:   req.Action,
		Level:    credential.LogLevel(req.Level),
		Message:  req.Message,
		Details:  req.Details,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, dto.ToIntegrationLogResponse(entry), "activity logged")
}

// UsageStats handles GET /usage-stats
// @Summary Daily API usage
// @Tags Integration Logs
// @Produce json
// @Security Bearer
// @Param platform query string false "Platform key"
// @Param days query int false "Window in days (default 30, max 365)"
// @Success 200 {object} utils.APIResponse{data=dto.UsageStatsResponse}
// @Router /usage-stats [get]
func (h *IntegrationLogHandler) UsageStats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UsageStatsRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.usageStatsUseCase.Execute(c.Request.Context(), usecases.UsageStatsQuery{
		UserID:   actor.ID,
		Platform: req.Platform,
		Days:     req.Days,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.ToUsageStatsResponse(result.Days, result.TotalCalls, result.TotalErrors, result.Stats))
}

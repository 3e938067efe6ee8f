package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connecthub/connecthub/internal/application/workflow/dto"
	"github.com/connecthub/connecthub/internal/application/workflow/usecases"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/services/markdown"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// WorkflowHandler serves the workflow designer. Every route is scoped to the
// workspace in the :id path parameter.
type WorkflowHandler struct {
	createUseCase     createWorkflowUseCase
	getUseCase        getWorkflowUseCase
	listUseCase       listWorkflowsUseCase
	updateUseCase     updateWorkflowUseCase
	deleteUseCase     deleteWorkflowUseCase
	transitionUseCase transitionWorkflowUseCase
	testRunUseCase    testRunWorkflowUseCase
	exportUseCase     exportWorkflowUseCase
	importUseCase     importWorkflowUseCase
	markdown          markdown.Renderer
	logger            logger.Interface
}

// WorkflowUseCases groups the use cases WorkflowHandler depends on.
type WorkflowUseCases struct {
	Create     createWorkflowUseCase
	Get        getWorkflowUseCase
	List       listWorkflowsUseCase
	Update     updateWorkflowUseCase
	Delete     deleteWorkflowUseCase
	Transition transitionWorkflowUseCase
	TestRun    testRunWorkflowUseCase
	Export     exportWorkflowUseCase
	Import     importWorkflowUseCase
}

func NewWorkflowHandler(ucs WorkflowUseCases, md markdown.Renderer, logger logger.Interface) *WorkflowHandler {
	return &WorkflowHandler{
		createUseCase:     ucs.Create,
		getUseCase:        ucs.Get,
		listUseCase:       ucs.List,
		updateUseCase:     ucs.Update,
		deleteUseCase:     ucs.Delete,
		transitionUseCase: ucs.Transition,
		testRunUseCase:    ucs.TestRun,
		exportUseCase:     ucs.Export,
		importUseCase:     ucs.Import,
		markdown:          md,
		logger:            logger,
	}
}

// ListWorkflows handles GET /workspaces/:id/workflows
// @Summary List workflows
// @Tags Workflows
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param status query string false "draft, published or archived"
// @Param search query string false "Name contains"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Router /workspaces/{id}/workflows [get]
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ListWorkflowsRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), usecases.ListWorkflowsQuery{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		Status:       req.Status,
		Search:       req.Search,
		Page:         req.Page,
		PageSize:     req.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, mapList(result.Workflows, dto.ToWorkflowSummary), result.Total, result.Page, result.PageSize)
}

// CreateWorkflow handles POST /workspaces/:id/workflows
// @Summary Create workflow
// @Tags Workflows
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param request body dto.CreateWorkflowRequest true "Workflow"
// @Success 201 {object} utils.APIResponse{data=dto.WorkflowResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /workspaces/{id}/workflows [post]
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.CreateWorkflowRequest
	if !bindJSON(c, &req) {
		return
	}

	w, err := h.createUseCase.Execute(c.Request.Context(), usecases.CreateWorkflowCommand{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		Name:         req.Name,
		Description:  req.Description,
		Graph:        workflow.Graph{Nodes: req.Nodes, Edges: req.Edges},
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, dto.ToWorkflowResponse(w, h.markdown), "workflow created")
}

// ImportWorkflow handles POST /workspaces/:id/workflows/import. The body is
// the raw JSON or YAML document.
// @Summary Import workflow document
// @Tags Workflows
// @Accept json
// @Accept application/yaml
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param name query string false "Overrides the document name"
// @Success 201 {object} utils.APIResponse{data=dto.WorkflowResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 413 {object} utils.APIResponse
// @Router /workspaces/{id}/workflows/import [post]
func (h *WorkflowHandler) ImportWorkflow(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ImportWorkflowRequest
	if !bindQuery(c, &req) {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, usecases.MaxDocumentSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "workflow document is too large")
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	w, err := h.importUseCase.Execute(c.Request.Context(), usecases.ImportWorkflowCommand{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		Data:         data,
		Name:         req.Name,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, dto.ToWorkflowResponse(w, h.markdown), "workflow imported")
}

// GetWorkflow handles GET /workspaces/:id/workflows/:workflowId
// @Summary Get workflow
// @Tags Workflows
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param workflowId path string true "Workflow ID"
// @Success 200 {object} utils.APIResponse{data=dto.WorkflowResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /workspaces/{id}/workflows/{workflowId} [get]
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	w, err := h.getUseCase.Execute(c.Request.Context(), actor, c.Param("id"), c.Param("workflowId"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.ToWorkflowResponse(w, h.markdown))
}

// UpdateWorkflow handles PATCH /workspaces/:id/workflows/:workflowId
// @Summary Update workflow
// @Description Editing the graph of a published workflow returns it to draft.
// @Tags Workflows
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param workflowId path string true "Workflow ID"
// @Param request body dto.UpdateWorkflowRequest true "Changes"
// @Success 200 {object} utils.APIResponse{data=dto.WorkflowResponse}
// @Failure 409 {object} utils.APIResponse
// @Router /workspaces/{id}/workflows/{workflowId} [patch]
func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateWorkflowRequest
	if !bindJSON(c, &req) {
		return
	}

	w, err := h.updateUseCase.Execute(c.Request.Context(), usecases.UpdateWorkflowCommand{
		Actor:        actor,
		WorkspaceSID: c.Param("id"),
		WorkflowSID:  c.Param("workflowId"),
		Name:         req.Name,
		Description:  req.Description,
		Graph:        req.Graph(),
		Version:      req.Version,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "workflow updated", dto.ToWorkflowResponse(w, h.markdown))
}

// DeleteWorkflow handles DELETE /workspaces/:id/workflows/:workflowId
// @Summary Delete workflow
// @Tags Workflows
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param workflowId path string true "Workflow ID"
// @Success 204
// @Failure 404 {object} utils.APIResponse
// @Router /workspaces/{id}/workflows/{workflowId} [delete]
func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.deleteUseCase.Execute(c.Request.Context(), actor, c.Param("id"), c.Param("workflowId")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// PublishWorkflow handles POST /workspaces/:id/workflows/:workflowId/publish
// @Summary Publish workflow
// @Tags Workflows
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param workflowId path string true "Workflow ID"
// @Success 200 {object} utils.APIResponse{data=dto.WorkflowResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /workspaces/{id}/workflows/{workflowId}/publish [post]
func (h *WorkflowHandler) PublishWorkflow(c *gin.Context) {
	h.transition(c, usecases.TransitionPublish, "workflow published")
}

// ArchiveWorkflow handles POST /workspaces/:id/workflows/:workflowId/archive
// @Summary Archive workflow
// @Tags Workflows
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param workflowId path string true "Workflow ID"
// @Success 200 {object} utils.APIResponse{data=dto.WorkflowResponse}
// @Router /workspaces/{id}/workflows/{workflowId}/archive [post]
func (h *WorkflowHandler) ArchiveWorkflow(c *gin.Context) {
	h.transition(c, usecases.TransitionArchive, "workflow archived")
}

// LayoutWorkflow handles POST /workspaces/:id/workflows/:workflowId/layout
// @Summary Auto-layout the workflow graph
// @Tags Workflows
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param workflowId path string true "Workflow ID"
// @Success 200 {object} utils.APIResponse{data=dto.WorkflowResponse}
// @Router /workspaces/{id}/workflows/{workflowId}/layout [post]
func (h *WorkflowHandler) LayoutWorkflow(c *gin.Context) {
	h.transition(c, usecases.TransitionLayout, "workflow laid out")
}

func (h *WorkflowHandler) transition(c *gin.Context, t usecases.Transition, msg string) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	w, err := h.transitionUseCase.Execute(c.Request.Context(), actor, c.Param("id"), c.Param("workflowId"), t)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, msg, dto.ToWorkflowResponse(w, h.markdown))
}

// TestRunWorkflow handles POST /workspaces/:id/workflows/:workflowId/test-run
// @Summary Dry-run the workflow
// @Description Walks the graph in execution order without calling any platform.
// @Tags Workflows
// @Produce json
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param workflowId path string true "Workflow ID"
// @Success 200 {object} utils.APIResponse{data=workflow.DryRunReport}
// @Router /workspaces/{id}/workflows/{workflowId}/test-run [post]
func (h *WorkflowHandler) TestRunWorkflow(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	report, err := h.testRunUseCase.Execute(c.Request.Context(), actor, c.Param("id"), c.Param("workflowId"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", report)
}

// ExportWorkflow handles GET /workspaces/:id/workflows/:workflowId/export
// @Summary Export workflow document
// @Tags Workflows
// @Produce json
// @Produce application/yaml
// @Security Bearer
// @Param id path string true "Workspace ID"
// @Param workflowId path string true "Workflow ID"
// @Param format query string false "json (default) or yaml"
// @Success 200 {file} file
// @Failure 400 {object} utils.APIResponse
// @Router /workspaces/{id}/workflows/{workflowId}/export [get]
func (h *WorkflowHandler) ExportWorkflow(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	out, err := h.exportUseCase.Execute(c.Request.Context(), actor, c.Param("id"), c.Param("workflowId"), c.Query("format"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

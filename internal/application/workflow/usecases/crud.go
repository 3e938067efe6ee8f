package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

type CreateWorkflowCommand struct {
	Actor        access.Actor
	WorkspaceSID string
	Name         string
	Description  string
	Graph        workflow.Graph
}

type CreateWorkflowUseCase struct {
	guard        *access.Guard
	workflowRepo workflow.Repository
	logger       logger.Interface
}

func NewCreateWorkflowUseCase(guard *access.Guard, workflowRepo workflow.Repository, logger logger.Interface) *CreateWorkflowUseCase {
	return &CreateWorkflowUseCase{guard: guard, workflowRepo: workflowRepo, logger: logger}
}

func (uc *CreateWorkflowUseCase) Execute(ctx context.Context, cmd CreateWorkflowCommand) (*workflow.Workflow, error) {
	acc, err := uc.guard.Require(ctx, cmd.Actor, cmd.WorkspaceSID, permission.WorkflowsCreate)
	if err != nil {
		return nil, err
	}
	return createDraft(ctx, uc.workflowRepo, uc.logger, acc, cmd.Actor.ID, cmd.Name, cmd.Description, cmd.Graph)
}

func createDraft(ctx context.Context, repo workflow.Repository, log logger.Interface, acc *access.Access, createdBy uint, name, description string, g workflow.Graph) (*workflow.Workflow, error) {
	w, err := workflow.NewWorkflow(acc.Workspace.ID(), createdBy, name, description, g)
	if err != nil {
		return nil, mapError(err)
	}
	if err := repo.Create(ctx, w); err != nil {
		log.Errorw("failed to create workflow", "workspace_sid", acc.Workspace.SID(), "error", err)
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	log.Infow("workflow created", "workspace_sid", acc.Workspace.SID(), "workflow_sid", w.SID(), "nodes", len(g.Nodes))
	return w, nil
}

// loadWorkflow is shared by every use case addressing one workflow.
func loadWorkflow(ctx context.Context, guard *access.Guard, repo workflow.Repository, actor access.Actor, workspaceSID, workflowSID, perm string) (*workflow.Workflow, error) {
	acc, err := guard.Require(ctx, actor, workspaceSID, perm)
	if err != nil {
		return nil, err
	}
	w, err := repo.GetBySID(ctx, acc.Workspace.ID(), workflowSID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	if w == nil {
		return nil, mapError(workflow.ErrWorkflowNotFound)
	}
	return w, nil
}

type GetWorkflowUseCase struct {
	guard        *access.Guard
	workflowRepo workflow.Repository
}

func NewGetWorkflowUseCase(guard *access.Guard, workflowRepo workflow.Repository) *GetWorkflowUseCase {
	return &GetWorkflowUseCase{guard: guard, workflowRepo: workflowRepo}
}

func (uc *GetWorkflowUseCase) Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID string) (*workflow.Workflow, error) {
	return loadWorkflow(ctx, uc.guard, uc.workflowRepo, actor, workspaceSID, workflowSID, permission.WorkflowsView)
}

type ListWorkflowsQuery struct {
	Actor        access.Actor
	WorkspaceSID string
	Status       string
	Search       string
	Page         int
	PageSize     int
}

type ListWorkflowsResult struct {
	Workflows []*workflow.Workflow
	Total     int64
	Page      int
	PageSize  int
}

type ListWorkflowsUseCase struct {
	guard        *access.Guard
	workflowRepo workflow.Repository
	logger       logger.Interface
}

func NewListWorkflowsUseCase(guard *access.Guard, workflowRepo workflow.Repository, logger logger.Interface) *ListWorkflowsUseCase {
	return &ListWorkflowsUseCase{guard: guard, workflowRepo: workflowRepo, logger: logger}
}

func (uc *ListWorkflowsUseCase) Execute(ctx context.Context, q ListWorkflowsQuery) (*ListWorkflowsResult, error) {
	acc, err := uc.guard.Require(ctx, q.Actor, q.WorkspaceSID, permission.WorkflowsView)
	if err != nil {
		return nil, err
	}
	if q.Status != "" && !workflow.Status(q.Status).IsValid() {
		return nil, apperrors.NewValidationError("invalid workflow status", q.Status)
	}
	p := utils.ValidatePagination(q.Page, q.PageSize)
	list, total, err := uc.workflowRepo.List(ctx, workflow.ListFilter{
		WorkspaceID: acc.Workspace.ID(),
		Status:      q.Status,
		Search:      q.Search,
		Page:        p.Page,
		PageSize:    p.PageSize,
	})
	if err != nil {
		uc.logger.Errorw("failed to list workflows", "workspace_sid", q.WorkspaceSID, "error", err)
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return &ListWorkflowsResult{Workflows: list, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}

type UpdateWorkflowCommand struct {
	Actor        access.Actor
	WorkspaceSID string
	WorkflowSID  string
	Name         *string
	Description  *string
	Graph        *workflow.Graph
	// Version, when set, must match the stored version.
	Version *int
}

type UpdateWorkflowUseCase struct {
	guard        *access.Guard
	workflowRepo workflow.Repository
	logger       logger.Interface
}

func NewUpdateWorkflowUseCase(guard *access.Guard, workflowRepo workflow.Repository, logger logger.Interface) *UpdateWorkflowUseCase {
	return &UpdateWorkflowUseCase{guard: guard, workflowRepo: workflowRepo, logger: logger}
}

func (uc *UpdateWorkflowUseCase) Execute(ctx context.Context, cmd UpdateWorkflowCommand) (*workflow.Workflow, error) {
	w, err := loadWorkflow(ctx, uc.guard, uc.workflowRepo, cmd.Actor, cmd.WorkspaceSID, cmd.WorkflowSID, permission.WorkflowsEdit)
	if err != nil {
		return nil, err
	}
	if cmd.Version != nil && *cmd.Version != w.Version() {
		return nil, mapError(workflow.ErrVersionConflict)
	}
	if cmd.Name == nil && cmd.Description == nil && cmd.Graph == nil {
		return w, nil
	}
	if err := w.Update(cmd.Name, cmd.Description, cmd.Graph); err != nil {
		return nil, mapError(err)
	}
	if err := uc.workflowRepo.Update(ctx, w); err != nil {
		return nil, mapError(err)
	}
	uc.logger.Infow("workflow updated", "workflow_sid", w.SID(), "status", w.Status(), "version", w.Version())
	return w, nil
}

type DeleteWorkflowUseCase struct {
	guard        *access.Guard
	workflowRepo workflow.Repository
	logger       logger.Interface
}

func NewDeleteWorkflowUseCase(guard *access.Guard, workflowRepo workflow.Repository, logger logger.Interface) *DeleteWorkflowUseCase {
	return &DeleteWorkflowUseCase{guard: guard, workflowRepo: workflowRepo, logger: logger}
}

func (uc *DeleteWorkflowUseCase) Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID string) error {
	w, err := loadWorkflow(ctx, uc.guard, uc.workflowRepo, actor, workspaceSID, workflowSID, permission.WorkflowsDelete)
	if err != nil {
		return err
	}
	if err := uc.workflowRepo.Delete(ctx, w.ID()); err != nil {
		uc.logger.Errorw("failed to delete workflow", "workflow_sid", workflowSID, "error", err)
		return mapError(err)
	}
	uc.logger.Infow("workflow deleted", "workspace_sid", workspaceSID, "workflow_sid", workflowSID)
	return nil
}

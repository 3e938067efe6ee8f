package handlers

import (
	"context"

	"github.com/connecthub/connecthub/internal/application/workflow/usecases"
	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/domain/workflow"
)

// Use case interfaces for WorkflowHandler.

type createWorkflowUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateWorkflowCommand) (*workflow.Workflow, error)
}

type getWorkflowUseCase interface {
	Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID string) (*workflow.Workflow, error)
}

type listWorkflowsUseCase interface {
	Execute(ctx context.Context, q usecases.ListWorkflowsQuery) (*usecases.ListWorkflowsResult, error)
}

type updateWorkflowUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateWorkflowCommand) (*workflow.Workflow, error)
}

type deleteWorkflowUseCase interface {
	Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID string) error
}

type transitionWorkflowUseCase interface {
	Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID string, t usecases.Transition) (*workflow.Workflow, error)
}

type testRunWorkflowUseCase interface {
	Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID string) (*workflow.DryRunReport, error)
}

type exportWorkflowUseCase interface {
	Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID, format string) (*usecases.Exported, error)
}

type importWorkflowUseCase interface {
	Execute(ctx context.Context, cmd usecases.ImportWorkflowCommand) (*workflow.Workflow, error)
}

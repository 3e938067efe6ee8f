package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// Transition selects the state change a TransitionWorkflowUseCase applies.
type Transition string

const (
	TransitionPublish Transition = "publish"
	TransitionArchive Transition = "archive"
	TransitionLayout  Transition = "layout"
)

// requiredPermission maps each transition to the catalog permission it needs.
var requiredPermission = map[Transition]string{
	TransitionPublish: permission.WorkflowsPublish,
	TransitionArchive: permission.WorkflowsEdit,
	TransitionLayout:  permission.WorkflowsEdit,
}

// TransitionWorkflowUseCase publishes, archives or re-lays-out a workflow.
type TransitionWorkflowUseCase struct {
	guard        *access.Guard
	workflowRepo workflow.Repository
	logger       logger.Interface
}

func NewTransitionWorkflowUseCase(guard *access.Guard, workflowRepo workflow.Repository, logger logger.Interface) *TransitionWorkflowUseCase {
	return &TransitionWorkflowUseCase{guard: guard, workflowRepo: workflowRepo, logger: logger}
}

func (uc *TransitionWorkflowUseCase) Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID string, t Transition) (*workflow.Workflow, error) {
	perm, ok := requiredPermission[t]
	if !ok {
		return nil, fmt.Errorf("unknown workflow transition %q", t)
	}
	w, err := loadWorkflow(ctx, uc.guard, uc.workflowRepo, actor, workspaceSID, workflowSID, perm)
	if err != nil {
		return nil, err
	}

	switch t {
	case TransitionPublish:
		err = w.Publish()
	case TransitionArchive:
		err = w.Archive()
	case TransitionLayout:
		err = w.ApplyAutoLayout()
	}
	if err != nil {
		uc.logger.Infow("workflow transition rejected", "workflow_sid", workflowSID, "transition", t, "error", err)
		return nil, mapError(err)
	}

	if err := uc.workflowRepo.Update(ctx, w); err != nil {
		return nil, mapError(err)
	}
	uc.logger.Infow("workflow transitioned", "workflow_sid", workflowSID, "transition", t, "status", w.Status())
	return w, nil
}

type TestRunWorkflowUseCase struct {
	guard        *access.Guard
	workflowRepo workflow.Repository
	logger       logger.Interface
}

func NewTestRunWorkflowUseCase(guard *access.Guard, workflowRepo workflow.Repository, logger logger.Interface) *TestRunWorkflowUseCase {
	return &TestRunWorkflowUseCase{guard: guard, workflowRepo: workflowRepo, logger: logger}
}

// Execute validates the graph and plans its steps without running anything.
func (uc *TestRunWorkflowUseCase) Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID string) (*workflow.DryRunReport, error) {
	w, err := loadWorkflow(ctx, uc.guard, uc.workflowRepo, actor, workspaceSID, workflowSID, permission.WorkflowsView)
	if err != nil {
		return nil, err
	}
	report := w.DryRun()
	uc.logger.Debugw("workflow dry run", "workflow_sid", workflowSID, "valid", report.Valid, "issues", len(report.Issues), "steps", len(report.Steps))
	return &report, nil
}

package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/application/testutil"
	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
)

type fixture struct {
	*testutil.Stack
	guard *access.Guard
	owner *user.User
	ws    *workspace.Workspace
}

func newFixture(t *testing.T) *fixture {
	s := testutil.NewStack(t)
	owner := s.CreateUser(t, "owner@example.com")
	return &fixture{
		Stack: s,
		guard: access.NewGuard(access.NewResolver(s.Workspaces, s.Members), s.Enforcer),
		owner: owner,
		ws:    s.CreateWorkspace(t, owner, "Automation"),
	}
}

func actorOf(u *user.User) access.Actor {
	return access.Actor{ID: u.ID(), SID: u.SID()}
}

func leadGraph() workflow.Graph {
	return workflow.Graph{
		Nodes: []workflow.Node{
			{ID: "trigger", Type: workflow.NodeTrigger, Platform: "hubspot", Label: "New contact"},
			{ID: "check", Type: workflow.NodeCondition, Label: "Is qualified"},
			{ID: "notify", Type: workflow.NodeAction, Platform: "slack", Operation: "post_message", Label: "Notify sales"},
			{ID: "archive", Type: workflow.NodeAction, Platform: "hubspot", Label: "Archive"},
		},
		Edges: []workflow.Edge{
			{ID: "e1", Source: "trigger", Target: "check"},
			{ID: "e2", Source: "check", Target: "notify", Branch: workflow.BranchTrue},
			{ID: "e3", Source: "check", Target: "archive", Branch: workflow.BranchFalse},
		},
	}
}

func (f *fixture) create(t *testing.T, name string, g workflow.Graph) *workflow.Workflow {
	t.Helper()
	w, err := NewCreateWorkflowUseCase(f.guard, f.Workflows, f.Log).Execute(context.Background(), CreateWorkflowCommand{
		Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), Name: name, Description: "Routes **leads**", Graph: g,
	})
	require.NoError(t, err)
	return w
}

func (f *fixture) transition(t *testing.T, w *workflow.Workflow, tr Transition) (*workflow.Workflow, error) {
	t.Helper()
	return NewTransitionWorkflowUseCase(f.guard, f.Workflows, f.Log).Execute(context.Background(), actorOf(f.owner), f.ws.SID(), w.SID(), tr)
}

func TestCreateWorkflow(t *testing.T) {
	f := newFixture(t)
	w := f.create(t, "Lead routing", leadGraph())
	assert.Equal(t, workflow.StatusDraft, w.Status())
	assert.Len(t, w.Graph().Nodes, 4)

	got, err := NewGetWorkflowUseCase(f.guard, f.Workflows).Execute(context.Background(), actorOf(f.owner), f.ws.SID(), w.SID())
	require.NoError(t, err)
	assert.Equal(t, w.SID(), got.SID())
	assert.Equal(t, leadGraph().Edges, got.Graph().Edges)

	_, err = NewCreateWorkflowUseCase(f.guard, f.Workflows, f.Log).Execute(context.Background(), CreateWorkflowCommand{
		Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), Name: "Loop",
		Graph: workflow.Graph{
			Nodes: []workflow.Node{{ID: "a", Type: workflow.NodeAction}},
			Edges: []workflow.Edge{{Source: "a", Target: "a"}},
		},
	})
	require.True(t, apperrors.IsValidationError(err))
	assert.NotEmpty(t, apperrors.GetAppError(err).Details)
}

func TestWorkflowPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.create(t, "Lead routing", leadGraph())

	viewer := f.CreateUser(t, "viewer@example.com")
	f.AddMember(t, f.ws, viewer, workspace.RoleViewer)
	_, err := NewGetWorkflowUseCase(f.guard, f.Workflows).Execute(ctx, actorOf(viewer), f.ws.SID(), w.SID())
	require.NoError(t, err)
	_, err = NewCreateWorkflowUseCase(f.guard, f.Workflows, f.Log).Execute(ctx, CreateWorkflowCommand{
		Actor: actorOf(viewer), WorkspaceSID: f.ws.SID(), Name: "Mine",
	})
	assert.True(t, apperrors.IsForbiddenError(err))

	member := f.CreateUser(t, "member@example.com")
	f.AddMember(t, f.ws, member, workspace.RoleMember)
	_, err = NewTransitionWorkflowUseCase(f.guard, f.Workflows, f.Log).Execute(ctx, actorOf(member), f.ws.SID(), w.SID(), TransitionPublish)
	assert.True(t, apperrors.IsForbiddenError(err), "publishing is an admin level permission")

	outsider := f.CreateUser(t, "eve@example.com")
	_, err = NewGetWorkflowUseCase(f.guard, f.Workflows).Execute(ctx, actorOf(outsider), f.ws.SID(), w.SID())
	assert.True(t, apperrors.IsNotFoundError(err))

	other := f.CreateWorkspace(t, f.owner, "Other")
	_, err = NewGetWorkflowUseCase(f.guard, f.Workflows).Execute(ctx, actorOf(f.owner), other.SID(), w.SID())
	assert.True(t, apperrors.IsNotFoundError(err), "workflows are scoped to their workspace")
}

func TestListWorkflows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Lead routing", leadGraph())
	published := f.create(t, "Invoice alerts", leadGraph())
	_, err := f.transition(t, published, TransitionPublish)
	require.NoError(t, err)

	list := NewListWorkflowsUseCase(f.guard, f.Workflows, f.Log)
	res, err := list.Execute(ctx, ListWorkflowsQuery{Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	res, err = list.Execute(ctx, ListWorkflowsQuery{Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), Status: "published"})
	require.NoError(t, err)
	require.Len(t, res.Workflows, 1)
	assert.Equal(t, published.SID(), res.Workflows[0].SID())

	res, err = list.Execute(ctx, ListWorkflowsQuery{Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), Search: "Lead"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)

	_, err = list.Execute(ctx, ListWorkflowsQuery{Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), Status: "running"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestUpdateWorkflow_VersionAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.create(t, "Lead routing", leadGraph())
	published, err := f.transition(t, w, TransitionPublish)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPublished, published.Status())
	assert.NotNil(t, published.PublishedAt())

	update := NewUpdateWorkflowUseCase(f.guard, f.Workflows, f.Log)
	name := "Lead routing v2"
	stale := w.Version()
	_, err = update.Execute(ctx, UpdateWorkflowCommand{
		Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), WorkflowSID: w.SID(), Name: &name, Version: &stale,
	})
	assert.True(t, apperrors.IsConflictError(err), "stale version")

	current := published.Version()
	renamed, err := update.Execute(ctx, UpdateWorkflowCommand{
		Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), WorkflowSID: w.SID(), Name: &name, Version: &current,
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPublished, renamed.Status(), "renaming keeps it published")

	g := leadGraph()
	g.Nodes = g.Nodes[:3]
	g.Edges = g.Edges[:2]
	edited, err := update.Execute(ctx, UpdateWorkflowCommand{
		Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), WorkflowSID: w.SID(), Graph: &g,
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, edited.Status(), "editing the graph returns it to draft")
	assert.Greater(t, edited.Version(), renamed.Version())
}

func TestArchiveWorkflow_IsReadOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.create(t, "Lead routing", leadGraph())

	archived, err := f.transition(t, w, TransitionArchive)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusArchived, archived.Status())

	_, err = f.transition(t, w, TransitionArchive)
	assert.True(t, apperrors.IsConflictError(err))
	_, err = f.transition(t, w, TransitionPublish)
	assert.True(t, apperrors.IsConflictError(err))

	name := "Revived"
	_, err = NewUpdateWorkflowUseCase(f.guard, f.Workflows, f.Log).Execute(ctx, UpdateWorkflowCommand{
		Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), WorkflowSID: w.SID(), Name: &name,
	})
	assert.True(t, apperrors.IsConflictError(err))
}

func TestPublishWorkflow_ReportsIssues(t *testing.T) {
	f := newFixture(t)
	w := f.create(t, "No trigger", workflow.Graph{
		Nodes: []workflow.Node{{ID: "a", Type: workflow.NodeAction}, {ID: "b", Type: workflow.NodeAction}},
		Edges: []workflow.Edge{{ID: "ab", Source: "a", Target: "b"}},
	})

	_, err := f.transition(t, w, TransitionPublish)
	require.True(t, apperrors.IsValidationError(err))
	assert.NotEmpty(t, apperrors.GetAppError(err).Details)

	report, err := NewTestRunWorkflowUseCase(f.guard, f.Workflows, f.Log).Execute(context.Background(), actorOf(f.owner), f.ws.SID(), w.SID())
	require.NoError(t, err)
	assert.False(t, report.Valid)
	codes := make([]string, 0, len(report.Issues))
	for _, i := range report.Issues {
		codes = append(codes, i.Code)
	}
	assert.Contains(t, codes, workflow.IssueMissingTrigger)
}

func TestTestRunWorkflow_Plan(t *testing.T) {
	f := newFixture(t)
	w := f.create(t, "Lead routing", leadGraph())

	report, err := NewTestRunWorkflowUseCase(f.guard, f.Workflows, f.Log).Execute(context.Background(), actorOf(f.owner), f.ws.SID(), w.SID())
	require.NoError(t, err)
	assert.True(t, report.Valid)
	require.Len(t, report.Steps, 4)
	assert.Equal(t, "trigger", report.Steps[0].NodeID)
	assert.Equal(t, "check", report.Steps[1].NodeID)
	assert.Equal(t, "notify", report.Steps[2].NodeID, "ties follow insertion order")
	assert.Equal(t, 2, report.Steps[3].Depth)

	stored, err := f.Workflows.GetBySID(context.Background(), f.ws.ID(), w.SID())
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, stored.Status(), "a dry run changes nothing")
}

func TestAutoLayout_Persists(t *testing.T) {
	f := newFixture(t)
	w := f.create(t, "Lead routing", leadGraph())

	laid, err := f.transition(t, w, TransitionLayout)
	require.NoError(t, err)

	stored, err := f.Workflows.GetBySID(context.Background(), f.ws.ID(), w.SID())
	require.NoError(t, err)
	positions := map[string]workflow.Position{}
	for _, n := range stored.Graph().Nodes {
		positions[n.ID] = n.Position
	}
	assert.Equal(t, workflow.Position{X: 0, Y: 0}, positions["trigger"])
	assert.Equal(t, float64(workflow.LayoutColumnWidth), positions["check"].X)
	assert.Equal(t, float64(2*workflow.LayoutColumnWidth), positions["notify"].X)
	assert.Equal(t, float64(workflow.LayoutRowHeight), positions["archive"].Y)
	assert.Equal(t, laid.Version(), stored.Version())
}

func TestDeleteWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.create(t, "Lead routing", leadGraph())

	member := f.CreateUser(t, "member@example.com")
	f.AddMember(t, f.ws, member, workspace.RoleMember)
	del := NewDeleteWorkflowUseCase(f.guard, f.Workflows, f.Log)
	assert.True(t, apperrors.IsForbiddenError(del.Execute(ctx, actorOf(member), f.ws.SID(), w.SID())))

	require.NoError(t, del.Execute(ctx, actorOf(f.owner), f.ws.SID(), w.SID()))
	assert.True(t, apperrors.IsNotFoundError(del.Execute(ctx, actorOf(f.owner), f.ws.SID(), w.SID())))
}

func TestExportImport_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.create(t, "Lead routing", leadGraph())
	export := NewExportWorkflowUseCase(f.guard, f.Workflows, f.Log)
	imp := NewImportWorkflowUseCase(f.guard, f.Workflows, f.Log)

	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			out, err := export.Execute(ctx, actorOf(f.owner), f.ws.SID(), w.SID(), format)
			require.NoError(t, err)
			assert.Equal(t, "lead-routing."+format, out.Filename)
			assert.Contains(t, string(out.Body), workflow.DocumentVersion)

			copied, err := imp.Execute(ctx, ImportWorkflowCommand{Actor: actorOf(f.owner), WorkspaceSID: f.ws.SID(), Data: out.Body})
			require.NoError(t, err)
			assert.NotEqual(t, w.SID(), copied.SID())
			assert.Equal(t, workflow.StatusDraft, copied.Status())
			assert.Equal(t, w.Name(), copied.Name())
			assert.Equal(t, w.Graph().Edges, copied.Graph().Edges)
			assert.Len(t, copied.Graph().Nodes, len(w.Graph().Nodes))
		})
	}

	_, err := export.Execute(ctx, actorOf(f.owner), f.ws.SID(), w.SID(), "xml")
	assert.True(t, apperrors.IsValidationError(err))
}

func TestParseDocument_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "   "},
		{"future major", `{"schema_version":"2.0.0","name":"x","nodes":[],"edges":[]}`},
		{"newer minor", "schema_version: 1.1.0\nname: x\n"},
		{"missing version", `{"name":"x","nodes":[],"edges":[]}`},
		{"unknown field", `{"schema_version":"1.0.0","name":"x","steps":[]}`},
		{"binary", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data))
			assert.True(t, apperrors.IsValidationError(err), "got %v", err)
		})
	}

	doc, err := ParseDocument([]byte("schema_version: \"1.0.0\"\nname: From YAML\nnodes:\n  - id: t\n    type: trigger\n    label: Start\nedges: []\n"))
	require.NoError(t, err)
	assert.Equal(t, "From YAML", doc.Name)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, workflow.NodeTrigger, doc.Nodes[0].Type)
}

package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflow(t *testing.T) {
	w, err := NewWorkflow(1, 2, " Lead sync ", "desc", leadSync())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(w.SID(), "wf_"))
	assert.Equal(t, "Lead sync", w.Name())
	assert.Equal(t, StatusDraft, w.Status())

	_, err = NewWorkflow(1, 2, "", "", Graph{})
	assert.ErrorIs(t, err, ErrInvalidName)

	bad := Graph{Nodes: []Node{node("a", NodeAction)}, Edges: []Edge{edge("e", "a", "a")}}
	_, err = NewWorkflow(1, 2, "x", "", bad)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, IssueSelfLoop, verr.Issues[0].Code)
}

func TestWorkflow_DraftSavesIncompleteGraph(t *testing.T) {
	w, err := NewWorkflow(1, 2, "wip", "", Graph{Nodes: []Node{node("a", NodeAction)}})
	require.NoError(t, err)

	err = w.Publish()
	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.Equal(t, StatusDraft, w.Status())
}

func TestWorkflow_PublishEditArchive(t *testing.T) {
	w, err := NewWorkflow(1, 2, "flow", "", leadSync())
	require.NoError(t, err)
	w.MarkPersisted()

	require.NoError(t, w.Publish())
	assert.Equal(t, StatusPublished, w.Status())
	assert.NotNil(t, w.PublishedAt())

	require.NoError(t, w.ApplyAutoLayout())
	assert.Equal(t, StatusPublished, w.Status(), "layout keeps status")

	name := "renamed"
	require.NoError(t, w.Update(&name, nil, nil))
	assert.Equal(t, StatusPublished, w.Status(), "rename keeps status")

	g := leadSync()
	require.NoError(t, w.Update(nil, nil, &g))
	assert.Equal(t, StatusDraft, w.Status(), "graph edit returns to draft")

	require.NoError(t, w.Archive())
	assert.ErrorIs(t, w.Archive(), ErrAlreadyArchived)
	assert.ErrorIs(t, w.Update(&name, nil, nil), ErrArchived)
	assert.ErrorIs(t, w.Publish(), ErrArchived)
	assert.Equal(t, 2, w.Version(), "all edits before a save bump once")
}

func TestWorkflow_DryRun(t *testing.T) {
	w, err := NewWorkflow(1, 2, "flow", "", leadSync())
	require.NoError(t, err)
	report := w.DryRun()
	assert.True(t, report.Valid)
	assert.Empty(t, report.Issues)
	assert.Len(t, report.Steps, 5)

	broken, err := NewWorkflow(1, 2, "flow", "", Graph{Nodes: []Node{node("a", NodeAction), node("b", NodeAction)}})
	require.NoError(t, err)
	report = broken.DryRun()
	assert.False(t, report.Valid)
	assert.Contains(t, codes(report.Issues), IssueMissingTrigger)
	assert.Len(t, report.Steps, 2, "plan still produced for acyclic drafts")
}

func TestDocument(t *testing.T) {
	w, err := NewWorkflow(1, 2, "flow", "about", leadSync())
	require.NoError(t, err)

	doc := w.ToDocument()
	assert.Equal(t, DocumentVersion, doc.SchemaVersion)
	assert.NoError(t, doc.CheckVersion())
	assert.Len(t, doc.Graph().Nodes, 5)

	doc.SchemaVersion = "2.0.0"
	assert.ErrorIs(t, doc.CheckVersion(), ErrUnsupportedDocument)
}

package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/shared/services/markdown"
)

func TestToWorkflowResponse_RendersSanitizedMarkdown(t *testing.T) {
	w, err := workflow.NewWorkflow(1, 1, "Lead sync", "**New** leads <script>alert(1)</script>", workflow.Graph{})
	require.NoError(t, err)

	resp := ToWorkflowResponse(w, markdown.NewRenderer())
	assert.Contains(t, resp.DescriptionHTML, "<strong>New</strong>")
	assert.NotContains(t, resp.DescriptionHTML, "<script>")
	assert.NotNil(t, resp.Nodes)
	assert.NotNil(t, resp.Edges)
}

func TestUpdateWorkflowRequest_Graph(t *testing.T) {
	assert.Nil(t, (&UpdateWorkflowRequest{}).Graph())

	g := (&UpdateWorkflowRequest{Nodes: []workflow.Node{{ID: "t", Type: workflow.NodeTrigger}}}).Graph()
	require.NotNil(t, g)
	assert.Len(t, g.Nodes, 1)
	assert.Nil(t, g.Edges)
}

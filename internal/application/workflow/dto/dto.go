package dto

import (
	"time"

	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/shared/services/markdown"
)

type WorkflowResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DescriptionHTML string          `json:"description_html"`
	Status          string          `json:"status"`
	Nodes           []workflow.Node `json:"nodes"`
	Edges           []workflow.Edge `json:"edges"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// WorkflowSummary is the list item; the graph is left out.
type WorkflowSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	NodeCount   int        `json:"node_count"`
	EdgeCount   int        `json:"edge_count"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

type CreateWorkflowRequest struct {
	Name        string          `json:"name" binding:"required,max=120"`
	Description string          `json:"description" binding:"max=10000"`
	Nodes       []workflow.Node `json:"nodes"`
	Edges       []workflow.Edge `json:"edges"`
}

type UpdateWorkflowRequest struct {
	Name        *string         `json:"name,omitempty" binding:"omitempty,max=120"`
	Description *string         `json:"description,omitempty" binding:"omitempty,max=10000"`
	Nodes       []workflow.Node `json:"nodes,omitempty"`
	Edges       []workflow.Edge `json:"edges,omitempty"`
	Version     *int            `json:"version,omitempty"`
}

// Graph returns nil unless the request replaces the graph. Sending either
// nodes or edges replaces both.
func (r *UpdateWorkflowRequest) Graph() *workflow.Graph {
	if r.Nodes == nil && r.Edges == nil {
		return nil
	}
	return &workflow.Graph{Nodes: r.Nodes, Edges: r.Edges}
}

type ListWorkflowsRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft published archived"`
	Search   string `form:"search" binding:"max=120"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type ImportWorkflowRequest struct {
	Name string `form:"name" binding:"max=120"`
}

// ToWorkflowResponse renders the Markdown description. A render failure
// leaves description_html empty.
func ToWorkflowResponse(w *workflow.Workflow, md markdown.Renderer) *WorkflowResponse {
	g := w.Graph()
	resp := &WorkflowResponse{
		ID:          w.SID(),
		Name:        w.Name(),
		Description: w.Description(),
		Status:      string(w.Status()),
		Nodes:       g.Nodes,
		Edges:       g.Edges,
		PublishedAt: w.PublishedAt(),
		CreatedAt:   w.CreatedAt(),
		UpdatedAt:   w.UpdatedAt(),
		Version:     w.Version(),
	}
	if resp.Nodes == nil {
		resp.Nodes = []workflow.Node{}
	}
	if resp.Edges == nil {
		resp.Edges = []workflow.Edge{}
	}
	if md != nil && w.Description() != "" {
		if html, err := md.Render(w.Description()); err == nil {
			resp.DescriptionHTML = html
		}
	}
	return resp
}

func ToWorkflowSummary(w *workflow.Workflow) *WorkflowSummary {
	g := w.Graph()
	return &WorkflowSummary{
		ID:          w.SID(),
		Name:        w.Name(),
		Status:      string(w.Status()),
		NodeCount:   len(g.Nodes),
		EdgeCount:   len(g.Edges),
		PublishedAt: w.PublishedAt(),
		UpdatedAt:   w.UpdatedAt(),
		Version:     w.Version(),
	}
}

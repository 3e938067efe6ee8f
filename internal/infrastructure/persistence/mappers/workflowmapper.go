package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/infrastructure/persistence/models"
)

func WorkflowToEntity(model *models.WorkflowModel) (*workflow.Workflow, error) {
	if model == nil {
		return nil, nil
	}

	var graph workflow.Graph
	if len(model.Nodes) > 0 {
		if err := json.Unmarshal(model.Nodes, &graph.Nodes); err != nil {
			return nil, fmt.Errorf("failed to decode nodes of workflow %s: %w", model.SID, err)
		}
	}
	if len(model.Edges) > 0 {
		if err := json.Unmarshal(model.Edges, &graph.Edges); err != nil {
			return nil, fmt.Errorf("failed to decode edges of workflow %s: %w", model.SID, err)
		}
	}
	if graph.Nodes == nil {
		graph.Nodes = []workflow.Node{}
	}
	if graph.Edges == nil {
		graph.Edges = []workflow.Edge{}
	}

	return workflow.ReconstructWorkflow(workflow.State{
		ID:          model.ID,
		SID:         model.SID,
		WorkspaceID: model.WorkspaceID,
		CreatedBy:   model.CreatedBy,
		Name:        model.Name,
		Description: model.Description,
		Status:      workflow.Status(model.Status),
		Graph:       graph,
		PublishedAt: model.PublishedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		Version:     model.Version,
	}), nil
}

func WorkflowToModel(entity *workflow.Workflow) (*models.WorkflowModel, error) {
	if entity == nil {
		return nil, nil
	}

	graph := entity.Graph()
	if graph.Nodes == nil {
		graph.Nodes = []workflow.Node{}
	}
	if graph.Edges == nil {
		graph.Edges = []workflow.Edge{}
	}
	nodes, err := json.Marshal(graph.Nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow nodes: %w", err)
	}
	edges, err := json.Marshal(graph.Edges)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow edges: %w", err)
	}

	return &models.WorkflowModel{
		ID:          entity.ID(),
		SID:         entity.SID(),
		WorkspaceID: entity.WorkspaceID(),
		CreatedBy:   entity.CreatedBy(),
		Name:        entity.Name(),
		Description: entity.Description(),
		Status:      string(entity.Status()),
		Nodes:       datatypes.JSON(nodes),
		Edges:       datatypes.JSON(edges),
		PublishedAt: entity.PublishedAt(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
		Version:     entity.Version(),
	}, nil
}

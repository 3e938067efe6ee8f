package workflow

import "context"

type ListFilter struct {
	WorkspaceID uint
	Status      string
	// Search matches the workflow name.
	Search   string
	Page     int
	PageSize int
}

// Repository persists workflows. Getters return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, w *Workflow) error
	GetBySID(ctx context.Context, workspaceID uint, sid string) (*Workflow, error)
	List(ctx context.Context, filter ListFilter) ([]*Workflow, int64, error)
	// Update fails with ErrVersionConflict when the stored version moved on.
	Update(ctx context.Context, w *Workflow) error
	Delete(ctx context.Context, id uint) error
	DeleteByWorkspace(ctx context.Context, workspaceID uint) error
	CountByStatus(ctx context.Context, workspaceIDs []uint) (map[Status]int64, error)
}

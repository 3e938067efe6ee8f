// Package workflow is the visual automation builder. Workflows are stored,
// validated and planned, never executed against a platform.
package workflow

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/id"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

type Workflow struct {
	id          uint
	sid         string
	workspaceID uint
	createdBy   uint
	name        string
	description string
	status      Status
	graph       Graph
	publishedAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
	version     int
	stored      int
}

// NewWorkflow creates a draft. Missing node and edge ids are generated.
func NewWorkflow(workspaceID, createdBy uint, name, description string, graph Graph) (*Workflow, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	graph = graph.WithGeneratedIDs()
	if err := issuesError(graph.CheckStructure()); err != nil {
		return nil, err
	}
	sid, err := id.New(id.PrefixWorkflow)
	if err != nil {
		return nil, fmt.Errorf("failed to generate workflow ID: %w", err)
	}
	now := biztime.NowUTC()
	return &Workflow{
		sid:         sid,
		workspaceID: workspaceID,
		createdBy:   createdBy,
		name:        name,
		description: strings.TrimSpace(description),
		status:      StatusDraft,
		graph:       graph,
		createdAt:   now,
		updatedAt:   now,
		version:     1,
	}, nil
}

type State struct {
	ID          uint
	SID         string
	WorkspaceID uint
	CreatedBy   uint
	Name        string
	Description string
	Status      Status
	Graph       Graph
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int
}

func ReconstructWorkflow(s State) *Workflow {
	return &Workflow{
		id:          s.ID,
		sid:         s.SID,
		workspaceID: s.WorkspaceID,
		createdBy:   s.CreatedBy,
		name:        s.Name,
		description: s.Description,
		status:      s.Status,
		graph:       s.Graph,
		publishedAt: s.PublishedAt,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
		version:     s.Version,
		stored:      s.Version,
	}
}

func (w *Workflow) ID() uint                { return w.id }
func (w *Workflow) SID() string             { return w.sid }
func (w *Workflow) WorkspaceID() uint       { return w.workspaceID }
func (w *Workflow) CreatedBy() uint         { return w.createdBy }
func (w *Workflow) Name() string            { return w.name }
func (w *Workflow) Description() string     { return w.description }
func (w *Workflow) Status() Status          { return w.status }
func (w *Workflow) Graph() Graph            { return w.graph.clone() }
func (w *Workflow) PublishedAt() *time.Time { return w.publishedAt }
func (w *Workflow) CreatedAt() time.Time    { return w.createdAt }
func (w *Workflow) UpdatedAt() time.Time    { return w.updatedAt }
func (w *Workflow) Version() int            { return w.version }

func (w *Workflow) SetID(id uint) error {
	if w.id != 0 {
		return fmt.Errorf("workflow ID is already set")
	}
	w.id = id
	return nil
}

// Update changes the given fields. A new graph sends a published workflow back to draft.
func (w *Workflow) Update(name, description *string, graph *Graph) error {
	if w.status == StatusArchived {
		return ErrArchived
	}
	if name != nil {
		n, err := validateName(*name)
		if err != nil {
			return err
		}
		w.name = n
	}
	if description != nil {
		w.description = strings.TrimSpace(*description)
	}
	if graph != nil {
		g := graph.WithGeneratedIDs()
		if err := issuesError(g.CheckStructure()); err != nil {
			return err
		}
		w.graph = g
		if w.status == StatusPublished {
			w.status = StatusDraft
		}
	}
	w.touch()
	return nil
}

// Publish runs full validation and marks the workflow published.
func (w *Workflow) Publish() error {
	if w.status == StatusArchived {
		return ErrArchived
	}
	if err := issuesError(w.graph.CheckPublishable()); err != nil {
		return err
	}
	now := biztime.NowUTC()
	w.status = StatusPublished
	w.publishedAt = &now
	w.touch()
	return nil
}

func (w *Workflow) Archive() error {
	if w.status == StatusArchived {
		return ErrAlreadyArchived
	}
	w.status = StatusArchived
	w.touch()
	return nil
}

// ApplyAutoLayout repositions every node. Positions are presentation only,
// so a published workflow stays published.
func (w *Workflow) ApplyAutoLayout() error {
	if w.status == StatusArchived {
		return ErrArchived
	}
	w.graph = w.graph.AutoLayout()
	w.touch()
	return nil
}

// DryRunReport is the result of a test run: nothing is executed.
type DryRunReport struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
	Steps  []Step  `json:"steps"`
}

func (w *Workflow) DryRun() DryRunReport {
	report := DryRunReport{Issues: w.graph.CheckPublishable(), Steps: []Step{}}
	if report.Issues == nil {
		report.Issues = []Issue{}
	}
	report.Valid = len(report.Issues) == 0
	if steps, err := w.graph.ExecutionPlan(); err == nil {
		report.Steps = steps
	}
	return report
}

func (w *Workflow) touch() {
	w.updatedAt = biztime.NowUTC()
	if w.version == w.stored {
		w.version++
	}
}

// StoredVersion is the version last read from or written to storage; zero
// before the first insert.
func (w *Workflow) StoredVersion() int { return w.stored }

// MarkPersisted records that the current state has been written.
func (w *Workflow) MarkPersisted() { w.stored = w.version }

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 120 {
		return "", ErrInvalidName
	}
	return name, nil
}

package workflow

import (
	"errors"
	"strings"
)

var (
	ErrWorkflowNotFound    = errors.New("workflow not found")
	ErrInvalidName         = errors.New("workflow name must be between 1 and 120 characters")
	ErrArchived            = errors.New("archived workflows are read-only")
	ErrAlreadyArchived     = errors.New("workflow is already archived")
	ErrVersionConflict     = errors.New("workflow was modified concurrently")
	ErrInvalidGraph        = errors.New("workflow graph is invalid")
	ErrUnsupportedDocument = errors.New("unsupported workflow document version")
)

// ValidationError lists every problem found in a graph.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		msgs = append(msgs, i.Message)
	}
	return "workflow graph is invalid: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidGraph
}

func issuesError(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

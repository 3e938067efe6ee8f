package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"gopkg.in/yaml.v3"

	"github.com/connecthub/connecthub/internal/application/workspace/access"
	"github.com/connecthub/connecthub/internal/domain/permission"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"

	// MaxDocumentSize bounds an imported document.
	MaxDocumentSize = 1 << 20
)

// Exported is a serialized workflow document ready to download.
type Exported struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ExportWorkflowUseCase struct {
	guard        *access.Guard
	workflowRepo workflow.Repository
	logger       logger.Interface
}

func NewExportWorkflowUseCase(guard *access.Guard, workflowRepo workflow.Repository, logger logger.Interface) *ExportWorkflowUseCase {
	return &ExportWorkflowUseCase{guard: guard, workflowRepo: workflowRepo, logger: logger}
}

func (uc *ExportWorkflowUseCase) Execute(ctx context.Context, actor access.Actor, workspaceSID, workflowSID, format string) (*Exported, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatJSON
	}
	if format == "yml" {
		format = FormatYAML
	}
	if format != FormatJSON && format != FormatYAML {
		return nil, apperrors.NewValidationError("format must be json or yaml", format)
	}

	w, err := loadWorkflow(ctx, uc.guard, uc.workflowRepo, actor, workspaceSID, workflowSID, permission.WorkflowsView)
	if err != nil {
		return nil, err
	}
	doc := w.ToDocument()

	out := &Exported{Filename: slug(w.Name()) + "." + format}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode workflow: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode workflow: %w", err)
		}
		out.ContentType = "application/yaml"
		out.Body = buf.Bytes()
	default:
		body, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode workflow: %w", err)
		}
		out.ContentType = "application/json"
		out.Body = body
	}
	uc.logger.Infow("workflow exported", "workflow_sid", workflowSID, "format", format)
	return out, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "workflow"
	}
	return s
}

type ImportWorkflowCommand struct {
	Actor        access.Actor
	WorkspaceSID string
	Data         []byte
	// Name overrides the document name when set.
	Name string
}

type ImportWorkflowUseCase struct {
	guard        *access.Guard
	workflowRepo workflow.Repository
	logger       logger.Interface
}

func NewImportWorkflowUseCase(guard *access.Guard, workflowRepo workflow.Repository, logger logger.Interface) *ImportWorkflowUseCase {
	return &ImportWorkflowUseCase{guard: guard, workflowRepo: workflowRepo, logger: logger}
}

// Execute stores the document as a new draft in the workspace.
func (uc *ImportWorkflowUseCase) Execute(ctx context.Context, cmd ImportWorkflowCommand) (*workflow.Workflow, error) {
	acc, err := uc.guard.Require(ctx, cmd.Actor, cmd.WorkspaceSID, permission.WorkflowsCreate)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(cmd.Data)
	if err != nil {
		uc.logger.Infow("workflow import rejected", "workspace_sid", cmd.WorkspaceSID, "error", err)
		return nil, err
	}
	name := doc.Name
	if cmd.Name != "" {
		name = cmd.Name
	}
	return createDraft(ctx, uc.workflowRepo, uc.logger, acc, cmd.Actor.ID, name, doc.Description, doc.Graph())
}

// ParseDocument decodes a JSON or YAML workflow document, telling the two
// apart by content.
func ParseDocument(data []byte) (*workflow.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.NewValidationError("workflow document is empty")
	}
	if len(data) > MaxDocumentSize {
		return nil, apperrors.NewValidationError("workflow document is too large")
	}

	var doc workflow.Document
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("application/json") || bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")):
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, apperrors.NewValidationError("invalid JSON workflow document", err.Error())
		}
	case strings.HasPrefix(mt.String(), "text/"):
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, apperrors.NewValidationError("invalid YAML workflow document", err.Error())
		}
	default:
		return nil, apperrors.NewValidationError("workflow document must be JSON or YAML", mt.String())
	}

	if err := doc.CheckVersion(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), doc.SchemaVersion)
	}
	return &doc, nil
}

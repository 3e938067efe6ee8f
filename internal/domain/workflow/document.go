package workflow

import "github.com/connecthub/connecthub/internal/shared/version"

// DocumentVersion is the schema version written into exported documents.
const DocumentVersion = "1.0.0"

// Document is the portable export format of a workflow.
type Document struct {
	SchemaVersion string `json:"schema_version" yaml:"schema_version"`
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes         []Node `json:"nodes" yaml:"nodes"`
	Edges         []Edge `json:"edges" yaml:"edges"`
}

func (w *Workflow) ToDocument() Document {
	g := w.Graph()
	return Document{
		SchemaVersion: DocumentVersion,
		Name:          w.name,
		Description:   w.description,
		Nodes:         g.Nodes,
		Edges:         g.Edges,
	}
}

// CheckVersion rejects documents from an incompatible schema.
func (d Document) CheckVersion() error {
	if !version.IsCompatible(d.SchemaVersion, DocumentVersion) {
		return ErrUnsupportedDocument
	}
	return nil
}

func (d Document) Graph() Graph {
	return Graph{Nodes: d.Nodes, Edges: d.Edges}
}

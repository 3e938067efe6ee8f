// Package workspace models the multi-tenant grouping of users: the workspace
// itself, its memberships and pending invitations.
package workspace

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/id"
)

type Workspace struct {
	id        uint
	sid       string
	name      string
	ownerID   uint
	settings  map[string]any
	createdAt time.Time
	updatedAt time.Time
	version   int
	stored    int
}

func NewWorkspace(name string, ownerID uint, settings map[string]any) (*Workspace, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if ownerID == 0 {
		return nil, fmt.Errorf("owner is required")
	}
	sid, err := id.New(id.PrefixWorkspace)
	if err != nil {
		return nil, fmt.Errorf("failed to generate workspace ID: %w", err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	now := biztime.NowUTC()
	return &Workspace{
		sid:       sid,
		name:      name,
		ownerID:   ownerID,
		settings:  settings,
		createdAt: now,
		updatedAt: now,
		version:   1,
	}, nil
}

func ReconstructWorkspace(id uint, sid, name string, ownerID uint, settings map[string]any, createdAt, updatedAt time.Time, version int) *Workspace {
	if settings == nil {
		settings = map[string]any{}
	}
	return &Workspace{
		id:        id,
		sid:       sid,
		name:      name,
		ownerID:   ownerID,
		settings:  settings,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		stored:    version,
	}
}

func (w *Workspace) ID() uint                 { return w.id }
func (w *Workspace) SID() string              { return w.sid }
func (w *Workspace) Name() string             { return w.name }
func (w *Workspace) OwnerID() uint            { return w.ownerID }
func (w *Workspace) Settings() map[string]any { return w.settings }
func (w *Workspace) CreatedAt() time.Time     { return w.createdAt }
func (w *Workspace) UpdatedAt() time.Time     { return w.updatedAt }
func (w *Workspace) Version() int             { return w.version }

func (w *Workspace) SetID(id uint) error {
	if w.id != 0 {
		return fmt.Errorf("workspace ID is already set")
	}
	w.id = id
	return nil
}

func (w *Workspace) Rename(name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	w.name = name
	w.touch()
	return nil
}

// ReplaceSettings swaps the whole settings blob; settings are opaque to the server.
func (w *Workspace) ReplaceSettings(settings map[string]any) {
	if settings == nil {
		settings = map[string]any{}
	}
	w.settings = settings
	w.touch()
}

func (w *Workspace) TransferTo(newOwnerID uint) {
	w.ownerID = newOwnerID
	w.touch()
}

func (w *Workspace) touch() {
	w.updatedAt = biztime.NowUTC()
	if w.version == w.stored {
		w.version++
	}
}

// StoredVersion is the version last read from or written to storage; zero
// before the first insert.
func (w *Workspace) StoredVersion() int { return w.stored }

// MarkPersisted records that the current state has been written.
func (w *Workspace) MarkPersisted() { w.stored = w.version }

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return "", ErrInvalidName
	}
	return name, nil
}

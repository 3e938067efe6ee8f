package workspace

import (
	"fmt"
	"time"

	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/id"
)

type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusSuspended MemberStatus = "suspended"
)

func (s MemberStatus) IsValid() bool {
	return s == MemberStatusActive || s == MemberStatusSuspended
}

type Member struct {
	id                uint
	sid               string
	workspaceID       uint
	userID            uint
	role              Role
	status            MemberStatus
	permissionGroupID *uint
	joinedAt          time.Time
	updatedAt         time.Time
}

func NewMember(workspaceID, userID uint, role Role) (*Member, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if workspaceID == 0 || userID == 0 {
		return nil, fmt.Errorf("workspace and user are required")
	}
	sid, err := id.New(id.PrefixMember)
	if err != nil {
		return nil, fmt.Errorf("failed to generate member ID: %w", err)
	}
	now := biztime.NowUTC()
	return &Member{
		sid:         sid,
		workspaceID: workspaceID,
		userID:      userID,
		role:        role,
		status:      MemberStatusActive,
		joinedAt:    now,
		updatedAt:   now,
	}, nil
}

func ReconstructMember(id uint, sid string, workspaceID, userID uint, role Role, status MemberStatus, permissionGroupID *uint, joinedAt, updatedAt time.Time) *Member {
	return &Member{
		id:                id,
		sid:               sid,
		workspaceID:       workspaceID,
		userID:            userID,
		role:              role,
		status:            status,
		permissionGroupID: permissionGroupID,
		joinedAt:          joinedAt,
		updatedAt:         updatedAt,
	}
}

func (m *Member) ID() uint                 { return m.id }
func (m *Member) SID() string              { return m.sid }
func (m *Member) WorkspaceID() uint        { return m.workspaceID }
func (m *Member) UserID() uint             { return m.userID }
func (m *Member) Role() Role               { return m.role }
func (m *Member) Status() MemberStatus     { return m.status }
func (m *Member) PermissionGroupID() *uint { return m.permissionGroupID }
func (m *Member) JoinedAt() time.Time      { return m.joinedAt }
func (m *Member) UpdatedAt() time.Time     { return m.updatedAt }

func (m *Member) IsActive() bool { return m.status == MemberStatusActive }

func (m *Member) SetID(id uint) error {
	if m.id != 0 {
		return fmt.Errorf("member ID is already set")
	}
	m.id = id
	return nil
}

// AssignGroup attaches a permission group; nil detaches.
func (m *Member) AssignGroup(groupID *uint) {
	m.permissionGroupID = groupID
	m.updatedAt = biztime.NowUTC()
}

func (m *Member) setRole(role Role) {
	m.role = role
	m.updatedAt = biztime.NowUTC()
}

func (m *Member) setStatus(status MemberStatus) {
	m.status = status
	m.updatedAt = biztime.NowUTC()
}

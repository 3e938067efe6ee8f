// Package user holds the account aggregate: identity, platform role,
// subscription tier and per-user dashboard preferences.
package user

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/connecthub/connecthub/internal/shared/authorization"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/id"
)

type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierPro        SubscriptionTier = "pro"
	TierEnterprise SubscriptionTier = "enterprise"
)

func (t SubscriptionTier) IsValid() bool {
	return t == TierFree || t == TierPro || t == TierEnterprise
}

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusDisabled
}

const MinPasswordLength = 8

type User struct {
	id           uint
	sid          string
	email        string
	displayName  string
	passwordHash string
	role         authorization.UserRole
	tier         SubscriptionTier
	status       Status
	lastLoginAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	version      int
	stored       int
}

// NewUser registers a client account on the free tier.
func NewUser(email, displayName, passwordHash string) (*User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name, err := normalizeDisplayName(displayName, normalized)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	sid, err := id.New(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	now := biztime.NowUTC()
	return &User{
		sid:          sid,
		email:        normalized,
		displayName:  name,
		passwordHash: passwordHash,
		role:         authorization.RoleClient,
		tier:         TierFree,
		status:       StatusActive,
		createdAt:    now,
		updatedAt:    now,
		version:      1,
	}, nil
}

// ReconstructUser rebuilds a user from persistence.
func ReconstructUser(
	id uint, sid, email, displayName, passwordHash string,
	role authorization.UserRole, tier SubscriptionTier, status Status,
	lastLoginAt *time.Time, createdAt, updatedAt time.Time, version int,
) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("user SID is required")
	}
	return &User{
		id:           id,
		sid:          sid,
		email:        email,
		displayName:  displayName,
		passwordHash: passwordHash,
		role:         role,
		tier:         tier,
		status:       status,
		lastLoginAt:  lastLoginAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		version:      version,
		stored:       version,
	}, nil
}

func (u *User) ID() uint                     { return u.id }
func (u *User) SID() string                  { return u.sid }
func (u *User) Email() string                { return u.email }
func (u *User) DisplayName() string          { return u.displayName }
func (u *User) PasswordHash() string         { return u.passwordHash }
func (u *User) Role() authorization.UserRole { return u.role }
func (u *User) Tier() SubscriptionTier       { return u.tier }
func (u *User) Status() Status               { return u.status }
func (u *User) LastLoginAt() *time.Time      { return u.lastLoginAt }
func (u *User) CreatedAt() time.Time         { return u.createdAt }
func (u *User) UpdatedAt() time.Time         { return u.updatedAt }
func (u *User) Version() int                 { return u.version }

func (u *User) IsActive() bool { return u.status == StatusActive }

// SetID is called by the repository after insert.
func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user ID cannot be zero")
	}
	u.id = id
	return nil
}

func (u *User) UpdateDisplayName(name string) error {
	normalized, err := normalizeDisplayName(name, "")
	if err != nil {
		return err
	}
	if normalized == u.displayName {
		return nil
	}
	u.displayName = normalized
	u.touch()
	return nil
}

func (u *User) RecordLogin() {
	now := biztime.NowUTC()
	u.lastLoginAt = &now
	u.touch()
}

func (u *User) ChangeRole(role authorization.UserRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role: %s", role)
	}
	if role == u.role {
		return nil
	}
	u.role = role
	u.touch()
	return nil
}

func (u *User) ChangeTier(tier SubscriptionTier) error {
	if !tier.IsValid() {
		return ErrInvalidTier
	}
	if tier == u.tier {
		return nil
	}
	u.tier = tier
	u.touch()
	return nil
}

func (u *User) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if status == u.status {
		return nil
	}
	u.status = status
	u.touch()
	return nil
}

func (u *User) touch() {
	u.updatedAt = biztime.NowUTC()
	if u.version == u.stored {
		u.version++
	}
}

// StoredVersion is the version last read from or written to storage; zero
// before the first insert.
func (u *User) StoredVersion() int { return u.stored }

// MarkPersisted records that the current state has been written.
func (u *User) MarkPersisted() { u.stored = u.version }

// normalizeDisplayName trims the name; an empty name falls back to the
// local part of fallbackEmail when one is given.
func normalizeDisplayName(name, fallbackEmail string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" && fallbackEmail != "" {
		name, _, _ = strings.Cut(fallbackEmail, "@")
	}
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return "", ErrInvalidDisplayName
	}
	return name, nil
}

// Package credential covers stored platform credentials, the append-only
// integration activity log and daily usage counters.
package credential

import (
	"fmt"
	"strings"
	"time"

	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/id"
)

// Secrets holds the plaintext secret material. It is encrypted as a whole
// before it reaches storage.
type Secrets struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
	APISecret    string `json:"api_secret,omitempty"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
}

// Validate checks the fields each type cannot work without.
func (s Secrets) Validate(t Type) error {
	switch t {
	case TypeOAuth2, TypeBearerToken:
		if s.AccessToken == "" {
			return fmt.Errorf("%w: access_token", ErrMissingSecret)
		}
	case TypeAPIKey:
		if s.APIKey == "" {
			return fmt.Errorf("%w: api_key", ErrMissingSecret)
		}
	case TypeBasicAuth:
		if s.Username == "" || s.Password == "" {
			return fmt.Errorf("%w: username and password", ErrMissingSecret)
		}
	default:
		return ErrInvalidType
	}
	return nil
}

// Hint is the non-secret value shown in listings.
func (s Secrets) Hint() string {
	switch {
	case s.APIKey != "":
		return s.APIKey
	case s.AccessToken != "":
		return s.AccessToken
	default:
		return s.Username
	}
}

// Credential is one user's connection to one platform. There is at most one
// per (user, platform); saving again replaces it.
type Credential struct {
	id             uint
	sid            string
	userID         uint
	platform       string
	credentialType Type
	status         Status
	secrets        Secrets
	scopes         []string
	tokenExpiresAt *time.Time
	metadata       map[string]any
	usageCount     int64
	errorCount     int64
	lastUsedAt     *time.Time
	lastError      string
	createdAt      time.Time
	updatedAt      time.Time
}

func NewCredential(userID uint, platform string, t Type, secrets Secrets, scopes []string, expiresAt *time.Time, metadata map[string]any) (*Credential, error) {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		return nil, ErrPlatformRequired
	}
	if userID == 0 {
		return nil, fmt.Errorf("user is required")
	}
	if !t.IsValid() {
		return nil, ErrInvalidType
	}
	if err := secrets.Validate(t); err != nil {
		return nil, err
	}
	sid, err := id.New(id.PrefixCredential)
	if err != nil {
		return nil, fmt.Errorf("failed to generate credential ID: %w", err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	now := biztime.NowUTC()
	return &Credential{
		sid:            sid,
		userID:         userID,
		platform:       platform,
		credentialType: t,
		status:         StatusConnected,
		secrets:        secrets,
		scopes:         scopes,
		tokenExpiresAt: expiresAt,
		metadata:       metadata,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// State is the full persisted form of a credential.
type State struct {
	ID             uint
	SID            string
	UserID         uint
	Platform       string
	Type           Type
	Status         Status
	Secrets        Secrets
	Scopes         []string
	TokenExpiresAt *time.Time
	Metadata       map[string]any
	UsageCount     int64
	ErrorCount     int64
	LastUsedAt     *time.Time
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ReconstructCredential(s State) *Credential {
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	return &Credential{
		id:             s.ID,
		sid:            s.SID,
		userID:         s.UserID,
		platform:       s.Platform,
		credentialType: s.Type,
		status:         s.Status,
		secrets:        s.Secrets,
		scopes:         s.Scopes,
		tokenExpiresAt: s.TokenExpiresAt,
		metadata:       s.Metadata,
		usageCount:     s.UsageCount,
		errorCount:     s.ErrorCount,
		lastUsedAt:     s.LastUsedAt,
		lastError:      s.LastError,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
	}
}

func (c *Credential) ID() uint                   { return c.id }
func (c *Credential) SID() string                { return c.sid }
func (c *Credential) UserID() uint               { return c.userID }
func (c *Credential) Platform() string           { return c.platform }
func (c *Credential) Type() Type                 { return c.credentialType }
func (c *Credential) Status() Status             { return c.status }
func (c *Credential) Secrets() Secrets           { return c.secrets }
func (c *Credential) Scopes() []string           { return c.scopes }
func (c *Credential) TokenExpiresAt() *time.Time { return c.tokenExpiresAt }
func (c *Credential) Metadata() map[string]any   { return c.metadata }
func (c *Credential) UsageCount() int64          { return c.usageCount }
func (c *Credential) ErrorCount() int64          { return c.errorCount }
func (c *Credential) LastUsedAt() *time.Time     { return c.lastUsedAt }
func (c *Credential) LastError() string          { return c.lastError }
func (c *Credential) CreatedAt() time.Time       { return c.createdAt }
func (c *Credential) UpdatedAt() time.Time       { return c.updatedAt }

func (c *Credential) State() State {
	return State{
		ID:             c.id,
		SID:            c.sid,
		UserID:         c.userID,
		Platform:       c.platform,
		Type:           c.credentialType,
		Status:         c.status,
		Secrets:        c.secrets,
		Scopes:         c.scopes,
		TokenExpiresAt: c.tokenExpiresAt,
		Metadata:       c.metadata,
		UsageCount:     c.usageCount,
		ErrorCount:     c.errorCount,
		LastUsedAt:     c.lastUsedAt,
		LastError:      c.lastError,
		CreatedAt:      c.createdAt,
		UpdatedAt:      c.updatedAt,
	}
}

// IsExpired reports whether the token expiry has passed.
func (c *Credential) IsExpired(now time.Time) bool {
	return c.tokenExpiresAt != nil && !now.Before(*c.tokenExpiresAt)
}

// CanRefresh reports whether an OAuth refresh can be attempted.
func (c *Credential) CanRefresh() bool {
	return c.credentialType == TypeOAuth2 && c.secrets.RefreshToken != ""
}

// ApplyRefreshedToken stores a refreshed token. An empty refresh token keeps the old one.
func (c *Credential) ApplyRefreshedToken(accessToken, refreshToken string, expiresAt *time.Time) error {
	if accessToken == "" {
		return fmt.Errorf("%w: access_token", ErrMissingSecret)
	}
	c.secrets.AccessToken = accessToken
	if refreshToken != "" {
		c.secrets.RefreshToken = refreshToken
	}
	c.tokenExpiresAt = expiresAt
	c.status = StatusConnected
	c.lastError = ""
	c.updatedAt = biztime.NowUTC()
	return nil
}

func (c *Credential) MarkExpired() {
	c.status = StatusExpired
	c.updatedAt = biztime.NowUTC()
}

func (c *Credential) MarkError(message string) {
	c.status = StatusError
	c.lastError = message
	c.errorCount++
	c.updatedAt = biztime.NowUTC()
}

// RecordUsage counts one API call made with the credential.
func (c *Credential) RecordUsage(success bool, errMessage string) {
	now := biztime.NowUTC()
	c.usageCount++
	c.lastUsedAt = &now
	if !success {
		c.errorCount++
		c.lastError = errMessage
	}
	c.updatedAt = now
}

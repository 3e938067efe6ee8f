package dto

import (
	"time"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/shared/mapper"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

// CredentialResponse is the masked view; secrets never leave the server.
type CredentialResponse struct {
	ID             string         `json:"id"`
	Platform       string         `json:"platform"`
	CredentialType string         `json:"credential_type"`
	Status         string         `json:"status"`
	MaskedKey      string         `json:"masked_key,omitempty"`
	HasRefresh     bool           `json:"has_refresh_token"`
	Scopes         []string       `json:"scopes"`
	TokenExpiresAt *time.Time     `json:"token_expires_at,omitempty"`
	Metadata       map[string]any `json:"metadata"`
	UsageCount     int64          `json:"usage_count"`
	ErrorCount     int64          `json:"error_count"`
	LastUsedAt     *time.Time     `json:"last_used_at,omitempty"`
	LastError      string         `json:"last_error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type IntegrationLogResponse struct {
	ID           uint           `json:"id"`
	Platform     string         `json:"platform"`
	CredentialID string         `json:"credential_id,omitempty"`
	Action       string         `json:"action"`
	Level        string         `json:"level"`
	Message      string         `json:"message"`
	Details      map[string]any `json:"details"`
	CreatedAt    time.Time      `json:"created_at"`
}

type UsageStatResponse struct {
	Platform string `json:"platform"`
	Date     string `json:"date"`
	APICalls int64  `json:"api_calls"`
	Errors   int64  `json:"errors"`
}

type UsageStatsResponse struct {
	Days        int                  `json:"days"`
	TotalCalls  int64                `json:"total_calls"`
	TotalErrors int64                `json:"total_errors"`
	Stats       []*UsageStatResponse `json:"stats"`
}

type OAuthAuthorizeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

type SaveCredentialRequest struct {
	Platform       string         `json:"platform" binding:"required,platform_key"`
	CredentialType string         `json:"credential_type" binding:"required,oneof=oauth2 api_key bearer_token basic_auth"`
	AccessToken    string         `json:"access_token"`
	RefreshToken   string         `json:"refresh_token"`
	APIKey         string         `json:"api_key"`
	APISecret      string         `json:"api_secret"`
	Username       string         `json:"username"`
	Password       string         `json:"password"`
	Scopes         []string       `json:"scopes"`
	Metadata       map[string]any `json:"metadata"`
	ExpiresAt      *time.Time     `json:"expires_at"`
}

func (r *SaveCredentialRequest) Secrets() credential.Secrets {
	return credential.Secrets{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		APIKey:       r.APIKey,
		APISecret:    r.APISecret,
		Username:     r.Username,
		Password:     r.Password,
	}
}

type RecordUsageRequest struct {
	Platform     string `json:"platform" binding:"required,platform_key"`
	Success      *bool  `json:"success" binding:"required"`
	ErrorMessage string `json:"error_message" binding:"max=1000"`
}

type LogActivityRequest struct {
	Platform string         `json:"platform" binding:"omitempty,platform_key"`
	Action   string         `json:"action" binding:"required,max=64"`
	Level    string         `json:"level" binding:"omitempty,oneof=debug info warning error"`
	Message  string         `json:"message" binding:"max=2000"`
	Details  map[string]any `json:"details"`
}

type InitiateOAuthRequest struct {
	ReturnURL string `json:"return_url" binding:"omitempty,url"`
}

type OAuthCallbackRequest struct {
	State string `form:"state"`
	Code  string `form:"code"`
	Error string `form:"error"`
}

type ListLogsRequest struct {
	Platform string `form:"platform" binding:"omitempty,max=50"`
	Level    string `form:"level" binding:"omitempty,oneof=debug info warning error"`
	Action   string `form:"action" binding:"omitempty,max=64"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type UsageStatsRequest struct {
	Platform string `form:"platform" binding:"omitempty,max=50"`
	Days     int    `form:"days" binding:"omitempty,min=1,max=365"`
}

func ToCredentialResponse(c *credential.Credential) *CredentialResponse {
	scopes := c.Scopes()
	if scopes == nil {
		scopes = []string{}
	}
	return &CredentialResponse{
		ID:             c.SID(),
		Platform:       c.Platform(),
		CredentialType: string(c.Type()),
		Status:         string(c.Status()),
		MaskedKey:      utils.MaskSecret(c.Secrets().Hint()),
		HasRefresh:     c.Secrets().RefreshToken != "",
		Scopes:         scopes,
		TokenExpiresAt: c.TokenExpiresAt(),
		Metadata:       c.Metadata(),
		UsageCount:     c.UsageCount(),
		ErrorCount:     c.ErrorCount(),
		LastUsedAt:     c.LastUsedAt(),
		LastError:      c.LastError(),
		CreatedAt:      c.CreatedAt(),
		UpdatedAt:      c.UpdatedAt(),
	}
}

func ToCredentialResponses(creds []*credential.Credential) []*CredentialResponse {
	return mapper.MapSlice(creds, ToCredentialResponse)
}

func ToIntegrationLogResponse(l *credential.IntegrationLog) *IntegrationLogResponse {
	return &IntegrationLogResponse{
		ID:           l.ID,
		Platform:     l.Platform,
		CredentialID: l.CredentialSID,
		Action:       l.Action,
		Level:        string(l.Level),
		Message:      l.Message,
		Details:      l.Details,
		CreatedAt:    l.CreatedAt,
	}
}

func ToIntegrationLogResponses(logs []*credential.IntegrationLog) []*IntegrationLogResponse {
	return mapper.MapSlice(logs, ToIntegrationLogResponse)
}

func ToUsageStatsResponse(days int, totalCalls, totalErrors int64, stats []*credential.UsageStat) *UsageStatsResponse {
	resp := &UsageStatsResponse{
		Days:        days,
		TotalCalls:  totalCalls,
		TotalErrors: totalErrors,
		Stats:       make([]*UsageStatResponse, 0, len(stats)),
	}
	for _, s := range stats {
		resp.Stats = append(resp.Stats, &UsageStatResponse{
			Platform: s.Platform,
			Date:     s.Date.Format("2006-01-02"),
			APICalls: s.APICalls,
			Errors:   s.Errors,
		})
	}
	return resp
}

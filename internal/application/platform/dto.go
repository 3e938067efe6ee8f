package platform

import "time"

type ConnectionResponse struct {
	CredentialID string     `json:"credential_id"`
	Connected    bool       `json:"connected"`
	Status       string     `json:"status"`
	Type         string     `json:"credential_type"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	MaskedKey    string     `json:"masked_key,omitempty"`
}

type PlatformResponse struct {
	Key        string              `json:"key"`
	Name       string              `json:"name"`
	Category   string              `json:"category"`
	AuthTypes  []string            `json:"auth_types"`
	OAuthReady bool                `json:"oauth_ready"`
	Scopes     []string            `json:"scopes,omitempty"`
	Connection *ConnectionResponse `json:"connection"`
}

func ToPlatformResponse(v View) *PlatformResponse {
	p := v.Platform
	resp := &PlatformResponse{
		Key:        p.Key,
		Name:       p.Name,
		Category:   string(p.Category),
		AuthTypes:  make([]string, 0, len(p.AuthTypes)),
		OAuthReady: p.OAuthReady(),
	}
	for _, t := range p.AuthTypes {
		resp.AuthTypes = append(resp.AuthTypes, string(t))
	}
	if p.OAuth != nil {
		resp.Scopes = p.OAuth.Scopes
	}
	if c := v.Connection; c != nil {
		resp.Connection = &ConnectionResponse{
			CredentialID: c.CredentialSID,
			Connected:    c.Connected,
			Status:       string(c.Status),
			Type:         string(c.Type),
			ExpiresAt:    c.ExpiresAt,
			MaskedKey:    c.MaskedKey,
		}
	}
	return resp
}

// Package oauth performs the OAuth 2.0 authorization code flow against
// third-party platforms.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/connecthub/connecthub/internal/domain/platform"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

const httpClientTimeout = 30 * time.Second

var ErrPlatformNotConfigured = errors.New("platform has no oauth client configured")

// Token is the part of an OAuth token response that gets stored.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       *time.Time
	Scopes       []string
}

// PlatformClient builds per-platform oauth2 configs on demand. Concurrent
// refreshes of the same credential share one round trip.
type PlatformClient struct {
	baseURL    string
	httpClient *http.Client
	refreshes  singleflight.Group
	logger     logger.Interface
}

func NewPlatformClient(baseURL string, httpClient *http.Client, log logger.Interface) *PlatformClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpClientTimeout}
	}
	return &PlatformClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     log,
	}
}

// RedirectURL is the callback registered with the platform.
func (c *PlatformClient) RedirectURL(platformKey string) string {
	return c.baseURL + "/api/credentials/oauth/" + platformKey + "/callback"
}

func (c *PlatformClient) config(p *platform.Platform) (*oauth2.Config, error) {
	if !p.OAuthReady() {
		return nil, ErrPlatformNotConfigured
	}
	return &oauth2.Config{
		ClientID:     p.OAuth.ClientID,
		ClientSecret: p.OAuth.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.OAuth.AuthURL,
			TokenURL: p.OAuth.TokenURL,
		},
		RedirectURL: c.RedirectURL(p.Key),
		Scopes:      p.OAuth.Scopes,
	}, nil
}

func (c *PlatformClient) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// AuthCodeURL returns the consent URL carrying the S256 PKCE challenge.
func (c *PlatformClient) AuthCodeURL(p *platform.Platform, state, verifier string) (string, error) {
	cfg, err := c.config(p)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier)), nil
}

// Exchange trades an authorization code for a token.
func (c *PlatformClient) Exchange(ctx context.Context, p *platform.Platform, code, verifier string) (*Token, error) {
	cfg, err := c.config(p)
	if err != nil {
		return nil, err
	}
	tok, err := cfg.Exchange(c.withHTTPClient(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		c.logger.Warnw("oauth code exchange failed", "platform", p.Key, "error", err)
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return toToken(tok, cfg.Scopes), nil
}

// Refresh obtains a new access token. Calls with the same key while one is
// in flight wait for and share its result.
func (c *PlatformClient) Refresh(ctx context.Context, p *platform.Platform, key, refreshToken string) (*Token, error) {
	cfg, err := c.config(p)
	if err != nil {
		return nil, err
	}
	v, err, shared := c.refreshes.Do(key, func() (any, error) {
		src := cfg.TokenSource(c.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
		tok, err := src.Token()
		if err != nil {
			return nil, err
		}
		return toToken(tok, cfg.Scopes), nil
	})
	if err != nil {
		c.logger.Warnw("oauth token refresh failed", "platform", p.Key, "key", key, "error", err)
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if shared {
		c.logger.Debugw("oauth refresh shared with concurrent caller", "key", key)
	}
	return v.(*Token), nil
}

func toToken(tok *oauth2.Token, requested []string) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scopes:       grantedScopes(tok, requested),
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry.UTC()
		out.Expiry = &expiry
	}
	return out
}

// grantedScopes prefers the scope field of the token response, which
// platforms separate with spaces or commas.
func grantedScopes(tok *oauth2.Token, requested []string) []string {
	raw, _ := tok.Extra("scope").(string)
	if raw == "" {
		return append([]string(nil), requested...)
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return append([]string(nil), requested...)
	}
	return fields
}

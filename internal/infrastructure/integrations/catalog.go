// Package integrations assembles the platform registry from the built-in
// catalog and configuration overrides.
package integrations

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
	"github.com/connecthub/connecthub/internal/shared/config"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

type builtin struct {
	key       string
	name      string
	category  platform.Category
	authTypes []credential.Type
	endpoint  *oauth2.Endpoint
	scopes    []string
}

var (
	oauth     = credential.TypeOAuth2
	apiKey    = credential.TypeAPIKey
	bearer    = credential.TypeBearerToken
	basicAuth = credential.TypeBasicAuth
)

func ep(authURL, tokenURL string) *oauth2.Endpoint {
	return &oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
}

var builtins = []builtin{
	{"facebook", "Facebook", platform.CategorySocial, []credential.Type{oauth}, &endpoints.Facebook, []string{"pages_show_list", "pages_manage_posts"}},
	{"instagram", "Instagram", platform.CategorySocial, []credential.Type{oauth}, &endpoints.Instagram, []string{"user_profile", "user_media"}},
	{"linkedin", "LinkedIn", platform.CategorySocial, []credential.Type{oauth}, &endpoints.LinkedIn, []string{"r_liteprofile", "w_member_social"}},
	{"twitter", "X (Twitter)", platform.CategorySocial, []credential.Type{oauth, bearer},
		ep("https://twitter.com/i/oauth2/authorize", "https://api.twitter.com/2/oauth2/token"), []string{"tweet.read", "tweet.write", "users.read", "offline.access"}},
	{"stripe", "Stripe", platform.CategoryPayments, []credential.Type{apiKey}, nil, nil},
	{"paypal", "PayPal", platform.CategoryPayments, []credential.Type{oauth, basicAuth}, &endpoints.PayPal, []string{"openid"}},
	{"hubspot", "HubSpot", platform.CategoryCRM, []credential.Type{oauth, bearer},
		ep("https://app.hubspot.com/oauth/authorize", "https://api.hubapi.com/oauth/v1/token"), []string{"crm.objects.contacts.read", "crm.objects.contacts.write"}},
	{"salesforce", "Salesforce", platform.CategoryCRM, []credential.Type{oauth},
		ep("https://login.salesforce.com/services/oauth2/authorize", "https://login.salesforce.com/services/oauth2/token"), []string{"api", "refresh_token"}},
	{"gmail", "Gmail", platform.CategoryEmail, []credential.Type{oauth}, &google.Endpoint, []string{"https://www.googleapis.com/auth/gmail.send"}},
	{"mailchimp", "Mailchimp", platform.CategoryEmail, []credential.Type{oauth, apiKey}, &endpoints.Mailchimp, nil},
	{"sendgrid", "SendGrid", platform.CategoryEmail, []credential.Type{apiKey}, nil, nil},
	{"slack", "Slack", platform.CategoryMessaging, []credential.Type{oauth, bearer}, &endpoints.Slack, []string{"chat:write", "channels:read"}},
	{"twilio", "Twilio", platform.CategoryMessaging, []credential.Type{basicAuth, apiKey}, nil, nil},
	{"shopify", "Shopify", platform.CategoryEcommerce, []credential.Type{apiKey, bearer}, nil, nil},
	{"github", "GitHub", platform.CategoryProductivity, []credential.Type{oauth, bearer}, &github.Endpoint, []string{"repo", "read:user"}},
	{"notion", "Notion", platform.CategoryProductivity, []credential.Type{oauth, bearer},
		ep("https://api.notion.com/v1/oauth/authorize", "https://api.notion.com/v1/oauth/token"), nil},
}

var titleCaser = cases.Title(language.English)

// DisplayName derives a name for platforms configured without one.
func DisplayName(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	return titleCaser.String(strings.Join(words, " "))
}

// BuildRegistry merges the built-in catalog with cfg. Configured keys
// override built-in fields they set; unknown keys add platforms.
func BuildRegistry(cfg map[string]config.PlatformConfig, log logger.Interface) (*platform.Registry, error) {
	byKey := make(map[string]*platform.Platform, len(builtins))
	for _, b := range builtins {
		p := &platform.Platform{
			Key:       b.key,
			Name:      b.name,
			Category:  b.category,
			AuthTypes: append([]credential.Type(nil), b.authTypes...),
		}
		if b.endpoint != nil {
			p.OAuth = &platform.OAuthSettings{
				AuthURL:  b.endpoint.AuthURL,
				TokenURL: b.endpoint.TokenURL,
				Scopes:   append([]string(nil), b.scopes...),
			}
		}
		byKey[b.key] = p
	}

	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rawKey := range keys {
		pc := cfg[rawKey]
		key := strings.ToLower(strings.TrimSpace(rawKey))
		if pc.Disabled {
			delete(byKey, key)
			continue
		}
		p, ok := byKey[key]
		if !ok {
			p = &platform.Platform{Key: key, Name: DisplayName(key), Category: platform.CategoryProductivity}
			byKey[key] = p
		}
		if err := applyOverride(p, pc); err != nil {
			return nil, fmt.Errorf("platform %q: %w", key, err)
		}
		if log != nil {
			log.Debugw("platform configured", "platform", key, "oauth_ready", p.OAuthReady())
		}
	}

	list := make([]*platform.Platform, 0, len(byKey))
	for _, p := range byKey {
		if len(p.AuthTypes) == 0 {
			return nil, fmt.Errorf("platform %q has no auth types", p.Key)
		}
		list = append(list, p)
	}
	return platform.NewRegistry(list), nil
}

func applyOverride(p *platform.Platform, pc config.PlatformConfig) error {
	if pc.Name != "" {
		p.Name = pc.Name
	}
	if pc.Category != "" {
		cat := platform.Category(strings.ToLower(pc.Category))
		if !cat.IsValid() {
			return fmt.Errorf("unknown category %q", pc.Category)
		}
		p.Category = cat
	}
	if len(pc.AuthTypes) > 0 {
		types := make([]credential.Type, 0, len(pc.AuthTypes))
		for _, raw := range pc.AuthTypes {
			t := credential.Type(strings.ToLower(raw))
			if !t.IsValid() {
				return fmt.Errorf("unknown auth type %q", raw)
			}
			types = append(types, t)
		}
		p.AuthTypes = types
	}

	if pc.ClientID == "" && pc.ClientSecret == "" && pc.AuthURL == "" && pc.TokenURL == "" && len(pc.Scopes) == 0 {
		return nil
	}
	if p.OAuth == nil {
		p.OAuth = &platform.OAuthSettings{}
	}
	if pc.ClientID != "" {
		p.OAuth.ClientID = pc.ClientID
	}
	if pc.ClientSecret != "" {
		p.OAuth.ClientSecret = pc.ClientSecret
	}
	if pc.AuthURL != "" {
		p.OAuth.AuthURL = pc.AuthURL
	}
	if pc.TokenURL != "" {
		p.OAuth.TokenURL = pc.TokenURL
	}
	if len(pc.Scopes) > 0 {
		p.OAuth.Scopes = append([]string(nil), pc.Scopes...)
	}
	return nil
}

// Package platform describes the third-party services credentials can be
// stored for and how each one authenticates.
package platform

import (
	"errors"
	"sort"
	"strings"

	"github.com/connecthub/connecthub/internal/domain/credential"
)

var ErrPlatformNotFound = errors.New("platform not found")

type Category string

const (
	CategorySocial       Category = "social"
	CategoryPayments     Category = "payments"
	CategoryCRM          Category = "crm"
	CategoryEmail        Category = "email"
	CategoryMessaging    Category = "messaging"
	CategoryEcommerce    Category = "ecommerce"
	CategoryProductivity Category = "productivity"
)

var validCategories = map[Category]bool{
	CategorySocial: true, CategoryPayments: true, CategoryCRM: true, CategoryEmail: true,
	CategoryMessaging: true, CategoryEcommerce: true, CategoryProductivity: true,
}

func (c Category) IsValid() bool { return validCategories[c] }

// OAuthSettings are the OAuth 2.0 endpoints and client registration of a platform.
type OAuthSettings struct {
	AuthURL      string
	TokenURL     string
	Scopes       []string
	ClientID     string
	ClientSecret string
}

type Platform struct {
	Key       string
	Name      string
	Category  Category
	AuthTypes []credential.Type
	OAuth     *OAuthSettings
}

func (p *Platform) Supports(t credential.Type) bool {
	for _, at := range p.AuthTypes {
		if at == t {
			return true
		}
	}
	return false
}

// OAuthReady reports whether the OAuth connect flow can be started.
func (p *Platform) OAuthReady() bool {
	return p.Supports(credential.TypeOAuth2) &&
		p.OAuth != nil && p.OAuth.ClientID != "" && p.OAuth.AuthURL != "" && p.OAuth.TokenURL != ""
}

// Registry is the immutable set of platforms known to the server.
type Registry struct {
	byKey   map[string]*Platform
	ordered []*Platform
}

// NewRegistry orders platforms by category then name.
func NewRegistry(platforms []*Platform) *Registry {
	r := &Registry{byKey: make(map[string]*Platform, len(platforms))}
	for _, p := range platforms {
		r.byKey[p.Key] = p
	}
	for _, p := range r.byKey {
		r.ordered = append(r.ordered, p)
	}
	sort.Slice(r.ordered, func(i, j int) bool {
		a, b := r.ordered[i], r.ordered[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Name < b.Name
	})
	return r
}

func (r *Registry) Get(key string) (*Platform, error) {
	p, ok := r.byKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, ErrPlatformNotFound
	}
	return p, nil
}

func (r *Registry) List() []*Platform {
	return append([]*Platform(nil), r.ordered...)
}

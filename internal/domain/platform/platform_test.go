package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/domain/credential"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry([]*Platform{
		{Key: "stripe", Name: "Stripe", Category: CategoryPayments, AuthTypes: []credential.Type{credential.TypeAPIKey}},
		{Key: "hubspot", Name: "HubSpot", Category: CategoryCRM, AuthTypes: []credential.Type{credential.TypeOAuth2}},
		{Key: "paypal", Name: "PayPal", Category: CategoryPayments},
	})

	keys := []string{}
	for _, p := range r.List() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"hubspot", "paypal", "stripe"}, keys)

	p, err := r.Get(" Stripe ")
	require.NoError(t, err)
	assert.True(t, p.Supports(credential.TypeAPIKey))
	assert.False(t, p.Supports(credential.TypeOAuth2))

	_, err = r.Get("myspace")
	assert.ErrorIs(t, err, ErrPlatformNotFound)
}

func TestOAuthReady(t *testing.T) {
	p := &Platform{Key: "google", AuthTypes: []credential.Type{credential.TypeOAuth2}}
	assert.False(t, p.OAuthReady())

	p.OAuth = &OAuthSettings{AuthURL: "https://a", TokenURL: "https://t"}
	assert.False(t, p.OAuthReady(), "client id required")

	p.OAuth.ClientID = "cid"
	assert.True(t, p.OAuthReady())
}

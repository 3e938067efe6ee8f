package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/application/testutil"
	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/platform"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
)

func testRegistry() *platform.Registry {
	return platform.NewRegistry([]*platform.Platform{
		{Key: "stripe", Name: "Stripe", Category: platform.CategoryPayments, AuthTypes: []credential.Type{credential.TypeAPIKey}},
		{Key: "slack", Name: "Slack", Category: platform.CategoryMessaging, AuthTypes: []credential.Type{credential.TypeOAuth2}},
	})
}

func TestListPlatforms_JoinsConnections(t *testing.T) {
	s := testutil.NewStack(t)
	svc := NewService(testRegistry(), s.Credentials, s.Log)
	u := s.CreateUser(t, "dana@example.com")
	s.SaveCredential(t, u, "stripe")

	views, err := svc.ListPlatforms(context.Background(), u.ID())
	require.NoError(t, err)
	require.Len(t, views, 2)

	byKey := map[string]View{}
	for _, v := range views {
		byKey[v.Platform.Key] = v
	}
	require.NotNil(t, byKey["stripe"].Connection)
	conn := byKey["stripe"].Connection
	assert.True(t, conn.Connected)
	assert.Equal(t, credential.TypeAPIKey, conn.Type)
	assert.NotContains(t, conn.MaskedKey, "sk_test_")
	assert.Nil(t, byKey["slack"].Connection)

	other := s.CreateUser(t, "erin@example.com")
	views, err = svc.ListPlatforms(context.Background(), other.ID())
	require.NoError(t, err)
	for _, v := range views {
		assert.Nil(t, v.Connection, "connections are per user")
	}
}

func TestGetPlatform(t *testing.T) {
	s := testutil.NewStack(t)
	svc := NewService(testRegistry(), s.Credentials, s.Log)
	u := s.CreateUser(t, "dana@example.com")

	v, err := svc.GetPlatform(context.Background(), u.ID(), "SLACK")
	require.NoError(t, err)
	assert.Equal(t, "slack", v.Platform.Key)
	assert.False(t, ToPlatformResponse(*v).OAuthReady)

	_, err = svc.GetPlatform(context.Background(), u.ID(), "myspace")
	assert.True(t, apperrors.IsNotFoundError(err))
}

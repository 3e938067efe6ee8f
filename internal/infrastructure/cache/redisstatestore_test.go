package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisStateStore_ConsumeOnce(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisStateStore(client, "oauth:state:", 10*time.Minute)
	ctx := context.Background()

	err := store.Save(ctx, "abc", OAuthState{UserSID: "usr_1", Platform: "slack", CodeVerifier: "v1", ReturnURL: "/integrations"})
	require.NoError(t, err)

	info, err := store.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "usr_1", info.UserSID)
	assert.Equal(t, "slack", info.Platform)
	assert.Equal(t, "v1", info.CodeVerifier)
	assert.Equal(t, "/integrations", info.ReturnURL)
	assert.False(t, info.CreatedAt.IsZero())

	_, err = store.Consume(ctx, "abc")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStateStore_Expires(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStateStore(client, "oauth:state:", time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ttl", OAuthState{CodeVerifier: "v"}))
	assert.Equal(t, time.Minute, mr.TTL("oauth:state:ttl"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Consume(ctx, "ttl")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStateStore_Validation(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisStateStore(client, "oauth:state:", time.Minute)
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", OAuthState{CodeVerifier: "v"}))
	assert.Error(t, store.Save(ctx, "s", OAuthState{}))

	_, err := store.Consume(ctx, "")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

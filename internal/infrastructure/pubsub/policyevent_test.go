package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/shared/logger"
)

func TestRedisPolicyEventBus_DeliversToOtherInstances(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	newBus := func() *RedisPolicyEventBus {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedisPolicyEventBus(client, logger.NewNopLogger())
	}
	a, b := newBus(), newBus()
	require.NotEqual(t, a.InstanceID(), b.InstanceID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fromA := make(chan PolicyChangeEvent, 1)
	fromB := make(chan PolicyChangeEvent, 1)
	readyA, readyB := make(chan struct{}), make(chan struct{})
	go func() { _ = a.Subscribe(ctx, func(_ context.Context, e PolicyChangeEvent) { fromA <- e }, readyA) }()
	go func() { _ = b.Subscribe(ctx, func(_ context.Context, e PolicyChangeEvent) { fromB <- e }, readyB) }()
	<-readyA
	<-readyB

	require.NoError(t, a.PublishPolicyChanged(ctx, "ws_1"))

	select {
	case e := <-fromB:
		assert.Equal(t, "ws_1", e.WorkspaceSID)
		assert.Equal(t, a.InstanceID(), e.InstanceID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered to the other instance")
	}

	select {
	case <-fromA:
		t.Fatal("publisher received its own event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRedisPolicyEventBus_SubscribeStopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bus := NewRedisPolicyEventBus(client, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- bus.Subscribe(ctx, func(context.Context, PolicyChangeEvent) {}, ready) }()
	<-ready
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscribe did not return after cancel")
	}
}

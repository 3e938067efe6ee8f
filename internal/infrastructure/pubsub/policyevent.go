// Package pubsub relays cross-instance notifications over Redis Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/goroutine"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

const policyChangeChannel = "connecthub:permission:policy"

// PolicyChangeEvent tells other instances that casbin rules changed.
type PolicyChangeEvent struct {
	WorkspaceSID string `json:"workspace_sid"`
	InstanceID   string `json:"instance_id"`
	Timestamp    int64  `json:"timestamp"`
}

type PolicyEventHandler func(ctx context.Context, event PolicyChangeEvent)

// RedisPolicyEventBus publishes and receives policy change events. Events
// published by this instance are not delivered back to it.
type RedisPolicyEventBus struct {
	client     *redis.Client
	instanceID string
	logger     logger.Interface
}

func NewRedisPolicyEventBus(client *redis.Client, log logger.Interface) *RedisPolicyEventBus {
	return &RedisPolicyEventBus{
		client:     client,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (b *RedisPolicyEventBus) InstanceID() string {
	return b.instanceID
}

func (b *RedisPolicyEventBus) PublishPolicyChanged(ctx context.Context, workspaceSID string) error {
	data, err := json.Marshal(PolicyChangeEvent{
		WorkspaceSID: workspaceSID,
		InstanceID:   b.instanceID,
		Timestamp:    biztime.NowUTC().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, policyChangeChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish policy change event",
			"workspace_sid", workspaceSID,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("policy change event published", "workspace_sid", workspaceSID)
	return nil
}

// Notifier adapts PublishPolicyChanged to the enforcer's change callback.
func (b *RedisPolicyEventBus) Notifier() func(workspaceSID string) {
	return func(workspaceSID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = b.PublishPolicyChanged(ctx, workspaceSID)
	}
}

// Subscribe blocks until ctx is done, re-subscribing after connection loss.
// ready, if not nil, is closed once the first subscription is confirmed.
func (b *RedisPolicyEventBus) Subscribe(ctx context.Context, handler PolicyEventHandler, ready chan<- struct{}) error {
	backoff := time.Second
	for {
		err := b.subscribe(ctx, handler, ready)
		ready = nil
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warnw("policy event subscription lost, reconnecting",
			"error", err,
			"retry_in", backoff,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (b *RedisPolicyEventBus) subscribe(ctx context.Context, handler PolicyEventHandler, ready chan<- struct{}) error {
	ps := b.client.Subscribe(ctx, policyChangeChannel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	b.logger.Infow("subscribed to policy change events", "channel", policyChangeChannel)
	if ready != nil {
		close(ready)
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("policy event channel closed")
			}

			var event PolicyChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warnw("failed to unmarshal policy event", "payload", msg.Payload, "error", err)
				continue
			}
			if event.InstanceID == b.instanceID {
				continue
			}

			goroutine.SafeGo(b.logger, "policy-event-handler", func() {
				handler(context.Background(), event)
			})
		}
	}
}

// Package cache holds the Redis-backed short-lived stores.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/connecthub/connecthub/internal/shared/biztime"
)

var ErrStateNotFound = errors.New("oauth state not found or expired")

// OAuthState is what the authorize step remembers for its callback.
type OAuthState struct {
	UserSID      string    `json:"user_sid"`
	Platform     string    `json:"platform"`
	CodeVerifier string    `json:"code_verifier"`
	ReturnURL    string    `json:"return_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RedisStateStore keeps OAuth states under prefix+state with a TTL.
type RedisStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStateStore) Save(ctx context.Context, state string, info OAuthState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if info.CodeVerifier == "" {
		return errors.New("code_verifier cannot be empty")
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = biztime.NowUTC()
	}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal oauth state: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+state, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth state in redis: %w", err)
	}
	return nil
}

// Consume returns the stored state and deletes it atomically with GETDEL,
// so a state is good for exactly one callback.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (*OAuthState, error) {
	if state == "" {
		return nil, ErrStateNotFound
	}
	data, err := s.client.GetDel(ctx, s.prefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to retrieve oauth state from redis: %w", err)
	}
	var info OAuthState
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal oauth state: %w", err)
	}
	return &info, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shoushou-fitness/clubbot/internal/domain"
)

const stateKeyPrefix = "clubbot:state:"

// RedisStateStore implements domain.StateStore using Redis
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration // 0 means no expiry
}

// NewRedisStateStore connects to redisURL and verifies the connection.
func NewRedisStateStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStateStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStateStoreFromClient(client, ttl), nil
}

// NewRedisStateStoreFromClient wraps an existing client.
func NewRedisStateStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

func (r *RedisStateStore) stateKey(userID string) string {
	return stateKeyPrefix + userID
}

// Get returns Idle when no state is stored.
func (r *RedisStateStore) Get(ctx context.Context, userID string) (domain.ConversationState, error) {
	data, err := r.client.Get(ctx, r.stateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Idle, nil
	}
	if err != nil {
		return domain.Idle, fmt.Errorf("failed to load state from Redis: %w", err)
	}

	var state domain.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.Idle, fmt.Errorf("failed to parse state data: %w", err)
	}
	return state, nil
}

// Set overwrites the user's state. Setting Idle deletes the key.
func (r *RedisStateStore) Set(ctx context.Context, userID string, state domain.ConversationState) error {
	if state.IsIdle() {
		return r.Clear(ctx, userID)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := r.client.Set(ctx, r.stateKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save state to Redis: %w", err)
	}
	return nil
}

func (r *RedisStateStore) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.stateKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection is alive.
func (r *RedisStateStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStateStore) Close() error {
	return r.client.Close()
}

// Package cache stores JSON-encodable values by string key with a TTL.
// Values are stored encoded, so a hit always returns a fresh copy.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort key/value cache.
type Cache interface {
	// Get decodes the value stored at key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Name() string
}

// Memory is an in-process cache.
type Memory struct {
	c *gocache.Cache
}

// NewMemory returns a Memory cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{c: gocache.New(ttl, 2*ttl)}
}

// Name implements Cache.
func (m *Memory) Name() string { return "memory" }

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	b, _ := v.([]byte)
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("decoding cached %q: %w", key, err)
	}
	return true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	m.c.SetDefault(key, b)
	return nil
}

// Redis is a cache shared between processes.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to addr and checks the connection.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Redis{client: client, prefix: "wastesort:", ttl: ttl}, nil
}

// Name implements Cache.
func (r *Redis) Name() string { return "redis" }

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("decoding cached %q: %w", key, err)
	}
	return true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }

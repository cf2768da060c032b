// Package cache provides the fast-path snapshot cache backing
// stale-while-revalidate reads: redis in production, memory for tests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tillpos/internal/domain/catalog"
)

const snapshotKey = "tillpos:catalog:snapshot"

// Redis implements catalog.SnapshotCache on a redis instance. The entry
// keeps its own timestamp; the TTL is only a safety net well above the
// staleness threshold.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// Config configures the redis cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedis(ctx context.Context, cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context) (*catalog.CacheEntry, bool, error) {
	raw, err := r.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get snapshot cache: %w", err)
	}

	var entry catalog.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("unmarshal snapshot cache: %w", err)
	}
	return &entry, true, nil
}

func (r *Redis) Set(ctx context.Context, entry catalog.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal snapshot cache: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot cache: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

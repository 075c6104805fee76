// Package cache keeps short-lived state in Redis: revoked session tokens and
// per-user unread notification counters. A nil *Cache is a valid no-op cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokedPrefix = "auth:revoked:"
	unreadPrefix  = "notifications:unread:"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect dials the Redis server described by url and verifies it with PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// New wraps client. ttl bounds how long unread counters are trusted.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// RevokeToken marks jti as revoked until the token would have expired anyway.
func (c *Cache) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if !c.enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}

func (c *Cache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !c.enabled() || jti == "" {
		return false, nil
	}
	n, err := c.client.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UnreadCount returns the cached counter; ok is false on a miss.
func (c *Cache) UnreadCount(ctx context.Context, userID string) (count int64, ok bool, err error) {
	if !c.enabled() {
		return 0, false, nil
	}
	val, err := c.client.Get(ctx, unreadPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry, treat as a miss
		return 0, false, nil
	}
	return count, true, nil
}

func (c *Cache) SetUnreadCount(ctx context.Context, userID string, count int64) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Set(ctx, unreadPrefix+userID, count, c.ttl).Err()
}

func (c *Cache) InvalidateUnread(ctx context.Context, userIDs ...string) error {
	if !c.enabled() || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, unreadPrefix+id)
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.client.Close()
}

// Package ratelimit provides login throttles implementing
// auth.LoginThrottle.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/config"
	"github.com/redis/go-redis/v9"
)

var (
	_ auth.LoginThrottle = (*Memory)(nil)
	_ auth.LoginThrottle = (*Redis)(nil)
)

// FromConfig returns nil when throttling is disabled, a redis backed
// throttle when redis.addr is set and an in-memory one otherwise. The
// returned close func releases the redis client.
func FromConfig(ctx context.Context, limit config.LoginLimitConfig, rc config.RedisConfig) (auth.LoginThrottle, func() error, error) {
	noop := func() error { return nil }

	if limit.MaxAttempts <= 0 {
		return nil, noop, nil
	}

	if !rc.Enabled() {
		memory := NewMemory(limit.MaxAttempts, limit.Window)
		return memory, memory.StartCleanup(cleanupInterval(limit.Window)), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, noop, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedis(client, limit.MaxAttempts, limit.Window), client.Close, nil
}

// cleanupInterval sweeps once per window, bounded to [1m, 10m]
func cleanupInterval(window time.Duration) time.Duration {
	switch {
	case window < time.Minute:
		return time.Minute
	case window > 10*time.Minute:
		return 10 * time.Minute
	default:
		return window
	}
}

package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "login:attempts:"

// Redis keeps failure counters in redis so every server instance sees
// the same totals. The window starts at the first failure.
type Redis struct {
	client redis.Cmdable
	max    int
	window time.Duration
	prefix string
}

// NewRedis allows max failures per key inside window
func NewRedis(client redis.Cmdable, max int, window time.Duration) *Redis {
	return &Redis{
		client: client,
		max:    max,
		window: window,
		prefix: DefaultKeyPrefix,
	}
}

// WithPrefix changes the key namespace
func (r *Redis) WithPrefix(prefix string) *Redis {
	r.prefix = prefix
	return r
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	if r.max <= 0 {
		return true, nil
	}

	count, err := r.client.Get(ctx, r.prefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return count < r.max, nil
}

func (r *Redis) Failure(ctx context.Context, key string) error {
	if r.max <= 0 {
		return nil
	}

	k := r.prefix + key
	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return r.client.Expire(ctx, k, r.window).Err()
	}
	return nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

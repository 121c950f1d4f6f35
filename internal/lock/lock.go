package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "synclock"

// Locker hands out per-tenant sync leases backed by Redis SET NX. With a nil
// client locking is disabled and every Acquire succeeds, which is the correct
// behavior for single-instance deployments without Redis.
type Locker struct {
	redis redis.Cmdable
	ttl   time.Duration
}

func New(redis redis.Cmdable, ttl time.Duration) *Locker {
	return &Locker{redis: redis, ttl: ttl}
}

// Lease is a held lock. Release is safe to call once the work is done; an
// expired lease releases itself through the TTL.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// Acquire attempts to take the tenant's sync lease. ok is false when another
// instance already holds it.
func (l *Locker) Acquire(ctx context.Context, name string) (lease *Lease, ok bool, err error) {
	if l.redis == nil {
		return &Lease{}, true, nil
	}

	key := redisKey(name)
	token := uuid.NewString()
	ok, err = l.redis.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Lease{locker: l, key: key, token: token}, true, nil
}

// Release gives the lease back. A lease whose TTL already expired, or that
// another instance re-acquired, is left alone.
func (le *Lease) Release(ctx context.Context) {
	if le.locker == nil || le.locker.redis == nil {
		return
	}
	val, err := le.locker.redis.Get(ctx, le.key).Result()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("lock release lookup failed", zap.String("key", le.key), zap.Error(err))
		}
		return
	}
	if val != le.token {
		return
	}
	if err := le.locker.redis.Del(ctx, le.key).Err(); err != nil {
		zap.L().Warn("lock release failed", zap.String("key", le.key), zap.Error(err))
	}
}

func redisKey(name string) string {
	return fmt.Sprintf("%s:%s", redisKeyPrefix, name)
}

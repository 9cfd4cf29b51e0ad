package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
)

// ErrLockHeld is returned by Locker.Obtain when another replica holds the key
var ErrLockHeld = errors.New("lock held elsewhere")

// Lock is a held lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains named, expiring locks shared across replicas
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// RedisLocker locks through redis with bsm/redislock
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker wraps a redis client; any go-redis client satisfies redislock.RedisClient
func NewRedisLocker(rdb redislock.RedisClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockHeld
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// NoopLocker always succeeds. Used when redis is not configured; the sweep is
// idempotent so concurrent replicas only waste work.
type NoopLocker struct{}

func (NoopLocker) Obtain(context.Context, string, time.Duration) (Lock, error) {
	return noopLock{}, nil
}

type noopLock struct{}

func (noopLock) Release(context.Context) error { return nil }

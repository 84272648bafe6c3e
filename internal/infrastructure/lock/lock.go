// Package lock serializes investing passes so two requests never spend the
// same remaining capacity.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrNotAcquired is returned when the lock could not be taken before the context ended.
var ErrNotAcquired = errors.New("investing lock not acquired")

const (
	DefaultKey   = "investing:lock"
	DefaultTTL   = 30 * time.Second
	DefaultRetry = 25 * time.Millisecond
)

// Locker guards one shared resource. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context) (func(), error)
}

// Local is the process-wide fallback used when no Locker is configured.
var Local Locker = NewLocal()

// LocalLocker is an in-process lock that honours context cancellation.
type LocalLocker struct {
	sem chan struct{}
}

func NewLocal() *LocalLocker {
	return &LocalLocker{sem: make(chan struct{}, 1)}
}

func (l *LocalLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrNotAcquired, ctx.Err())
	}
}

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lock shared by every API instance.
// TTL bounds how long a crashed holder can block others.
type RedisLocker struct {
	Rdb   *redis.Client
	Key   string
	TTL   time.Duration
	Retry time.Duration
}

func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	key, ttl, retry := l.Key, l.TTL, l.Retry
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if retry <= 0 {
		retry = DefaultRetry
	}
	token := uuid.NewString()

	for {
		ok, err := l.Rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrNotAcquired, ctx.Err())
			}
			return nil, fmt.Errorf("redis lock: %w", err)
		}
		if ok {
			return func() {
				if err := releaseScript.Run(context.Background(), l.Rdb, []string{key}, token).Err(); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("investing lock release failed")
				}
			}, nil
		}
		select {
		case <-time.After(retry):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrNotAcquired, ctx.Err())
		}
	}
}

// WithTimeout takes l within timeout; a zero timeout waits as long as ctx allows.
func WithTimeout(ctx context.Context, l Locker, timeout time.Duration) (func(), error) {
	if l == nil {
		l = Local
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return l.Lock(ctx)
}

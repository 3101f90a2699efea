// Package cache wraps Redis for the summary read-through cache and the
// per-user refresh lock. Redis is optional: when it cannot be reached every
// operation degrades to a miss or an uncontended lock.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"jobpilot/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL     = 10 * time.Minute
	defaultLockTTL = 30 * time.Second
	pingTimeout    = 2 * time.Second
)

var ErrUnavailable = errors.New("redis unavailable")

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Redis struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
	prefix string

	degraded atomic.Bool
}

func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Redis{logger: logger.Named("cache"), ttl: cfg.TTL, prefix: cfg.KeyPrefix}
	if r.ttl <= 0 {
		r.ttl = defaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		r.logger.Warn("redis unavailable, running without cache", zap.String("addr", cfg.Addr()), zap.Error(err))
		_ = client.Close()
		return r
	}

	r.logger.Info("redis connected", zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
	r.client = client
	return r
}

// Disabled returns a cache that never stores anything.
func Disabled() *Redis {
	return &Redis{logger: zap.NewNop(), ttl: defaultTTL}
}

func SummaryKey(userID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("summary:%s:%s", userID, date.UTC().Format(time.DateOnly))
}

func RefreshLockKey(userID uuid.UUID) string {
	return "matches:refresh:lock:" + userID.String()
}

func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		r.commandFailed(err)
		return false, err
	case len(b) == 0:
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !r.Available() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), b, ttl).Err(); err != nil {
		r.commandFailed(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if !r.Available() {
		return nil
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.commandFailed(err)
		return err
	}
	return nil
}

// TryLock takes key for ttl. ok is false when someone else holds it. The
// returned unlock is safe to call more than once. Without Redis the lock is
// always granted.
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error) {
	noop := func(context.Context) error { return nil }
	if !r.Available() {
		return noop, true, nil
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	token := uuid.NewString()
	full := r.key(key)
	ok, err = r.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		r.commandFailed(err)
		return noop, false, err
	}
	if !ok {
		return noop, false, nil
	}

	var released atomic.Bool
	return func(ctx context.Context) error {
		if !released.CompareAndSwap(false, true) {
			return nil
		}
		return releaseScript.Run(ctx, r.client, []string{full}, token).Err()
	}, true, nil
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// commandFailed logs the first failure after a healthy period.
func (r *Redis) commandFailed(err error) {
	if r.degraded.CompareAndSwap(false, true) {
		r.logger.Warn("redis command failed, continuing without cache", zap.Error(err))
	}
}

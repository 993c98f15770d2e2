package redislock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

// Locker hands out best-effort advisory locks. ok=false means someone else
// holds the key; release is always safe to call.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type redisLocker struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// Only delete the key if we still own it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisLocker(log *logger.Logger, addr string) (Locker, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisLocker{
		log:    log.With("service", "RedisLocker"),
		rdb:    rdb,
		prefix: "coursehub:lock:",
	}, nil
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	full := l.prefix + key
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("redis setnx %s: %w", full, err)
	}
	if !ok {
		return func() {}, false, nil
	}
	release := func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{full}, token).Err(); err != nil {
			l.log.Warn("lock release failed", "key", full, "error", err)
		}
	}
	return release, true, nil
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewLocalLocker guards keys within this process only. Used when Redis is
// not configured.
func NewLocalLocker() Locker {
	return &localLocker{held: map[string]time.Time{}, now: time.Now}
}

func (l *localLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if err := ctx.Err(); err != nil {
		return func() {}, false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if exp, ok := l.held[key]; ok && now.Before(exp) {
		return func() {}, false, nil
	}
	exp := now.Add(ttl)
	l.held[key] = exp
	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if cur, ok := l.held[key]; ok && cur.Equal(exp) {
				delete(l.held, key)
			}
		})
	}
	return release, true, nil
}

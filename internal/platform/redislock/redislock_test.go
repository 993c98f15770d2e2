package redislock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

func TestLocalLockerExclusive(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "structure:reset:a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := l.Acquire(ctx, "structure:reset:a", time.Minute); ok {
		t.Fatalf("second acquire should fail while held")
	}
	if _, ok, _ := l.Acquire(ctx, "structure:reset:b", time.Minute); !ok {
		t.Fatalf("different key should be free")
	}
	release()
	release()
	if _, ok, _ := l.Acquire(ctx, "structure:reset:a", time.Minute); !ok {
		t.Fatalf("acquire after release should succeed")
	}
}

func TestLocalLockerExpiry(t *testing.T) {
	l := NewLocalLocker().(*localLocker)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	staleRelease, ok, _ := l.Acquire(context.Background(), "k", time.Second)
	if !ok {
		t.Fatalf("first acquire failed")
	}
	now = now.Add(2 * time.Second)
	if _, ok, _ := l.Acquire(context.Background(), "k", time.Second); !ok {
		t.Fatalf("expired lock should be reacquirable")
	}
	// The stale holder must not release the new holder's lock.
	staleRelease()
	if _, ok, _ := l.Acquire(context.Background(), "k", time.Second); ok {
		t.Fatalf("stale release freed a lock it no longer owned")
	}
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	l, err := NewRedisLocker(logger.Nop(), addr)
	if err != nil {
		t.Fatalf("NewRedisLocker: %v", err)
	}
	ctx := context.Background()
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	release, ok, err := l.Acquire(ctx, key, 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := l.Acquire(ctx, key, 10*time.Second); ok {
		t.Fatalf("second acquire should fail")
	}
	release()
	release2, ok, err := l.Acquire(ctx, key, 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("reacquire: ok=%v err=%v", ok, err)
	}
	release2()
}

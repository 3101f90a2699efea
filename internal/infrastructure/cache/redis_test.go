package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDisabled_IsNoop(t *testing.T) {
	r := Disabled()
	ctx := context.Background()

	if r.Available() {
		t.Fatalf("expected disabled cache to be unavailable")
	}
	if err := r.SetJSON(ctx, "k", map[string]int{"a": 1}, 0); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var out map[string]int
	found, err := r.GetJSON(ctx, "k", &out)
	if err != nil || found {
		t.Fatalf("GetJSON found=%v err=%v, want miss", found, err)
	}
	if err := r.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Ping(ctx); err == nil {
		t.Fatalf("expected ping error on disabled cache")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDisabled_LockAlwaysAcquired(t *testing.T) {
	r := Disabled()
	for i := 0; i < 2; i++ {
		unlock, ok, err := r.TryLock(context.Background(), "lock", time.Second)
		if err != nil || !ok {
			t.Fatalf("attempt %d: ok=%v err=%v", i, ok, err)
		}
		if err := unlock(context.Background()); err != nil {
			t.Fatalf("unlock: %v", err)
		}
	}
}

func TestNilRedis(t *testing.T) {
	var r *Redis
	if r.Available() {
		t.Fatalf("nil cache must be unavailable")
	}
	if !errors.Is(r.Ping(context.Background()), ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable")
	}
	_, ok, err := r.TryLock(context.Background(), "lock", 0)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestKeyPrefix(t *testing.T) {
	r := &Redis{prefix: "jobpilot:"}
	if got := r.key(RefreshLockKey(uuid.Nil)); got != "jobpilot:matches:refresh:lock:00000000-0000-0000-0000-000000000000" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7f1c2a54-5b0e-4c57-9d3f-0a9f4b7c1e22")
	day := time.Date(2025, 5, 19, 23, 30, 0, 0, time.FixedZone("GST", 4*3600))

	if got, want := SummaryKey(id, day), "summary:7f1c2a54-5b0e-4c57-9d3f-0a9f4b7c1e22:2025-05-19"; got != want {
		t.Fatalf("SummaryKey = %q, want %q", got, want)
	}
	if got, want := RefreshLockKey(id), "matches:refresh:lock:7f1c2a54-5b0e-4c57-9d3f-0a9f4b7c1e22"; got != want {
		t.Fatalf("RefreshLockKey = %q, want %q", got, want)
	}
}

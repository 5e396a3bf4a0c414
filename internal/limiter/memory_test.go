package limiter

import (
	"context"
	"testing"
	"time"
)

var _ Limiter = (*Memory)(nil)

func newTestMemory(p Policy) (*Memory, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(p)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemory_BlocksAtThreshold(t *testing.T) {
	t.Parallel()

	m, now := newTestMemory(Policy{Window: 5 * time.Minute, MaxFails: 3, BlockFor: 10 * time.Minute})
	ctx := context.Background()
	ip := HashIP("1.2.3.4")

	for i := 1; i < 3; i++ {
		blocked, _, err := m.Failure(ctx, "u", ip)
		if err != nil || blocked {
			t.Fatalf("failure %d: blocked=%v err=%v", i, blocked, err)
		}
	}
	blocked, dur, err := m.Failure(ctx, "u", ip)
	if err != nil || !blocked || dur != 10*time.Minute {
		t.Fatalf("third failure: blocked=%v dur=%v err=%v", blocked, dur, err)
	}

	ok, retry, err := m.Allow(ctx, "u", ip)
	if err != nil || ok || retry != 10*time.Minute {
		t.Fatalf("Allow while blocked: ok=%v retry=%v err=%v", ok, retry, err)
	}

	// other client is unaffected
	if ok, _, _ := m.Allow(ctx, "u", HashIP("5.6.7.8")); !ok {
		t.Fatalf("block leaked to another ip")
	}

	*now = now.Add(11 * time.Minute)
	if ok, _, _ := m.Allow(ctx, "u", ip); !ok {
		t.Fatalf("block should expire")
	}
}

func TestMemory_WindowResetsCount(t *testing.T) {
	t.Parallel()

	m, now := newTestMemory(Policy{Window: time.Minute, MaxFails: 2, BlockFor: time.Minute})
	ctx := context.Background()
	ip := HashIP("ip")

	if blocked, _, _ := m.Failure(ctx, "u", ip); blocked {
		t.Fatalf("blocked on first failure")
	}
	*now = now.Add(2 * time.Minute)
	if blocked, _, _ := m.Failure(ctx, "u", ip); blocked {
		t.Fatalf("stale failure should not count")
	}
}

func TestMemory_SuccessResets(t *testing.T) {
	t.Parallel()

	m, _ := newTestMemory(Policy{Window: time.Minute, MaxFails: 2, BlockFor: time.Minute})
	ctx := context.Background()
	ip := HashIP("ip")

	_, _, _ = m.Failure(ctx, "u", ip)
	if err := m.Success(ctx, "u", ip); err != nil {
		t.Fatalf("Success: %v", err)
	}
	if blocked, _, _ := m.Failure(ctx, "u", ip); blocked {
		t.Fatalf("count not reset by success")
	}
}

func TestMemory_DisabledNeverBlocks(t *testing.T) {
	t.Parallel()

	m, _ := newTestMemory(Policy{})
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		if blocked, _, _ := m.Failure(ctx, "u", nil); blocked {
			t.Fatalf("disabled limiter blocked at %d", i)
		}
	}
	if ok, _, _ := m.Allow(ctx, "u", nil); !ok {
		t.Fatalf("disabled limiter denied")
	}
}

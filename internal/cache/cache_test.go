package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 8, 12, 0, 0, 0, time.UTC)}
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	clock := newFakeClock()
	c := New[int](clock)

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := c.GetOrFetch(ctx, "k", time.Minute, fetch)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if v != 1 {
			t.Fatalf("value = %d, want cached 1", v)
		}
	}
	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1", calls)
	}
}

func TestGetOrFetchRefetchesAfterTTL(t *testing.T) {
	clock := newFakeClock()
	c := New[int](clock)

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	ctx := context.Background()
	if v, _ := c.GetOrFetch(ctx, "k", time.Minute, fetch); v != 1 {
		t.Fatalf("first value = %d, want 1", v)
	}

	clock.Advance(59 * time.Second)
	if v, _ := c.GetOrFetch(ctx, "k", time.Minute, fetch); v != 1 {
		t.Fatalf("value before expiry = %d, want 1", v)
	}

	clock.Advance(2 * time.Second)
	if v, _ := c.GetOrFetch(ctx, "k", time.Minute, fetch); v != 2 {
		t.Fatalf("value after expiry = %d, want refetched 2", v)
	}
	if calls != 2 {
		t.Errorf("fetch ran %d times, want 2", calls)
	}
}

func TestGetOrFetchServesStaleOnError(t *testing.T) {
	clock := newFakeClock()
	c := New[string](clock)
	ctx := context.Background()

	ok := func(ctx context.Context) (string, error) { return "fresh", nil }
	boom := func(ctx context.Context) (string, error) { return "", errors.New("upstream down") }

	if _, err := c.GetOrFetch(ctx, "k", time.Minute, ok); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * time.Minute)

	v, err := c.GetOrFetch(ctx, "k", time.Minute, boom)
	if err != nil {
		t.Fatalf("stale fallback returned error: %v", err)
	}
	if v != "fresh" {
		t.Fatalf("value = %q, want stale %q", v, "fresh")
	}
}

func TestGetOrFetchPropagatesErrorWithoutStale(t *testing.T) {
	c := New[string](newFakeClock())

	wantErr := errors.New("upstream down")
	_, err := c.GetOrFetch(context.Background(), "k", time.Minute,
		func(ctx context.Context) (string, error) { return "", wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestInvalidate(t *testing.T) {
	clock := newFakeClock()
	c := New[int](clock)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	c.GetOrFetch(ctx, "k", time.Hour, fetch)
	c.Invalidate("k")
	if v, _ := c.GetOrFetch(ctx, "k", time.Hour, fetch); v != 2 {
		t.Fatalf("value after invalidate = %d, want 2", v)
	}
}

package capability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parley-dev/parley/internal/api"
)

// fakeFetcher counts calls and serves canned outcomes.
type fakeFetcher struct {
	calls int
	info  *api.CapabilityInfo
	err   error
}

func (f *fakeFetcher) fetch(_ context.Context) (*api.CapabilityInfo, error) {
	f.calls++
	return f.info, f.err
}

// newTestCache returns a cache with a controllable clock.
func newTestCache(f *fakeFetcher, ttl time.Duration) (*Cache, *time.Time) {
	c := New(f.fetch, ttl)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetWithinTTLServesCachedValue(t *testing.T) {
	f := &fakeFetcher{info: &api.CapabilityInfo{ToolCount: 7, ReasoningConnected: true}}
	c, now := newTestCache(f, time.Minute)

	first := c.Get(context.Background(), false)
	if f.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", f.calls)
	}

	*now = now.Add(30 * time.Second)
	for i := 0; i < 5; i++ {
		got := c.Get(context.Background(), false)
		if got != first {
			t.Errorf("cached value changed: got %+v, want %+v", got, first)
		}
	}
	if f.calls != 1 {
		t.Errorf("expected no redundant fetches within TTL, got %d calls", f.calls)
	}
}

func TestGetRefreshesAfterTTL(t *testing.T) {
	f := &fakeFetcher{info: &api.CapabilityInfo{ToolCount: 3}}
	c, now := newTestCache(f, time.Minute)

	c.Get(context.Background(), false)
	*now = now.Add(61 * time.Second)
	c.Get(context.Background(), false)

	if f.calls != 2 {
		t.Errorf("expected refresh after TTL expiry, got %d calls", f.calls)
	}
}

func TestForceRefreshAlwaysFetches(t *testing.T) {
	f := &fakeFetcher{info: &api.CapabilityInfo{}}
	c, _ := newTestCache(f, time.Minute)

	c.Get(context.Background(), false)
	c.Get(context.Background(), true)
	c.Get(context.Background(), true)

	if f.calls != 3 {
		t.Errorf("expected 3 fetches (1 initial + 2 forced), got %d", f.calls)
	}
}

func TestSuccessfulRefreshPopulatesSummary(t *testing.T) {
	f := &fakeFetcher{info: &api.CapabilityInfo{
		ToolCount:           7,
		ReasoningConnected:  true,
		ToolServerConnected: false,
	}}
	c, _ := newTestCache(f, time.Minute)

	got := c.Get(context.Background(), false)
	want := Summary{ToolCount: 7, ReasoningConnected: true, Status: StatusSuccess}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNilFetchCachesDegradedValue(t *testing.T) {
	f := &fakeFetcher{info: nil}
	c, _ := newTestCache(f, time.Minute)

	got := c.Get(context.Background(), false)
	if got.Status != StatusFailed {
		t.Errorf("Status: got %q, want %q", got.Status, StatusFailed)
	}
	if got.ToolCount != 0 || got.ReasoningConnected || got.ToolServerConnected {
		t.Errorf("expected zeroed degraded value, got %+v", got)
	}

	// The degraded value is cached too: no refetch inside the TTL.
	c.Get(context.Background(), false)
	if f.calls != 1 {
		t.Errorf("degraded value should still suppress refetches, got %d calls", f.calls)
	}
}

func TestErrorRefreshPreservesPriorSuccess(t *testing.T) {
	f := &fakeFetcher{info: &api.CapabilityInfo{ToolCount: 5, ReasoningConnected: true}}
	c, now := newTestCache(f, time.Minute)

	c.Get(context.Background(), false)

	f.info = nil
	f.err = errors.New("socket closed mid-read")
	*now = now.Add(2 * time.Minute)

	got := c.Get(context.Background(), false)
	if got.Status != StatusError {
		t.Errorf("Status: got %q, want %q", got.Status, StatusError)
	}
	if got.Error != "socket closed mid-read" {
		t.Errorf("Error: got %q", got.Error)
	}
	if got.ToolCount != 5 || !got.ReasoningConnected {
		t.Errorf("prior successful data should be preserved, got %+v", got)
	}
}

func TestErrorRefreshWithoutPriorValue(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	c, _ := newTestCache(f, time.Minute)

	got := c.Get(context.Background(), false)
	if got.Status != StatusError || got.Error != "boom" {
		t.Errorf("got %+v", got)
	}
	if got.ToolCount != 0 {
		t.Errorf("expected zeroed value, got %+v", got)
	}
}

func TestFetchedAtAdvancesOnFailedRefresh(t *testing.T) {
	f := &fakeFetcher{info: nil}
	c, now := newTestCache(f, time.Minute)

	c.Get(context.Background(), false)
	if f.calls != 1 {
		t.Fatalf("expected 1 call, got %d", f.calls)
	}

	// Still inside the TTL window: the failed refresh must not retry.
	*now = now.Add(10 * time.Second)
	c.Get(context.Background(), false)
	if f.calls != 1 {
		t.Errorf("failing backend retried faster than TTL: %d calls", f.calls)
	}
}

func TestInvalidateForcesNextRefresh(t *testing.T) {
	f := &fakeFetcher{info: &api.CapabilityInfo{}}
	c, _ := newTestCache(f, time.Minute)

	c.Get(context.Background(), false)
	c.Invalidate()
	if _, ok := c.Age(); ok {
		t.Error("Age should report no value after Invalidate")
	}
	c.Get(context.Background(), false)

	if f.calls != 2 {
		t.Errorf("expected refetch after Invalidate, got %d calls", f.calls)
	}
}

func TestAge(t *testing.T) {
	f := &fakeFetcher{info: &api.CapabilityInfo{}}
	c, now := newTestCache(f, time.Minute)

	if _, ok := c.Age(); ok {
		t.Error("Age should report no value before first refresh")
	}

	c.Get(context.Background(), false)
	*now = now.Add(42 * time.Second)

	age, ok := c.Age()
	if !ok || age != 42*time.Second {
		t.Errorf("Age: got (%v, %v), want (42s, true)", age, ok)
	}
}

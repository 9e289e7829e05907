// Package capability caches the service's capability document behind a TTL
// window so repeated status reads cannot turn into refetch storms.
package capability

import (
	"context"
	"sync"
	"time"

	"github.com/parley-dev/parley/internal/api"
)

// DefaultTTL is how long a refreshed value stays fresh.
const DefaultTTL = 60 * time.Second

// Refresh outcome values recorded in Summary.Status.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// Summary is the cached capability view handed to callers. Status records
// the outcome of the refresh that produced (or last attempted to produce)
// the value.
type Summary struct {
	ToolCount           int
	ReasoningConnected  bool
	ToolServerConnected bool
	Status              string
	Error               string
}

// FetchFunc retrieves a fresh capability document. A nil result means the
// fetch failed in the normalized sense (unreachable or malformed); a non-nil
// error means the fetch path itself broke.
type FetchFunc func(ctx context.Context) (*api.CapabilityInfo, error)

// Cache wraps a FetchFunc with a time-to-live window and forced
// invalidation. It holds exactly one value and is safe for concurrent use.
type Cache struct {
	fetch FetchFunc
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	value     *Summary
	fetchedAt time.Time
}

// New creates a Cache over fetch. A ttl of zero uses DefaultTTL.
func New(fetch FetchFunc, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		fetch: fetch,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached summary, refreshing first if force is set, no
// value exists yet, or the value is older than the TTL. FetchedAt advances
// on every refresh attempt regardless of outcome, so a failing backend is
// probed at most once per TTL window.
func (c *Cache) Get(ctx context.Context, force bool) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	if force || c.value == nil || c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) > c.ttl {
		c.refreshLocked(ctx)
	}
	return *c.value
}

// refreshLocked performs one fetch and installs the outcome. Callers hold mu.
func (c *Cache) refreshLocked(ctx context.Context) {
	info, err := c.fetch(ctx)
	c.fetchedAt = c.now()

	switch {
	case err != nil:
		// Prior data is kept; stale-but-valid counts beat zeros on a
		// transient fault. Status still flips so callers know.
		if c.value != nil && c.value.Status != StatusFailed {
			stale := *c.value
			stale.Status = StatusError
			stale.Error = err.Error()
			c.value = &stale
			return
		}
		c.value = &Summary{Status: StatusError, Error: err.Error()}
	case info == nil:
		c.value = &Summary{Status: StatusFailed}
	default:
		c.value = &Summary{
			ToolCount:           info.ToolCount,
			ReasoningConnected:  info.ReasoningConnected,
			ToolServerConnected: info.ToolServerConnected,
			Status:              StatusSuccess,
		}
	}
}

// Invalidate discards the cached value so the next Get refreshes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.fetchedAt = time.Time{}
}

// Age reports how old the cached value is. ok is false when no refresh has
// happened yet.
func (c *Cache) Age() (age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchedAt.IsZero() {
		return 0, false
	}
	return c.now().Sub(c.fetchedAt), true
}

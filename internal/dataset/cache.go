// Package dataset holds fetched rows per query key and guards against
// out-of-order responses overwriting newer state.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sentidash/sentidash/internal/logging"
	"github.com/sentidash/sentidash/internal/query"
	"golang.org/x/sync/singleflight"
)

// ErrStale is returned for a response whose request was superseded before it arrived.
var ErrStale = errors.New("dataset: response superseded by a newer request")

// DefaultCapacity is the number of keys kept when no capacity option is given.
const DefaultCapacity = 8

// Fetcher retrieves the rows for a key from the remote API.
type Fetcher[R any] func(ctx context.Context, key query.Key) ([]R, error)

// Ticket identifies one issued request. Only the ticket with the current
// generation may store rows.
type Ticket struct {
	Key        query.Key
	Generation uint64
}

type options struct {
	capacity int
	coalesce bool
	logger   logging.Logger
}

// Option configures a Cache.
type Option func(*options)

// WithCapacity bounds the number of keys whose rows are retained.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithCoalescing shares one in-flight fetch between concurrent requests for the same key.
func WithCoalescing(enabled bool) Option {
	return func(o *options) { o.coalesce = enabled }
}

// WithLogger sets the logger used for fetch tracing.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Cache stores rows per key. Every Begin advances the generation; a response is
// applied only when its ticket still carries the current generation.
type Cache[R any] struct {
	mu         sync.Mutex
	fetch      Fetcher[R]
	current    query.Key
	generation uint64
	rows       *lru.Cache[query.Key, []R]
	group      *singleflight.Group
	waiting    atomic.Int32
	logger     logging.Logger
}

// New creates a cache backed by fetch.
func New[R any](fetch Fetcher[R], opts ...Option) *Cache[R] {
	o := options{capacity: DefaultCapacity, logger: logging.Noop()}
	for _, opt := range opts {
		opt(&o)
	}
	rows, err := lru.New[query.Key, []R](o.capacity)
	if err != nil {
		// Only returned for a non-positive size, which WithCapacity rejects.
		panic(fmt.Sprintf("dataset: %v", err))
	}
	c := &Cache[R]{fetch: fetch, rows: rows, logger: o.logger}
	if o.coalesce {
		c.group = &singleflight.Group{}
	}
	return c
}

// Begin issues a new request for key and returns its ticket.
// Any ticket issued earlier becomes stale.
func (c *Cache[R]) Begin(key query.Key) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.current = key
	return Ticket{Key: key, Generation: c.generation}
}

// IsCurrent reports whether t is the most recently issued ticket.
func (c *Cache[R]) IsCurrent(t Ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return t.Generation == c.generation
}

// Fetch performs the request for t. It returns ErrStale, storing nothing, when a
// newer ticket was issued while the request was in flight. Fetch errors are
// returned unchanged for current tickets.
func (c *Cache[R]) Fetch(ctx context.Context, t Ticket) ([]R, error) {
	rows, err := c.do(ctx, t.Key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Generation != c.generation {
		c.logger.Debug("discarding stale response", "key", t.Key.String(), "generation", t.Generation, "current", c.generation)
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	c.rows.Add(t.Key, rows)
	return rows, nil
}

func (c *Cache[R]) do(ctx context.Context, key query.Key) ([]R, error) {
	if c.group == nil {
		return c.fetch(ctx, key)
	}
	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		return c.fetch(ctx, key)
	})
	c.waiting.Add(1)
	defer c.waiting.Add(-1)

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("coalesced fetch", "key", key.String(), "waiters", c.waiters())
		}
		if res.Err != nil {
			return nil, res.Err
		}
		rows, _ := res.Val.([]R)
		return rows, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// waiters returns the number of callers registered on a coalesced fetch.
func (c *Cache[R]) waiters() int {
	return int(c.waiting.Load())
}

// Peek returns the stored rows for key without fetching.
func (c *Cache[R]) Peek(key query.Key) ([]R, bool) {
	return c.rows.Peek(key)
}

// Invalidate drops the stored rows for key.
func (c *Cache[R]) Invalidate(key query.Key) {
	c.rows.Remove(key)
}

// Current returns the key of the most recent request.
func (c *Cache[R]) Current() query.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Generation returns the number of requests issued so far.
func (c *Cache[R]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Len returns the number of keys with stored rows.
func (c *Cache[R]) Len() int {
	return c.rows.Len()
}

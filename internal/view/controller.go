// Package view holds the per-page state of the dashboard: which dataset is
// requested, the filters and page the user picked, and the outcome of the
// latest load. Rendering reads the derived page from here.
package view

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sentidash/sentidash/internal/dataset"
	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/export"
	"github.com/sentidash/sentidash/internal/logging"
	"github.com/sentidash/sentidash/internal/query"
	"github.com/sentidash/sentidash/internal/search"
)

// Outcome reports how a load ended. A stale outcome changed nothing.
type Outcome struct {
	Dataset string
	Key     query.Key
	Rows    int
	Err     error
	Stale   bool
}

// OK reports whether the load succeeded and was applied.
func (o Outcome) OK() bool { return !o.Stale && o.Err == nil }

type settings struct {
	pageSize   int
	searchMode string
	cacheOpts  []dataset.Option
	logger     logging.Logger
	now        func() time.Time
}

// Option configures a controller.
type Option func(*settings)

// WithPageSize sets the number of rows per page.
func WithPageSize(n int) Option {
	return func(s *settings) { s.pageSize = n }
}

// WithSearchMode picks the free-text matcher: "substring", "token" or "regex".
func WithSearchMode(mode string) Option {
	return func(s *settings) { s.searchMode = mode }
}

// WithCache passes options to the controller's dataset cache.
func WithCache(opts ...dataset.Option) Option {
	return func(s *settings) { s.cacheOpts = append(s.cacheOpts, opts...) }
}

// WithLogger sets the logger for load tracing.
func WithLogger(l logging.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func newSettings(opts []Option) settings {
	s := settings{pageSize: derive.DefaultPageSize, logger: logging.Noop(), now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	if s.pageSize <= 0 {
		s.pageSize = derive.DefaultPageSize
	}
	return s
}

// Controller owns one dataset: its query key, filter criteria, page state,
// loading flag and the rows of the latest applied load.
type Controller[R derive.Record] struct {
	mu       sync.Mutex
	name     string
	columns  []string
	cache    *dataset.Cache[R]
	key      query.Key
	criteria derive.Criteria
	page     derive.PageState
	loading  bool
	rows     []R
	err      error
	loadedAt time.Time
	mode     string
	logger   logging.Logger
	now      func() time.Time
}

// NewController creates a controller for the dataset fetched by fetch.
// columns names the fields shown in tables and exports.
func NewController[R derive.Record](name string, columns []string, fetch dataset.Fetcher[R], key query.Key, opts ...Option) *Controller[R] {
	s := newSettings(opts)
	cacheOpts := append([]dataset.Option{dataset.WithLogger(s.logger)}, s.cacheOpts...)
	return &Controller[R]{
		name:    name,
		columns: columns,
		cache:   dataset.New(fetch, cacheOpts...),
		key:     key,
		page:    derive.FirstPage(s.pageSize),
		mode:    s.searchMode,
		logger:  s.logger.With("dataset", name),
		now:     s.now,
	}
}

// Name returns the dataset name.
func (c *Controller[R]) Name() string { return c.name }

// Columns returns the table columns.
func (c *Controller[R]) Columns() []string { return c.columns }

// Key returns the current query key.
func (c *Controller[R]) Key() query.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// SetKey changes the query key. It reports whether the key changed, in which
// case the page is reset and the caller should load.
func (c *Controller[R]) SetKey(k query.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if k == c.key {
		return false
	}
	c.key = k
	c.page.Number = 1
	return true
}

// TextSearch builds the free-text predicate for q over fields, matched the
// way the search mode says. Unknown modes match substrings.
func (c *Controller[R]) TextSearch(q string, fields ...string) derive.TextPredicate {
	return derive.SearchWith(search.New(c.mode, search.WithFields(fields...)), q, fields...)
}

// Criteria returns the current filter criteria.
func (c *Controller[R]) Criteria() derive.Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// SetCriteria replaces the criteria. When they filter differently the page is
// reset to 1. It reports whether anything changed.
func (c *Controller[R]) SetCriteria(cr derive.Criteria) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setCriteriaLocked(cr)
}

func (c *Controller[R]) setCriteriaLocked(cr derive.Criteria) bool {
	if cr.Fingerprint() == c.criteria.Fingerprint() {
		return false
	}
	c.criteria = cr
	c.page.Number = 1
	return true
}

// Filter sets the predicate stored under name.
func (c *Controller[R]) Filter(name string, p derive.Predicate) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setCriteriaLocked(c.criteria.With(name, p))
}

// Unfilter removes the predicate stored under name.
func (c *Controller[R]) Unfilter(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setCriteriaLocked(c.criteria.Without(name))
}

// PageState returns the requested page, before clamping.
func (c *Controller[R]) PageState() derive.PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SetPage requests page n. Out of range values are clamped by View.
func (c *Controller[R]) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page.Number = n
}

// SetPageSize changes the page size and returns to page 1.
func (c *Controller[R]) SetPageSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 {
		n = derive.DefaultPageSize
	}
	if n != c.page.Size {
		c.page = derive.FirstPage(n)
	}
}

// NextPage moves forward one page, stopping at the last page.
func (c *Controller[R]) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.viewLocked()
	if v.HasNext() {
		c.page.Number = v.Number + 1
	} else {
		c.page.Number = v.Number
	}
}

// PrevPage moves back one page, stopping at page 1.
func (c *Controller[R]) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.viewLocked()
	if v.HasPrev() {
		c.page.Number = v.Number - 1
	} else {
		c.page.Number = v.Number
	}
}

// Loading reports whether the latest request is still in flight.
func (c *Controller[R]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error of the latest applied load.
func (c *Controller[R]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// LoadedAt returns when rows were last applied, zero before the first success.
func (c *Controller[R]) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedAt
}

// Rows returns every row of the latest applied load, unfiltered.
func (c *Controller[R]) Rows() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// Filtered returns the rows passing the criteria, in load order.
func (c *Controller[R]) Filtered() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	return derive.Filter(c.rows, c.criteria)
}

// View derives the visible page from the current rows, criteria and page state.
func (c *Controller[R]) View() derive.Page[R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller[R]) viewLocked() derive.Page[R] {
	return derive.Derive(c.rows, c.criteria, c.page)
}

// Export writes the visible page as CSV.
func (c *Controller[R]) Export(w io.Writer) error {
	return export.WriteCSV(w, c.columns, c.View().Rows)
}

// Begin issues a request for the current key and marks the controller loading.
// Rows cached for the key are shown while the request is in flight.
func (c *Controller[R]) Begin() *Request[R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = true
	if rows, ok := c.cache.Peek(c.key); ok {
		c.rows = rows
	}
	return &Request[R]{ctrl: c, ticket: c.cache.Begin(c.key)}
}

// Refresh drops the cached rows for the current key and issues a new request.
func (c *Controller[R]) Refresh() *Request[R] {
	c.cache.Invalidate(c.Key())
	return c.Begin()
}

func (c *Controller[R]) apply(r *Result[R]) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := Outcome{Dataset: c.name, Key: r.ticket.Key}
	if errors.Is(r.err, dataset.ErrStale) || !c.cache.IsCurrent(r.ticket) {
		out.Stale = true
		return out
	}
	c.loading = false
	if r.err != nil {
		c.rows = nil
		c.err = r.err
		out.Err = r.err
		c.logger.Warn("load failed", "key", r.ticket.Key.String(), "error", r.err)
		return out
	}
	c.rows = r.rows
	c.err = nil
	c.loadedAt = c.now()
	out.Rows = len(r.rows)
	c.logger.Debug("load applied", "key", r.ticket.Key.String(), "rows", len(r.rows))
	return out
}

package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyDay  = query.ForHours(query.EndpointPrices, query.Last24Hours)
	keyWeek = query.ForHours(query.EndpointPrices, query.Last7Days)
)

// tableSource serves fixed rows per key and counts calls.
type tableSource struct {
	mu    sync.Mutex
	rows  map[query.Key][]derive.Fields
	errs  map[query.Key]error
	calls int
}

func (s *tableSource) fetch(_ context.Context, key query.Key) ([]derive.Fields, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.errs[key]; err != nil {
		return nil, err
	}
	return s.rows[key], nil
}

func numbered(prefix string, n int) []derive.Fields {
	rows := make([]derive.Fields, n)
	for i := range rows {
		rows[i] = derive.Fields{
			"symbol": derive.Text(fmt.Sprintf("%s%02d", prefix, i)),
			"close":  derive.Number(float64(i)),
		}
	}
	return rows
}

func newTable(t *testing.T, src *tableSource, opts ...Option) *Controller[derive.Fields] {
	t.Helper()
	return NewController("prices", []string{"symbol", "close"}, src.fetch, keyDay, opts...)
}

// load runs one request for the current key to completion.
func load[R derive.Record](c *Controller[R]) Outcome {
	return c.Begin().Perform(context.Background()).Apply()
}

// retry reloads the current key, bypassing cached rows.
func retry[R derive.Record](c *Controller[R]) Outcome {
	return c.Refresh().Perform(context.Background()).Apply()
}

func TestLoadStoresRowsAndClearsLoading(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	src := &tableSource{rows: map[query.Key][]derive.Fields{keyDay: numbered("A", 25)}}
	c := newTable(t, src, WithClock(func() time.Time { return now }))

	out := load(c)
	assert.True(t, out.OK())
	assert.Equal(t, 25, out.Rows)
	assert.Equal(t, "prices", out.Dataset)
	assert.False(t, c.Loading())
	assert.NoError(t, c.Err())
	assert.Equal(t, now, c.LoadedAt())

	page := c.View()
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.TotalCount)
	assert.Len(t, page.Rows, 10)
}

func TestBeginMarksLoading(t *testing.T) {
	src := &tableSource{}
	c := newTable(t, src)
	assert.False(t, c.Loading())

	req := c.Begin()
	assert.True(t, c.Loading())
	req.Perform(context.Background()).Apply()
	assert.False(t, c.Loading())
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	src := &tableSource{rows: map[query.Key][]derive.Fields{
		keyDay:  numbered("D", 3),
		keyWeek: numbered("W", 5),
	}}
	c := newTable(t, src)

	first := c.Begin()
	require.True(t, c.SetKey(keyWeek))
	second := c.Begin()

	// the newer request resolves first
	out := second.Perform(context.Background()).Apply()
	require.True(t, out.OK())

	late := first.Perform(context.Background()).Apply()
	assert.True(t, late.Stale)
	assert.False(t, late.OK())

	assert.Len(t, c.Rows(), 5)
	assert.Equal(t, "W00", c.Rows()[0]["symbol"].String())
	assert.False(t, c.Loading())
}

func TestLoadingFollowsLatestRequestOnly(t *testing.T) {
	src := &tableSource{rows: map[query.Key][]derive.Fields{keyDay: numbered("D", 1)}}
	c := newTable(t, src)

	first := c.Begin()
	second := c.Begin()

	assert.True(t, first.Perform(context.Background()).Apply().Stale)
	assert.True(t, c.Loading(), "a stale response must not clear loading")

	assert.True(t, second.Perform(context.Background()).Apply().OK())
	assert.False(t, c.Loading())
}

func TestFailedLoadKeepsErrorUntilRetry(t *testing.T) {
	boom := errors.New("boom")
	src := &tableSource{
		rows: map[query.Key][]derive.Fields{keyDay: numbered("D", 2)},
		errs: map[query.Key]error{keyDay: boom},
	}
	c := newTable(t, src)

	out := load(c)
	assert.ErrorIs(t, out.Err, boom)
	assert.ErrorIs(t, c.Err(), boom)
	assert.False(t, c.Loading())
	assert.Empty(t, c.Rows())

	src.mu.Lock()
	delete(src.errs, keyDay)
	src.mu.Unlock()

	out = retry(c)
	assert.True(t, out.OK())
	assert.NoError(t, c.Err())
	assert.Len(t, c.Rows(), 2)
}

func TestRetryRefetchesSameKey(t *testing.T) {
	src := &tableSource{rows: map[query.Key][]derive.Fields{keyDay: numbered("D", 2)}}
	c := newTable(t, src)

	load(c)
	retry(c)
	assert.Equal(t, 2, src.calls)
}

func TestBeginShowsCachedRowsForKnownKey(t *testing.T) {
	src := &tableSource{rows: map[query.Key][]derive.Fields{
		keyDay:  numbered("D", 1),
		keyWeek: numbered("W", 2),
	}}
	c := newTable(t, src)
	load(c)
	c.SetKey(keyWeek)
	load(c)

	c.SetKey(keyDay)
	c.Begin()
	assert.True(t, c.Loading())
	assert.Equal(t, "D00", c.Rows()[0]["symbol"].String())
}

func TestSetKeyResetsPage(t *testing.T) {
	src := &tableSource{rows: map[query.Key][]derive.Fields{keyDay: numbered("D", 30)}}
	c := newTable(t, src)
	load(c)
	c.SetPage(3)
	assert.Equal(t, 3, c.View().Number)

	assert.False(t, c.SetKey(keyDay))
	assert.Equal(t, 3, c.PageState().Number)

	assert.True(t, c.SetKey(keyWeek))
	assert.Equal(t, 1, c.PageState().Number)
}

func TestSetCriteriaResetsPageOnlyWhenFilterChanges(t *testing.T) {
	src := &tableSource{rows: map[query.Key][]derive.Fields{keyDay: numbered("D", 30)}}
	c := newTable(t, src)
	load(c)

	cr := derive.NewCriteria().With("search", derive.Search("d", "symbol"))
	assert.True(t, c.SetCriteria(cr))
	c.SetPage(2)

	same := derive.NewCriteria().With("search", derive.Search("d", "symbol"))
	assert.False(t, c.SetCriteria(same))
	assert.Equal(t, 2, c.PageState().Number)

	assert.True(t, c.Filter("range", derive.Between("close", 0, 4)))
	assert.Equal(t, 1, c.PageState().Number)
	assert.Equal(t, 5, c.View().TotalCount)

	assert.True(t, c.Unfilter("range"))
	assert.False(t, c.Unfilter("range"))
	assert.Equal(t, 30, c.View().TotalCount)
}

func TestNextAndPrevPageStayInBounds(t *testing.T) {
	src := &tableSource{rows: map[query.Key][]derive.Fields{keyDay: numbered("D", 25)}}
	c := newTable(t, src)
	load(c)

	c.PrevPage()
	assert.Equal(t, 1, c.View().Number)

	c.NextPage()
	c.NextPage()
	c.NextPage()
	assert.Equal(t, 3, c.View().Number)
	assert.Equal(t, 3, c.PageState().Number)

	c.SetPage(99)
	c.PrevPage()
	assert.Equal(t, 2, c.View().Number)
}

func TestSetPageSize(t *testing.T) {
	src := &tableSource{rows: map[query.Key][]derive.Fields{keyDay: numbered("D", 25)}}
	c := newTable(t, src, WithPageSize(5))
	load(c)
	assert.Equal(t, 5, c.View().TotalPages)

	c.SetPage(4)
	c.SetPageSize(20)
	assert.Equal(t, derive.PageState{Number: 1, Size: 20}, c.PageState())

	c.SetPageSize(0)
	assert.Equal(t, derive.DefaultPageSize, c.PageState().Size)
}

func TestExportWritesVisiblePage(t *testing.T) {
	src := &tableSource{rows: map[query.Key][]derive.Fields{keyDay: numbered("D", 12)}}
	c := newTable(t, src, WithPageSize(10))
	load(c)
	c.NextPage()

	var buf bytes.Buffer
	require.NoError(t, c.Export(&buf))
	assert.Equal(t, "symbol,close\n\"D10\",10\n\"D11\",11\n", buf.String())
}

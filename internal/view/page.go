package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/query"
)

// Setting names accepted by Page.Set.
const (
	SettingSearch    = "search"
	SettingMin       = "min"
	SettingMax       = "max"
	SettingSymbol    = "symbol"
	SettingSource    = "source"
	SettingSentiment = "sentiment"
	SettingCategory  = "category"
	SettingRange     = "range"
	SettingLimit     = "limit"
)

// criteria entry names
const (
	filterSearch   = "search"
	filterRange    = "range"
	filterCategory = "category"
	filterLabel    = "label"
)

// ErrUnsupported is returned by Set for a setting the page does not have.
var ErrUnsupported = errors.New("setting not supported on this page")

// Change tells the caller what a Set call affected.
type Change int

const (
	// ChangeNone means the value was already set.
	ChangeNone Change = iota
	// ChangeFilter means the derived view changed; no fetch is needed.
	ChangeFilter
	// ChangeKey means the query key changed and the page must be loaded.
	ChangeKey
)

// Page is the surface shared by every dashboard page.
type Page interface {
	Name() string
	Title() string
	Columns() []string

	// Start issues requests for the current keys. A later Start supersedes
	// any request still in flight.
	Start() []Pending
	// Restart drops cached rows and issues fresh requests.
	Restart() []Pending
	Loading() bool
	Err() error

	Hours() query.TimeRange
	Set(name, value string) (Change, error)
	Setting(name string) (string, bool)
	Settings() []string
	Reset() bool

	View() derive.Page[derive.Record]
	NextPage()
	PrevPage()
	SetPage(n int)
	SetPageSize(n int)
	Export(w io.Writer) error
}

var (
	_ Page = (*Dashboard)(nil)
	_ Page = (*Sentiment)(nil)
	_ Page = (*Stocks)(nil)
	_ Page = (*Correlation)(nil)
	_ Page = (*News)(nil)
)

// NewPages creates every page in tab order: dashboard, sentiment, stocks,
// correlation, news. The correlation page starts on its own default window.
func NewPages(src Source, hours query.TimeRange, newsLimit int, opts ...Option) []Page {
	return []Page{
		NewDashboard(src, hours, opts...),
		NewSentiment(src, hours, opts...),
		NewStocks(src, hours, opts...),
		NewCorrelation(src, DefaultCorrelationHours, opts...),
		NewNews(src, newsLimit, opts...),
	}
}

// LoadPage loads every dataset of p in parallel.
func LoadPage(ctx context.Context, p Page) []Outcome {
	return Join(ctx, p.Start()...)
}

// Erase converts a typed page into a page of records, for generic rendering.
func Erase[R derive.Record](p derive.Page[R]) derive.Page[derive.Record] {
	rows := make([]derive.Record, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = r
	}
	return derive.Page[derive.Record]{
		Rows:       rows,
		Number:     p.Number,
		Size:       p.Size,
		TotalPages: p.TotalPages,
		TotalCount: p.TotalCount,
	}
}

func parseNumber(name, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, value)
	}
	return f, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// category normalizes a selection so that "" and "all" compare equal.
func category(value string) string {
	v := strings.TrimSpace(value)
	if strings.EqualFold(v, derive.AllCategories) {
		return ""
	}
	return v
}

func categorySetting(v string) string {
	if v == "" {
		return derive.AllCategories
	}
	return v
}

// textRange holds the search, numeric range and category selection shared by
// the sentiment and stock pages.
type textRange struct {
	search     string
	min, max   float64
	defMin     float64
	defMax     float64
	selected   string
	textFields []string
	rangeField string
	catField   string
	catSetting string
}

// textSearch builds a free-text predicate, see Controller.TextSearch.
type textSearch func(q string, fields ...string) derive.TextPredicate

func (f *textRange) criteria(text textSearch) derive.Criteria {
	return derive.NewCriteria().
		With(filterSearch, text(f.search, f.textFields...)).
		With(filterRange, derive.Between(f.rangeField, f.min, f.max)).
		With(filterCategory, derive.Category(f.catField, f.selected))
}

func (f *textRange) set(name, value string) error {
	switch name {
	case SettingSearch:
		f.search = value
	case SettingMin:
		v, err := parseNumber(name, value)
		if err != nil {
			return err
		}
		f.min = v
	case SettingMax:
		v, err := parseNumber(name, value)
		if err != nil {
			return err
		}
		f.max = v
	case f.catSetting:
		f.selected = category(value)
	default:
		return ErrUnsupported
	}
	return nil
}

func (f *textRange) get(name string) (string, bool) {
	switch name {
	case SettingSearch:
		return f.search, true
	case SettingMin:
		return formatNumber(f.min), true
	case SettingMax:
		return formatNumber(f.max), true
	case f.catSetting:
		return categorySetting(f.selected), true
	}
	return "", false
}

func (f *textRange) reset() {
	f.search = ""
	f.min, f.max = f.defMin, f.defMax
	f.selected = ""
}

func setHours(name, value string, apply func(query.TimeRange) bool) (Change, error) {
	if name != SettingRange {
		return ChangeNone, ErrUnsupported
	}
	r, err := query.ParseTimeRange(value)
	if err != nil {
		return ChangeNone, err
	}
	if apply(r) {
		return ChangeKey, nil
	}
	return ChangeNone, nil
}

func filterChange(changed bool) Change {
	if changed {
		return ChangeFilter
	}
	return ChangeNone
}

package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sentidash/sentidash/internal/aggregate"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/query"
)

// DefaultNewsLimit is the number of articles requested initially.
const DefaultNewsLimit = 20

// SentimentLabels lists the accepted values of the sentiment setting.
var SentimentLabels = []string{derive.AllCategories, aggregate.LabelPositive, aggregate.LabelNeutral, aggregate.LabelNegative}

// News is the latest articles page. It is keyed by article count, not by window.
type News struct {
	*Controller[api.NewsItem]
	search    string
	source    string
	sentiment string
}

// NewNews creates the news page requesting limit articles.
func NewNews(src Source, limit int, opts ...Option) *News {
	if !query.ValidNewsLimit(limit) {
		limit = DefaultNewsLimit
	}
	p := &News{
		Controller: NewController("news", api.NewsColumns,
			newsFetcher(src), query.ForLimit(query.EndpointNews, limit), opts...),
	}
	p.SetCriteria(p.criteria())
	return p
}

func (p *News) criteria() derive.Criteria {
	return derive.NewCriteria().
		With(filterSearch, p.TextSearch(p.search, "title", "description")).
		With(filterCategory, derive.Category(api.FieldSourceName, p.source)).
		With(filterLabel, derive.Category(api.FieldSentimentLabel, p.sentiment))
}

// Title implements Page.
func (p *News) Title() string { return "News" }

// Start implements Page.
func (p *News) Start() []Pending { return []Pending{p.Begin()} }

// Restart implements Page.
func (p *News) Restart() []Pending { return []Pending{p.Refresh()} }

// Hours implements Page. News is not windowed.
func (p *News) Hours() query.TimeRange { return 0 }

// Limit returns the requested article count.
func (p *News) Limit() int { return p.Key().Limit }

// SetLimit changes the article count and reports whether a load is needed.
func (p *News) SetLimit(n int) (bool, error) {
	if !query.ValidNewsLimit(n) {
		return false, fmt.Errorf("limit must be one of %v, got %d", query.NewsLimits, n)
	}
	return p.SetKey(query.ForLimit(query.EndpointNews, n)), nil
}

// Set implements Page. Accepted: search, source, sentiment, limit.
func (p *News) Set(name, value string) (Change, error) {
	switch name {
	case SettingLimit:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return ChangeNone, fmt.Errorf("limit must be a number, got %q", value)
		}
		changed, err := p.SetLimit(n)
		if err != nil || !changed {
			return ChangeNone, err
		}
		return ChangeKey, nil
	case SettingSearch:
		p.search = value
	case SettingSource:
		p.source = category(value)
	case SettingSentiment:
		label := strings.ToLower(category(value))
		if label != "" && !validLabel(label) {
			return ChangeNone, fmt.Errorf("sentiment must be one of %s, got %q", strings.Join(SentimentLabels, ", "), value)
		}
		p.sentiment = label
	default:
		return ChangeNone, ErrUnsupported
	}
	return filterChange(p.SetCriteria(p.criteria())), nil
}

func validLabel(label string) bool {
	for _, l := range SentimentLabels[1:] {
		if l == label {
			return true
		}
	}
	return false
}

// Setting implements Page.
func (p *News) Setting(name string) (string, bool) {
	switch name {
	case SettingLimit:
		return strconv.Itoa(p.Limit()), true
	case SettingSearch:
		return p.search, true
	case SettingSource:
		return categorySetting(p.source), true
	case SettingSentiment:
		return categorySetting(p.sentiment), true
	}
	return "", false
}

// Settings implements Page.
func (p *News) Settings() []string {
	return []string{SettingSearch, SettingSource, SettingSentiment, SettingLimit}
}

// Reset clears the filters.
func (p *News) Reset() bool {
	p.search, p.source, p.sentiment = "", "", ""
	return p.SetCriteria(p.criteria())
}

// View implements Page.
func (p *News) View() derive.Page[derive.Record] { return Erase(p.Controller.View()) }

// Sources lists the source names of every loaded article, in load order.
func (p *News) Sources() []string {
	return aggregate.Distinct(p.Rows(), api.FieldSourceName)
}

// AverageSentiment summarizes the scores of the filtered articles. A missing
// score counts as 0.
func (p *News) AverageSentiment() aggregate.Summary {
	return aggregate.Summarize(aggregate.ValuesOrZero(p.Filtered(), api.FieldSentimentScore))
}

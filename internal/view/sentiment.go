package view

import (
	"github.com/sentidash/sentidash/internal/aggregate"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/query"
)

// Default average sentiment bounds.
const (
	DefaultSentimentMin = -1
	DefaultSentimentMax = 1
)

// Sentiment is the per-ticker sentiment page.
type Sentiment struct {
	*Controller[api.SymbolSentiment]
	filters textRange
}

// NewSentiment creates the sentiment page for the given window.
func NewSentiment(src Source, hours query.TimeRange, opts ...Option) *Sentiment {
	p := &Sentiment{
		Controller: NewController("sentiment", api.SymbolSentimentColumns,
			byHours(src.SentimentBySymbol), query.ForHours(query.EndpointSentiment, hours), opts...),
		filters: textRange{
			min: DefaultSentimentMin, max: DefaultSentimentMax,
			defMin: DefaultSentimentMin, defMax: DefaultSentimentMax,
			textFields: []string{api.FieldSymbol},
			rangeField: api.FieldAvgSentiment,
			catField:   api.FieldSymbol,
			catSetting: SettingSymbol,
		},
	}
	p.SetCriteria(p.filters.criteria(p.TextSearch))
	return p
}

// Title implements Page.
func (p *Sentiment) Title() string { return "Sentiment" }

// Start implements Page.
func (p *Sentiment) Start() []Pending { return []Pending{p.Begin()} }

// Restart implements Page.
func (p *Sentiment) Restart() []Pending { return []Pending{p.Refresh()} }

// Hours implements Page.
func (p *Sentiment) Hours() query.TimeRange { return p.Key().Hours }

// SetHours changes the window and reports whether a load is needed.
func (p *Sentiment) SetHours(r query.TimeRange) bool {
	return p.SetKey(query.ForHours(query.EndpointSentiment, r))
}

// Set implements Page. Accepted: search, min, max, symbol, range.
func (p *Sentiment) Set(name, value string) (Change, error) {
	if name == SettingRange {
		return setHours(name, value, p.SetHours)
	}
	if err := p.filters.set(name, value); err != nil {
		return ChangeNone, err
	}
	return filterChange(p.SetCriteria(p.filters.criteria(p.TextSearch))), nil
}

// Setting implements Page.
func (p *Sentiment) Setting(name string) (string, bool) {
	if name == SettingRange {
		return p.Hours().String(), true
	}
	return p.filters.get(name)
}

// Settings implements Page.
func (p *Sentiment) Settings() []string {
	return []string{SettingSearch, SettingMin, SettingMax, SettingSymbol, SettingRange}
}

// Reset clears the filters back to their defaults.
func (p *Sentiment) Reset() bool {
	p.filters.reset()
	return p.SetCriteria(p.filters.criteria(p.TextSearch))
}

// View implements Page.
func (p *Sentiment) View() derive.Page[derive.Record] { return Erase(p.Controller.View()) }

// Symbols lists the tickers of the loaded rows, in load order.
func (p *Sentiment) Symbols() []string {
	return aggregate.Distinct(p.Rows(), api.FieldSymbol)
}

// Summary describes the average sentiment of the filtered rows.
func (p *Sentiment) Summary() aggregate.Summary {
	return aggregate.Summarize(aggregate.ValuesOrZero(p.Filtered(), api.FieldAvgSentiment))
}

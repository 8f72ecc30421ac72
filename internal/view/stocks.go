package view

import (
	"github.com/sentidash/sentidash/internal/aggregate"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/query"
)

// Default close price bounds.
const (
	DefaultPriceMin = 0
	DefaultPriceMax = 10000
)

// Stocks is the hourly price page. With no symbol selected every ticker is listed.
type Stocks struct {
	*Controller[api.StockPrice]
	filters textRange
}

// NewStocks creates the stock price page for the given window.
func NewStocks(src Source, hours query.TimeRange, opts ...Option) *Stocks {
	p := &Stocks{
		Controller: NewController("stock prices", api.StockPriceColumns,
			byHours(src.StockPrices), query.ForHours(query.EndpointPrices, hours), opts...),
		filters: textRange{
			min: DefaultPriceMin, max: DefaultPriceMax,
			defMin: DefaultPriceMin, defMax: DefaultPriceMax,
			textFields: []string{api.FieldSymbol},
			rangeField: api.FieldClose,
			catField:   api.FieldSymbol,
			catSetting: SettingSymbol,
		},
	}
	p.SetCriteria(p.filters.criteria(p.TextSearch))
	return p
}

// Title implements Page.
func (p *Stocks) Title() string { return "Stocks" }

// Start implements Page.
func (p *Stocks) Start() []Pending { return []Pending{p.Begin()} }

// Restart implements Page.
func (p *Stocks) Restart() []Pending { return []Pending{p.Refresh()} }

// Hours implements Page.
func (p *Stocks) Hours() query.TimeRange { return p.Key().Hours }

// SetHours changes the window and reports whether a load is needed.
func (p *Stocks) SetHours(r query.TimeRange) bool {
	return p.SetKey(query.ForHours(query.EndpointPrices, r))
}

// Set implements Page. Accepted: search, min, max, symbol, range.
func (p *Stocks) Set(name, value string) (Change, error) {
	if name == SettingRange {
		return setHours(name, value, p.SetHours)
	}
	if err := p.filters.set(name, value); err != nil {
		return ChangeNone, err
	}
	return filterChange(p.SetCriteria(p.filters.criteria(p.TextSearch))), nil
}

// Setting implements Page.
func (p *Stocks) Setting(name string) (string, bool) {
	if name == SettingRange {
		return p.Hours().String(), true
	}
	return p.filters.get(name)
}

// Settings implements Page.
func (p *Stocks) Settings() []string {
	return []string{SettingSearch, SettingMin, SettingMax, SettingSymbol, SettingRange}
}

// Reset clears the filters back to their defaults.
func (p *Stocks) Reset() bool {
	p.filters.reset()
	return p.SetCriteria(p.filters.criteria(p.TextSearch))
}

// View implements Page.
func (p *Stocks) View() derive.Page[derive.Record] { return Erase(p.Controller.View()) }

// Symbols lists the tickers of the loaded rows, in load order.
func (p *Stocks) Symbols() []string {
	return aggregate.Distinct(p.Rows(), api.FieldSymbol)
}

// Stats summarizes the close price of the filtered rows. Rows without a close are skipped.
func (p *Stocks) Stats() aggregate.Summary {
	return aggregate.Summarize(aggregate.Values(p.Filtered(), api.FieldClose))
}

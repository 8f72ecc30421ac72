package view

import (
	"errors"

	"github.com/sentidash/sentidash/internal/aggregate"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/query"
)

// DefaultCorrelationHours is the initial window of the correlation page.
const DefaultCorrelationHours = query.Last30Days

// Correlation joins the correlation analysis with the sentiment timeline.
// The table shows the analysis.
type Correlation struct {
	*Controller[api.CorrelationRow]
	timeline *Controller[api.TimelinePoint]
	category string
}

// NewCorrelation creates the correlation page for the given window.
func NewCorrelation(src Source, hours query.TimeRange, opts ...Option) *Correlation {
	return &Correlation{
		Controller: NewController("correlation", api.CorrelationColumns,
			byHours(src.Correlation), query.ForHours(query.EndpointCorrelation, hours), opts...),
		timeline: NewController("timeline", api.TimelineColumns,
			byHours(src.Timeline), query.ForHours(query.EndpointTimeline, hours), opts...),
	}
}

// Title implements Page.
func (p *Correlation) Title() string { return "Correlation" }

// Start implements Page.
func (p *Correlation) Start() []Pending {
	return []Pending{p.Begin(), p.timeline.Begin()}
}

// Restart implements Page.
func (p *Correlation) Restart() []Pending {
	return []Pending{p.Refresh(), p.timeline.Refresh()}
}

// Loading reports whether either dataset is still loading.
func (p *Correlation) Loading() bool {
	return p.Controller.Loading() || p.timeline.Loading()
}

// Err joins the errors of both datasets.
func (p *Correlation) Err() error {
	return errors.Join(p.Controller.Err(), p.timeline.Err())
}

// Hours implements Page.
func (p *Correlation) Hours() query.TimeRange { return p.Key().Hours }

// SetHours changes the window of both datasets and reports whether a load is needed.
func (p *Correlation) SetHours(r query.TimeRange) bool {
	a := p.SetKey(query.ForHours(query.EndpointCorrelation, r))
	b := p.timeline.SetKey(query.ForHours(query.EndpointTimeline, r))
	return a || b
}

// Set implements Page. Accepted: category, range.
func (p *Correlation) Set(name, value string) (Change, error) {
	switch name {
	case SettingRange:
		return setHours(name, value, p.SetHours)
	case SettingCategory:
		p.category = category(value)
		return filterChange(p.Filter(filterCategory, derive.Category(api.FieldSentimentCategory, p.category))), nil
	}
	return ChangeNone, ErrUnsupported
}

// Setting implements Page.
func (p *Correlation) Setting(name string) (string, bool) {
	switch name {
	case SettingRange:
		return p.Hours().String(), true
	case SettingCategory:
		return categorySetting(p.category), true
	}
	return "", false
}

// Settings implements Page.
func (p *Correlation) Settings() []string { return []string{SettingCategory, SettingRange} }

// Reset clears the category selection.
func (p *Correlation) Reset() bool {
	p.category = ""
	return p.Unfilter(filterCategory)
}

// View implements Page.
func (p *Correlation) View() derive.Page[derive.Record] { return Erase(p.Controller.View()) }

// Categories lists the sentiment categories of the loaded analysis.
func (p *Correlation) Categories() []string {
	return aggregate.Distinct(p.Rows(), api.FieldSentimentCategory)
}

// Timeline returns the loaded sentiment timeline, newest first.
func (p *Correlation) Timeline() []api.TimelinePoint { return p.timeline.Rows() }

// TimelineErr returns the error of the timeline load.
func (p *Correlation) TimelineErr() error { return p.timeline.Err() }

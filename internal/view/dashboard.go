package view

import (
	"errors"

	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/query"
)

// Dashboard joins the general statistics with the sentiment timeline.
// The table shows the timeline.
type Dashboard struct {
	*Controller[api.TimelinePoint]
	stats  *Controller[api.Stats]
	search string
}

// NewDashboard creates the dashboard page for the given window.
func NewDashboard(src Source, hours query.TimeRange, opts ...Option) *Dashboard {
	return &Dashboard{
		Controller: NewController("timeline", api.TimelineColumns,
			byHours(src.Timeline), query.ForHours(query.EndpointTimeline, hours), opts...),
		stats: NewController("dashboard stats", api.StatsColumns,
			statsFetcher(src), query.ForHours(query.EndpointStats, hours), opts...),
	}
}

// Title implements Page.
func (p *Dashboard) Title() string { return "Dashboard" }

// Start implements Page.
func (p *Dashboard) Start() []Pending {
	return []Pending{p.stats.Begin(), p.Begin()}
}

// Restart implements Page.
func (p *Dashboard) Restart() []Pending {
	return []Pending{p.stats.Refresh(), p.Refresh()}
}

// Loading reports whether either dataset is still loading.
func (p *Dashboard) Loading() bool {
	return p.stats.Loading() || p.Controller.Loading()
}

// Err joins the errors of both datasets.
func (p *Dashboard) Err() error {
	return errors.Join(p.stats.Err(), p.Controller.Err())
}

// StatsErr returns the error of the statistics load.
func (p *Dashboard) StatsErr() error { return p.stats.Err() }

// TimelineErr returns the error of the timeline load.
func (p *Dashboard) TimelineErr() error { return p.Controller.Err() }

// Hours implements Page.
func (p *Dashboard) Hours() query.TimeRange { return p.Key().Hours }

// SetHours changes the window of both datasets and reports whether a load is needed.
func (p *Dashboard) SetHours(r query.TimeRange) bool {
	a := p.stats.SetKey(query.ForHours(query.EndpointStats, r))
	b := p.SetKey(query.ForHours(query.EndpointTimeline, r))
	return a || b
}

// Set implements Page. Accepted: search, range.
func (p *Dashboard) Set(name, value string) (Change, error) {
	switch name {
	case SettingRange:
		return setHours(name, value, p.SetHours)
	case SettingSearch:
		p.search = value
		return filterChange(p.Filter(filterSearch, p.TextSearch(value, "time_period"))), nil
	}
	return ChangeNone, ErrUnsupported
}

// Setting implements Page.
func (p *Dashboard) Setting(name string) (string, bool) {
	switch name {
	case SettingRange:
		return p.Hours().String(), true
	case SettingSearch:
		return p.search, true
	}
	return "", false
}

// Settings implements Page.
func (p *Dashboard) Settings() []string { return []string{SettingSearch, SettingRange} }

// Reset clears the search.
func (p *Dashboard) Reset() bool {
	p.search = ""
	return p.Unfilter(filterSearch)
}

// View implements Page.
func (p *Dashboard) View() derive.Page[derive.Record] { return Erase(p.Controller.View()) }

// Stats returns the loaded statistics.
func (p *Dashboard) Stats() (api.Stats, bool) {
	rows := p.stats.Rows()
	if len(rows) == 0 {
		return api.Stats{}, false
	}
	return rows[0], true
}

// Distribution returns the record count per sentiment category.
func (p *Dashboard) Distribution() []api.DistributionRow {
	s, _ := p.Stats()
	return s.Distribution
}

package view

import (
	"github.com/sentidash/sentidash/internal/config"
	"github.com/sentidash/sentidash/internal/dataset"
	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/logging"
	"github.com/sentidash/sentidash/internal/query"
)

// OptionsFromConfig returns the controller options named by the loaded
// configuration: page_size, search_mode, cache_capacity and coalesce_requests.
func OptionsFromConfig() []Option {
	return []Option{
		WithPageSize(config.GetInt("page_size", derive.DefaultPageSize)),
		WithSearchMode(config.Get("search_mode", "substring")),
		WithLogger(logging.GetGlobal()),
		WithCache(
			dataset.WithCapacity(config.GetInt("cache_capacity", dataset.DefaultCapacity)),
			dataset.WithCoalescing(config.GetBool("coalesce_requests", false)),
			dataset.WithLogger(logging.GetGlobal()),
		),
	}
}

// HoursFromConfig returns default_hours, or the last 24 hours when it is not a
// valid window.
func HoursFromConfig() query.TimeRange {
	r, err := query.ParseTimeRange(config.Get("default_hours", "24"))
	if err != nil {
		return query.Last24Hours
	}
	return r
}

// NewsLimitFromConfig returns news_limit, or DefaultNewsLimit when it is not
// an accepted count.
func NewsLimitFromConfig() int {
	n := config.GetInt("news_limit", DefaultNewsLimit)
	if !query.ValidNewsLimit(n) {
		return DefaultNewsLimit
	}
	return n
}

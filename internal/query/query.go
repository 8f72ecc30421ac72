// Package query defines the identity of a remote dataset request.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeRange is a look-back window in hours. Only the values in TimeRanges are valid.
type TimeRange int

const (
	Last24Hours TimeRange = 24
	Last7Days   TimeRange = 168
	Last30Days  TimeRange = 720
)

// TimeRanges lists the valid windows in display order.
var TimeRanges = []TimeRange{Last24Hours, Last7Days, Last30Days}

// Hours returns the window length in hours.
func (r TimeRange) Hours() int { return int(r) }

// Valid reports whether r is one of TimeRanges.
func (r TimeRange) Valid() bool {
	for _, v := range TimeRanges {
		if v == r {
			return true
		}
	}
	return false
}

// String returns the short label, e.g. "7d".
func (r TimeRange) String() string {
	switch r {
	case Last24Hours:
		return "24h"
	case Last7Days:
		return "7d"
	case Last30Days:
		return "30d"
	default:
		return fmt.Sprintf("%dh", int(r))
	}
}

// Label returns the long label shown in selectors.
func (r TimeRange) Label() string {
	switch r {
	case Last24Hours:
		return "Last 24 Hours"
	case Last7Days:
		return "Last 7 Days"
	case Last30Days:
		return "Last 30 Days"
	default:
		return fmt.Sprintf("Last %d Hours", int(r))
	}
}

// Next cycles to the following window, wrapping around.
func (r TimeRange) Next() TimeRange {
	for i, v := range TimeRanges {
		if v == r {
			return TimeRanges[(i+1)%len(TimeRanges)]
		}
	}
	return TimeRanges[0]
}

// ParseTimeRange accepts an hour count ("168") or a short label ("7d", "24h").
func ParseTimeRange(s string) (TimeRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range TimeRanges {
		if s == v.String() {
			return v, nil
		}
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
	if err == nil && TimeRange(n).Valid() {
		return TimeRange(n), nil
	}
	return 0, fmt.Errorf("invalid time range %q: must be one of 24h, 7d, 30d", s)
}

// NewsLimits lists the accepted news page sizes.
var NewsLimits = []int{10, 20, 50, 100}

// ValidNewsLimit reports whether n is one of NewsLimits.
func ValidNewsLimit(n int) bool {
	for _, v := range NewsLimits {
		if v == n {
			return true
		}
	}
	return false
}

// Endpoint names a remote dataset.
type Endpoint string

const (
	EndpointStats       Endpoint = "dashboard/stats"
	EndpointTimeline    Endpoint = "sentiment/timeline"
	EndpointSentiment   Endpoint = "sentiment/summary_by_symbol"
	EndpointPrices      Endpoint = "stocks/prices_by_symbol"
	EndpointCorrelation Endpoint = "correlation/analysis"
	EndpointNews        Endpoint = "news/latest"
)

// Key identifies a request. Equal keys mean cached rows are still valid.
// Zero Hours or Limit means the parameter is not part of the request.
type Key struct {
	Endpoint Endpoint
	Hours    TimeRange
	Limit    int
}

// ForHours builds a time-ranged key.
func ForHours(e Endpoint, r TimeRange) Key {
	return Key{Endpoint: e, Hours: r}
}

// ForLimit builds a limit-keyed key.
func ForLimit(e Endpoint, limit int) Key {
	return Key{Endpoint: e, Limit: limit}
}

// IsZero reports whether k has never been set.
func (k Key) IsZero() bool {
	return k == Key{}
}

// String renders the key as a stable cache identifier, e.g. "stocks/prices_by_symbol?hours=24".
func (k Key) String() string {
	var params []string
	if k.Hours != 0 {
		params = append(params, "hours="+strconv.Itoa(k.Hours.Hours()))
	}
	if k.Limit != 0 {
		params = append(params, "limit="+strconv.Itoa(k.Limit))
	}
	if len(params) == 0 {
		return string(k.Endpoint)
	}
	return string(k.Endpoint) + "?" + strings.Join(params, "&")
}

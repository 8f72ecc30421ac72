package view

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/errors"
	"github.com/sentidash/sentidash/internal/notify"
)

// Report pushes a failed outcome to the bus as an error notification carrying
// the server detail. Stale and successful outcomes are ignored.
func Report(bus errors.Notifier, o Outcome) {
	if o.Stale || o.Err == nil {
		return
	}
	bus.Notify(notify.KindError, "Failed to load "+o.Dataset, api.Message(o.Err))
}

// ReportSuccess pushes a success notification for an applied outcome.
func ReportSuccess(bus errors.Notifier, o Outcome) {
	if !o.OK() {
		return
	}
	bus.Notify(notify.KindSuccess, "Loaded "+o.Dataset, fmt.Sprintf("%s rows", humanize.Comma(int64(o.Rows))))
}

// ReportAll reports every outcome, including successes when announce is set.
func ReportAll(bus errors.Notifier, outcomes []Outcome, announce bool) {
	for _, o := range outcomes {
		Report(bus, o)
		if announce {
			ReportSuccess(bus, o)
		}
	}
}

// ReportTo sends a failed outcome to an error handler, for command line use.
func ReportTo(h errors.ErrorHandler, o Outcome) {
	if o.Stale || o.Err == nil {
		return
	}
	h.Error(fmt.Sprintf("%s: %s", o.Dataset, api.Message(o.Err)))
}

// Age describes how long ago t was, or "never" for the zero time.
func Age(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

package view

import (
	"context"

	"github.com/sentidash/sentidash/internal/dataset"
	"github.com/sentidash/sentidash/internal/derive"
	"golang.org/x/sync/errgroup"
)

// Pending is an issued request that has not been performed yet.
// Perform may run on any goroutine.
type Pending interface {
	Perform(ctx context.Context) Done
}

// Done is a performed request. Apply hands the response to the controller that
// issued it and must run where the controller's state is owned.
type Done interface {
	Apply() Outcome
}

// Request is a pending load of one controller.
type Request[R derive.Record] struct {
	ctrl   *Controller[R]
	ticket dataset.Ticket
}

// Ticket returns the cache ticket of the request.
func (r *Request[R]) Ticket() dataset.Ticket { return r.ticket }

// Perform fetches the rows. A superseded request yields a stale result.
func (r *Request[R]) Perform(ctx context.Context) Done {
	rows, err := r.ctrl.cache.Fetch(ctx, r.ticket)
	return &Result[R]{ctrl: r.ctrl, ticket: r.ticket, rows: rows, err: err}
}

// Result is a performed load waiting to be applied.
type Result[R derive.Record] struct {
	ctrl   *Controller[R]
	ticket dataset.Ticket
	rows   []R
	err    error
}

// Apply stores the result on the controller unless a newer request was issued.
func (r *Result[R]) Apply() Outcome {
	return r.ctrl.apply(r)
}

// PerformAll runs every pending request in parallel and waits for all of them.
// A failing request does not cancel the others.
func PerformAll(ctx context.Context, pending ...Pending) []Done {
	done := make([]Done, len(pending))
	var g errgroup.Group
	for i, p := range pending {
		g.Go(func() error {
			done[i] = p.Perform(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return done
}

// ApplyAll applies results in order and returns their outcomes.
func ApplyAll(done []Done) []Outcome {
	out := make([]Outcome, len(done))
	for i, d := range done {
		out[i] = d.Apply()
	}
	return out
}

// Join performs the pending requests in parallel and applies them once all
// have resolved. Each outcome is independent, so one failure keeps the
// other datasets.
func Join(ctx context.Context, pending ...Pending) []Outcome {
	return ApplyAll(PerformAll(ctx, pending...))
}

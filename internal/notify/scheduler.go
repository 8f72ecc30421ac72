package notify

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call stopped the timer.
	Stop() bool
}

// Scheduler creates timers. Bus uses it for expiry so tests can control time.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules callbacks on the runtime timer.
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FakeScheduler is a manually advanced Scheduler for tests.
//
// Example:
//
//	sched := notify.NewFakeScheduler(time.Unix(0, 0))
//	bus := notify.NewBus(notify.WithScheduler(sched), notify.WithClock(sched.Now))
//	bus.Success("saved", "")
//	sched.Advance(4 * time.Second) // the notification expires here
type FakeScheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*fakeTimer
}

type fakeTimer struct {
	owner   *FakeScheduler
	at      time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewFakeScheduler returns a scheduler whose clock starts at start.
func NewFakeScheduler(start time.Time) *FakeScheduler {
	return &FakeScheduler{now: start}
}

// Now returns the scheduler's current time.
func (s *FakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc registers f to run once the clock has advanced by d.
func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{owner: s, at: s.now.Add(d), seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward and fires every due timer in deadline order.
// Callbacks run on the calling goroutine without the scheduler lock held.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	var due []*fakeTimer
	remaining := s.pending[:0]
	for _, t := range s.pending {
		switch {
		case t.stopped || t.fired:
		case !t.at.After(s.now):
			t.fired = true
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	s.pending = remaining
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	for _, t := range due {
		t.f()
	}
}

func (t *fakeTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

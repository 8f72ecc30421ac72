// Package notify implements the in-memory notification bus: transient
// messages that expire on their own after a per-kind delay unless dismissed first.
package notify

import (
	"sync"
	"time"

	"github.com/sentidash/sentidash/internal/logging"
)

// Listener receives the newest-first list after every change.
type Listener func([]Notification)

// Option configures a Bus.
type Option func(*Bus)

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(b *Bus) { b.sched = s }
}

// WithClock replaces the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

// WithMaxVisible caps the list length. The oldest entries beyond n are dropped.
// Zero means unlimited.
func WithMaxVisible(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxVisible = n
		}
	}
}

// WithLogger sets the logger used to trace bus activity.
func WithLogger(l logging.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// Bus stores active notifications and owns one expiry timer per non-sticky entry.
// It is safe for concurrent use; timers fire on their own goroutines.
type Bus struct {
	mu         sync.Mutex
	items      []Notification // newest first
	timers     map[uint64]Timer
	nextID     uint64
	listeners  map[int]Listener
	nextListen int
	closed     bool

	sched      Scheduler
	now        func() time.Time
	maxVisible int
	logger     logging.Logger
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		timers:    make(map[uint64]Timer),
		listeners: make(map[int]Listener),
		sched:     RealScheduler{},
		now:       time.Now,
		logger:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Notify adds a notification at the front of the list and returns its id.
// Without ttl the kind's default delay applies; an explicit ttl of 0 makes it sticky.
// A negative ttl falls back to the default.
func (b *Bus) Notify(kind Kind, title, message string, ttl ...time.Duration) uint64 {
	if !kind.Valid() {
		kind = KindInfo
	}
	delay := kind.DefaultTTL()
	if len(ttl) > 0 && ttl[0] >= 0 {
		delay = ttl[0]
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0
	}
	b.nextID++
	n := Notification{
		ID:        b.nextID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: b.now(),
		TTL:       delay,
	}
	b.items = append([]Notification{n}, b.items...)
	if !n.IsSticky() {
		id := n.ID
		b.timers[id] = b.sched.AfterFunc(delay, func() { b.expire(id) })
	}
	b.trimLocked()
	snapshot, listeners := b.snapshotLocked()
	b.mu.Unlock()

	b.logger.Debug("notification added", "id", n.ID, "kind", string(kind), "ttl", delay.String())
	publish(listeners, snapshot)
	return n.ID
}

// Success adds a success notification with the default TTL.
func (b *Bus) Success(title, message string) uint64 { return b.Notify(KindSuccess, title, message) }

// Error adds an error notification with the default TTL.
func (b *Bus) Error(title, message string) uint64 { return b.Notify(KindError, title, message) }

// Warning adds a warning notification with the default TTL.
func (b *Bus) Warning(title, message string) uint64 { return b.Notify(KindWarning, title, message) }

// Info adds an info notification with the default TTL.
func (b *Bus) Info(title, message string) uint64 { return b.Notify(KindInfo, title, message) }

// Dismiss removes the notification with the given id and cancels its timer.
// Unknown ids are ignored.
func (b *Bus) Dismiss(id uint64) {
	b.mu.Lock()
	if !b.removeLocked(id) {
		b.mu.Unlock()
		return
	}
	snapshot, listeners := b.snapshotLocked()
	b.mu.Unlock()

	b.logger.Debug("notification dismissed", "id", id)
	publish(listeners, snapshot)
}

// ClearAll removes every notification and cancels every pending timer.
func (b *Bus) ClearAll() {
	b.mu.Lock()
	hadItems := len(b.items) > 0
	b.stopAllLocked()
	b.items = nil
	snapshot, listeners := b.snapshotLocked()
	b.mu.Unlock()

	if hadItems {
		b.logger.Debug("notifications cleared")
		publish(listeners, snapshot)
	}
}

// List returns a newest-first copy of the active notifications.
func (b *Bus) List() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of active notifications.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Subscribe registers fn to be called after every change. Listeners run on the
// goroutine that made the change, outside the bus lock.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextListen++
	key := b.nextListen
	b.listeners[key] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, key)
	}
}

// Close stops every pending timer and rejects further notifications.
// Entries already in the list remain readable.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.stopAllLocked()
}

// PendingTimers returns the number of live expiry timers.
func (b *Bus) PendingTimers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.timers)
}

func (b *Bus) expire(id uint64) {
	b.mu.Lock()
	// The timer may fire after Dismiss or ClearAll already removed the entry.
	if _, live := b.timers[id]; !live {
		b.mu.Unlock()
		return
	}
	b.removeLocked(id)
	snapshot, listeners := b.snapshotLocked()
	b.mu.Unlock()

	b.logger.Debug("notification expired", "id", id)
	publish(listeners, snapshot)
}

func (b *Bus) removeLocked(id uint64) bool {
	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	for i, n := range b.items {
		if n.ID == id {
			b.items = append(b.items[:i:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Bus) trimLocked() {
	if b.maxVisible == 0 || len(b.items) <= b.maxVisible {
		return
	}
	for _, n := range b.items[b.maxVisible:] {
		if t, ok := b.timers[n.ID]; ok {
			t.Stop()
			delete(b.timers, n.ID)
		}
	}
	b.items = b.items[:b.maxVisible:b.maxVisible]
}

func (b *Bus) stopAllLocked() {
	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
}

func (b *Bus) snapshotLocked() ([]Notification, []Listener) {
	snapshot := make([]Notification, len(b.items))
	copy(snapshot, b.items)
	listeners := make([]Listener, 0, len(b.listeners))
	for i := 1; i <= b.nextListen; i++ {
		if l, ok := b.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	return snapshot, listeners
}

func publish(listeners []Listener, snapshot []Notification) {
	for _, l := range listeners {
		l(snapshot)
	}
}

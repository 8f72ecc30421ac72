package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(opts ...Option) (*Bus, *FakeScheduler) {
	sched := NewFakeScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	opts = append([]Option{WithScheduler(sched), WithClock(sched.Now)}, opts...)
	return NewBus(opts...), sched
}

func ids(list []Notification) []uint64 {
	out := make([]uint64, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func TestNotifyPrependsNewestFirst(t *testing.T) {
	bus, _ := newTestBus()

	a := bus.Info("a", "")
	b := bus.Info("b", "")
	c := bus.Info("c", "")

	assert.Equal(t, []uint64{c, b, a}, ids(bus.List()))
}

func TestIDsAreUniqueForSameInstant(t *testing.T) {
	bus, _ := newTestBus()

	seen := map[uint64]bool{}
	for i := 0; i < 50; i++ {
		id := bus.Success("same", "instant")
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestDefaultTTLsPerKind(t *testing.T) {
	tests := []struct {
		kind Kind
		ttl  time.Duration
	}{
		{KindSuccess, 4 * time.Second},
		{KindError, 6 * time.Second},
		{KindWarning, 5 * time.Second},
		{KindInfo, 4 * time.Second},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			bus, sched := newTestBus()
			bus.Notify(tt.kind, "title", "msg")

			sched.Advance(tt.ttl - time.Millisecond)
			assert.Equal(t, 1, bus.Len())

			sched.Advance(time.Millisecond)
			assert.Equal(t, 0, bus.Len())
		})
	}
}

func TestExpiryKeepsOthers(t *testing.T) {
	bus, sched := newTestBus()

	errID := bus.Error("err", "")
	okID := bus.Success("ok", "")

	sched.Advance(4 * time.Second)
	assert.Equal(t, []uint64{errID}, ids(bus.List()))

	sched.Advance(2 * time.Second)
	assert.Empty(t, bus.List())
	assert.NotZero(t, okID)
}

func TestStickyNeverExpires(t *testing.T) {
	bus, sched := newTestBus()

	id := bus.Notify(KindError, "pinned", "", Sticky)
	sched.Advance(24 * time.Hour)

	list := bus.List()
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.True(t, list[0].IsSticky())
	assert.Zero(t, bus.PendingTimers())
}

func TestExplicitTTL(t *testing.T) {
	bus, sched := newTestBus()

	bus.Notify(KindInfo, "short", "", 500*time.Millisecond)
	sched.Advance(500 * time.Millisecond)

	assert.Empty(t, bus.List())
}

func TestNegativeTTLUsesDefault(t *testing.T) {
	bus, _ := newTestBus()

	bus.Notify(KindWarning, "w", "", -time.Second)

	require.Len(t, bus.List(), 1)
	assert.Equal(t, 5*time.Second, bus.List()[0].TTL)
}

func TestDismissCancelsTimer(t *testing.T) {
	bus, sched := newTestBus()

	id := bus.Info("x", "")
	require.Equal(t, 1, sched.Pending())

	bus.Dismiss(id)

	assert.Empty(t, bus.List())
	assert.Equal(t, 0, sched.Pending())
	assert.Zero(t, bus.PendingTimers())
}

func TestDismissIsIdempotent(t *testing.T) {
	bus, _ := newTestBus()
	calls := 0
	bus.Subscribe(func([]Notification) { calls++ })

	id := bus.Info("x", "")
	bus.Dismiss(id)
	bus.Dismiss(id)
	bus.Dismiss(9999)

	assert.Empty(t, bus.List())
	assert.Equal(t, 2, calls)
}

func TestDismissedEntryNotResurrectedByLateTimer(t *testing.T) {
	bus, sched := newTestBus()

	id := bus.Info("x", "")
	keep := bus.Notify(KindInfo, "keep", "", Sticky)
	bus.Dismiss(id)
	sched.Advance(10 * time.Second)

	assert.Equal(t, []uint64{keep}, ids(bus.List()))
}

func TestClearAllStopsTimers(t *testing.T) {
	bus, sched := newTestBus()

	bus.Info("a", "")
	bus.Error("b", "")
	bus.Notify(KindWarning, "c", "", Sticky)
	require.Equal(t, 2, sched.Pending())

	bus.ClearAll()

	assert.Empty(t, bus.List())
	assert.Equal(t, 0, sched.Pending())

	// later notifications behave normally
	bus.Info("d", "")
	sched.Advance(4 * time.Second)
	assert.Empty(t, bus.List())
}

func TestListReturnsCopy(t *testing.T) {
	bus, _ := newTestBus()
	bus.Info("a", "")

	list := bus.List()
	list[0].Title = "mutated"

	assert.Equal(t, "a", bus.List()[0].Title)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	bus, sched := newTestBus()
	var got [][]uint64
	unsubscribe := bus.Subscribe(func(list []Notification) {
		got = append(got, ids(list))
	})

	a := bus.Info("a", "")
	b := bus.Error("b", "")
	sched.Advance(4 * time.Second)
	unsubscribe()
	bus.ClearAll()

	assert.Equal(t, [][]uint64{{a}, {b, a}, {b}}, got)
}

func TestMaxVisibleDropsOldest(t *testing.T) {
	bus, sched := newTestBus(WithMaxVisible(2))

	bus.Info("a", "")
	b := bus.Info("b", "")
	c := bus.Info("c", "")

	assert.Equal(t, []uint64{c, b}, ids(bus.List()))
	assert.Equal(t, 2, sched.Pending())
}

func TestCloseStopsTimersAndRejects(t *testing.T) {
	bus, sched := newTestBus()
	bus.Info("a", "")

	bus.Close()

	assert.Equal(t, 0, sched.Pending())
	assert.Zero(t, bus.Info("b", ""))
	assert.Len(t, bus.List(), 1)
}

func TestInvalidKindFallsBackToInfo(t *testing.T) {
	bus, _ := newTestBus()

	bus.Notify(Kind("bogus"), "t", "")

	assert.Equal(t, KindInfo, bus.List()[0].Kind)
}

func TestRealSchedulerExpiry(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	done := make(chan struct{})
	var once sync.Once
	bus.Subscribe(func(list []Notification) {
		if len(list) == 0 {
			once.Do(func() { close(done) })
		}
	})

	bus.Notify(KindInfo, "fast", "", 10*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification did not expire")
	}
	assert.Empty(t, bus.List())
}

func TestConcurrentNotifyAndDismiss(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := bus.Notify(KindInfo, "x", "", Sticky)
			bus.Dismiss(id)
		}()
	}
	wg.Wait()

	assert.Empty(t, bus.List())
}

package errors

import (
	"sync"
	"testing"
	"time"

	"github.com/sentidash/sentidash/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockColorOutput records the last message per level.
type mockColorOutput struct {
	mu   sync.Mutex
	last map[string]string
}

func newMockColorOutput() *mockColorOutput {
	return &mockColorOutput{last: map[string]string{}}
}

func (m *mockColorOutput) record(level string, msgs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(msgs) > 0 {
		m.last[level] = msgs[0]
	}
}

func (m *mockColorOutput) Error(msgs ...string)   { m.record("error", msgs) }
func (m *mockColorOutput) Warning(msgs ...string) { m.record("warning", msgs) }
func (m *mockColorOutput) Info(msgs ...string)    { m.record("info", msgs) }
func (m *mockColorOutput) Success(msgs ...string) { m.record("success", msgs) }

func TestCLIHandlerRoutesEachLevel(t *testing.T) {
	mock := newMockColorOutput()
	handler := NewCLIHandler(mock)

	handler.Error("test error")
	handler.Warning("test warning")
	handler.Info("test info")
	handler.Success("test success")

	assert.Equal(t, map[string]string{
		"error":   "test error",
		"warning": "test warning",
		"info":    "test info",
		"success": "test success",
	}, mock.last)
}

func TestBusHandlerPublishesNotifications(t *testing.T) {
	sched := notify.NewFakeScheduler(time.Unix(0, 0))
	bus := notify.NewBus(notify.WithScheduler(sched), notify.WithClock(sched.Now))
	handler := NewBusHandler(bus)

	handler.Error("request failed")
	handler.Success("exported")

	list := bus.List()
	require.Len(t, list, 2)
	assert.Equal(t, notify.KindSuccess, list[0].Kind)
	assert.Equal(t, "exported", list[0].Message)
	assert.Equal(t, notify.KindError, list[1].Kind)
	assert.Equal(t, "Error", list[1].Title)
	assert.Equal(t, 6*time.Second, list[1].TTL)
}

func TestBusHandlerWarningAndInfoExpire(t *testing.T) {
	sched := notify.NewFakeScheduler(time.Unix(0, 0))
	bus := notify.NewBus(notify.WithScheduler(sched), notify.WithClock(sched.Now))
	handler := NewBusHandler(bus)

	handler.Warning("slow")
	handler.Info("hint")
	sched.Advance(5 * time.Second)

	assert.Empty(t, bus.List())
}

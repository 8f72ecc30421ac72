// Package errors routes user-facing messages to the console or to the notification bus.
package errors

import (
	"time"

	"github.com/sentidash/sentidash/internal/notify"
)

// ErrorHandler is the interface for reporting user-facing messages.
// Different implementations handle them differently based on context.
type ErrorHandler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// ColorOutput is the console sink used by CLIHandler.
type ColorOutput interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

// CLIHandler prints messages to stdout/stderr.
type CLIHandler struct {
	colors ColorOutput
}

// NewCLIHandler returns a handler writing through out.
func NewCLIHandler(out ColorOutput) *CLIHandler {
	return &CLIHandler{colors: out}
}

func (h *CLIHandler) Error(msg string)   { h.colors.Error(msg) }
func (h *CLIHandler) Warning(msg string) { h.colors.Warning(msg) }
func (h *CLIHandler) Info(msg string)    { h.colors.Info(msg) }
func (h *CLIHandler) Success(msg string) { h.colors.Success(msg) }

// Notifier is the part of the notification bus BusHandler needs.
type Notifier interface {
	Notify(kind notify.Kind, title, message string, ttl ...time.Duration) uint64
}

// BusHandler turns messages into notifications with the kind's default TTL.
type BusHandler struct {
	bus Notifier
}

// NewBusHandler returns a handler publishing to bus.
func NewBusHandler(bus Notifier) *BusHandler {
	return &BusHandler{bus: bus}
}

func (h *BusHandler) Error(msg string)   { h.bus.Notify(notify.KindError, "Error", msg) }
func (h *BusHandler) Warning(msg string) { h.bus.Notify(notify.KindWarning, "Warning", msg) }
func (h *BusHandler) Info(msg string)    { h.bus.Notify(notify.KindInfo, "Info", msg) }
func (h *BusHandler) Success(msg string) { h.bus.Notify(notify.KindSuccess, "Success", msg) }

var (
	_ ErrorHandler = (*CLIHandler)(nil)
	_ ErrorHandler = (*BusHandler)(nil)
)

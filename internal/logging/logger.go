// Package logging provides structured JSON file logging for sentidash.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/sentidash/sentidash/internal/colors"
)

const filePrefix = "sentidash_"

// Logger is the structured logging interface.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...any)
	// Info logs an informational message.
	Info(msg string, args ...any)
	// Warn logs a warning message.
	Warn(msg string, args ...any)
	// Error logs an error message.
	Error(msg string, args ...any)
	// With returns a new logger with additional key-value pairs.
	With(args ...any) Logger
	// Shutdown flushes any buffered logs and releases resources.
	Shutdown() error
}

type loggerImpl struct {
	mu       *sync.RWMutex
	clogger  *clog.Logger
	closer   io.Closer
	redactor *redactor
	fields   []any
	path     string
}

// Init initializes a file Logger with the given configuration.
// If cfg.Enabled is false, returns a no-op logger.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	logDir, err := LogDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine log directory: %w", err)
	}
	if err := rotate(logDir, cfg.MaxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
	fname := fmt.Sprintf("%s%s_PID%d_%s.log",
		filePrefix,
		time.Now().Format("20060102_150405"),
		cfg.PID,
		strings.ReplaceAll(cfg.Command, " ", "_"))
	path := filepath.Join(logDir, fname)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l := newLogger(f, cfg)
	l.closer = f
	l.path = path
	return l, nil
}

// New returns a JSON logger writing to w. It is used for tests and for
// callers that want logs on an arbitrary stream.
func New(w io.Writer, cfg Config) Logger {
	return newLogger(w, cfg)
}

func newLogger(w io.Writer, cfg Config) *loggerImpl {
	clogger := clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
	})
	clogger.SetFormatter(clog.JSONFormatter)
	clogger = clogger.With("pid", cfg.PID, "command", cfg.Command)
	return &loggerImpl{
		mu:       &sync.RWMutex{},
		clogger:  clogger,
		redactor: newRedactor(),
	}
}

func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "info":
		return clog.InfoLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *loggerImpl) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *loggerImpl) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *loggerImpl) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *loggerImpl) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

func (l *loggerImpl) log(level clog.Level, msg string, args []any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := make([]any, 0, len(l.fields)+len(args))
	all = append(all, l.fields...)
	all = append(all, args...)
	l.clogger.Log(level, msg, l.redactor.redact(all)...)
}

// With returns a child logger sharing the same sink with extra base fields.
func (l *loggerImpl) With(args ...any) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fields := make([]any, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	for i := 0; i+1 < len(args); i += 2 {
		if _, ok := args[i].(string); ok {
			fields = append(fields, args[i], args[i+1])
		}
	}
	return &loggerImpl{
		mu:       l.mu,
		clogger:  l.clogger,
		closer:   l.closer,
		redactor: l.redactor,
		fields:   fields,
		path:     l.path,
	}
}

func (l *loggerImpl) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

type noopLogger struct{}

func (n noopLogger) Debug(msg string, args ...any) {}
func (n noopLogger) Info(msg string, args ...any)  {}
func (n noopLogger) Warn(msg string, args ...any)  {}
func (n noopLogger) Error(msg string, args ...any) {}
func (n noopLogger) With(args ...any) Logger       { return n }
func (n noopLogger) Shutdown() error               { return nil }

// Noop returns a logger that discards everything.
func Noop() Logger { return noopLogger{} }

var (
	globalLogger   Logger
	globalLoggerMu sync.RWMutex
)

// InitGlobal initializes the global logger from the global configuration and
// mirrors console output into it. Calling it again replaces the previous logger.
func InitGlobal() error {
	l, err := Init(FromGlobalConfig())
	if err != nil {
		return err
	}
	globalLoggerMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalLoggerMu.Unlock()
	if prev != nil {
		prev.Shutdown()
	}
	colors.SetLogger(l)
	if path := CurrentLogFile(); path != "" {
		colors.Debug("Logging to file:", path)
	}
	return nil
}

// GetGlobal returns the global logger, or a no-op logger if not initialized.
func GetGlobal() Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if globalLogger == nil {
		return noopLogger{}
	}
	return globalLogger
}

// Debug logs a debug message using the global logger.
func Debug(msg string, args ...any) { GetGlobal().Debug(msg, args...) }

// Info logs an info message using the global logger.
func Info(msg string, args ...any) { GetGlobal().Info(msg, args...) }

// Warn logs a warning message using the global logger.
func Warn(msg string, args ...any) { GetGlobal().Warn(msg, args...) }

// Error logs an error message using the global logger.
func Error(msg string, args ...any) { GetGlobal().Error(msg, args...) }

// With returns a new global logger with additional key-value pairs.
func With(args ...any) Logger { return GetGlobal().With(args...) }

// ShutdownGlobal shuts down the global logger.
func ShutdownGlobal() error {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	colors.SetLogger(nil)
	if globalLogger == nil {
		return nil
	}
	err := globalLogger.Shutdown()
	globalLogger = nil
	return err
}

// CurrentLogFile returns the path of the active log file, or "" when logging to a file is off.
func CurrentLogFile() string {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if impl, ok := globalLogger.(*loggerImpl); ok {
		return impl.path
	}
	return ""
}

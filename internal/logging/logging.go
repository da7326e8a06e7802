// Package logging provides a shared, structured logger for zettelkasten.
//
// It wraps the standard library's [log/slog] package and provides a single
// initialization point so all components share the same output handler and
// log level. The log level can be controlled at startup via the
// ZETTELKASTEN_LOG_LEVEL environment variable (debug, info, warn, error).
// If unset, the default level is INFO.
//
// Usage:
//
//	log := logging.New("storage")      // creates a logger tagged with component="storage"
//	log.Info("opened database", "dsn", dsn)
//	log.Error("failed to save", "error", err)
//
// Output goes to stderr unless Configure points it at a file. The terminal
// front end owns the screen while it runs, so the entry point redirects logs
// to a file whenever one is configured.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu sync.Mutex

	// output receives every record. It is swapped by Configure.
	output io.Writer = os.Stderr

	// baseLogger is rebuilt whenever the output or level changes; component
	// loggers resolve it lazily through the handler below.
	baseLogger *slog.Logger

	// configuredLevel is used when ZETTELKASTEN_LOG_LEVEL is unset.
	configuredLevel string
)

// New returns a structured logger scoped to the given component name.
//
// The component name is added as a "component" attribute to every log entry
// produced by the returned logger. If component is empty, the base logger is
// returned without any additional attributes.
func New(component string) *slog.Logger {
	logger := slog.New(&switchHandler{})
	if component == "" {
		return logger
	}
	return logger.With("component", component)
}

// Configure sends all subsequent log output to path. Empty values restore
// stderr. Parent directories are created when missing.
func Configure(path string) error {
	mu.Lock()
	defer mu.Unlock()
	path = strings.TrimSpace(path)
	if path == "" {
		output = os.Stderr
		baseLogger = nil
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	output = f
	baseLogger = nil
	return nil
}

// SetLevel sets the level used when ZETTELKASTEN_LOG_LEVEL is not set.
func SetLevel(value string) {
	mu.Lock()
	defer mu.Unlock()
	configuredLevel = value
	baseLogger = nil
}

func base() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if baseLogger == nil {
		baseLogger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
			Level: parseLevel(levelSetting()),
		}))
	}
	return baseLogger
}

func levelSetting() string {
	if v := os.Getenv("ZETTELKASTEN_LOG_LEVEL"); strings.TrimSpace(v) != "" {
		return v
	}
	return configuredLevel
}

// parseLevel converts a human-readable log level string to a [slog.Level].
//
// Recognized values (case-insensitive, whitespace-trimmed):
//   - "debug"           → slog.LevelDebug
//   - "warn", "warning" → slog.LevelWarn
//   - "error"           → slog.LevelError
//   - anything else     → slog.LevelInfo (the default)
func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// switchHandler resolves the current base handler on every call so loggers
// created at package init still follow a later Configure.
type switchHandler struct {
	ops []func(slog.Handler) slog.Handler
}

func (h *switchHandler) resolve() slog.Handler {
	handler := base().Handler()
	for _, op := range h.ops {
		handler = op(handler)
	}
	return handler
}

func (h *switchHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.resolve().Enabled(ctx, level)
}

func (h *switchHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.resolve().Handle(ctx, record)
}

func (h *switchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *switchHandler) WithGroup(name string) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *switchHandler) with(op func(slog.Handler) slog.Handler) slog.Handler {
	ops := make([]func(slog.Handler) slog.Handler, 0, len(h.ops)+1)
	ops = append(ops, h.ops...)
	ops = append(ops, op)
	return &switchHandler{ops: ops}
}

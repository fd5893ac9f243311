package ffgate

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel represents ffgate log levels.
type LogLevel int32

// Log level constants. They map onto slog levels, with LogQuiet disabling
// output entirely.
const (
	LogQuiet   LogLevel = -8 // Print no output
	LogError   LogLevel = 16 // Rejected operations that indicate corruption, cleanup panics
	LogWarning LogLevel = 24 // Double releases, type confusion, leaks at shutdown
	LogInfo    LogLevel = 32 // Standard information
	LogDebug   LogLevel = 48 // Every register and release
)

// EnvLog selects the initial log level: debug, info, warn, error or off.
const EnvLog = "FFGATE_LOG"

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch {
	case l <= LogQuiet:
		return "off"
	case l <= LogError:
		return "error"
	case l <= LogWarning:
		return "warn"
	case l <= LogInfo:
		return "info"
	default:
		return "debug"
	}
}

// ParseLogLevel parses the values accepted by FFGATE_LOG.
func ParseLogLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "quiet", "none":
		return LogQuiet, true
	case "error":
		return LogError, true
	case "warn", "warning":
		return LogWarning, true
	case "info":
		return LogInfo, true
	case "debug":
		return LogDebug, true
	}
	return LogQuiet, false
}

func (l LogLevel) slogLevel() slog.Level {
	switch {
	case l <= LogError:
		return slog.LevelError
	case l <= LogWarning:
		return slog.LevelWarn
	case l <= LogInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// swapHandler forwards to a handler that can be replaced at any time, so the
// default registry picks up SetLogger calls made after it was created.
// Handlers derived through WithAttrs and WithGroup share the root and replay
// their derivations on the current handler for every call.
type swapHandler struct {
	root   *atomic.Pointer[slog.Handler]
	derive []func(slog.Handler) slog.Handler
}

func (s *swapHandler) load() slog.Handler {
	h := *s.root.Load()
	for _, d := range s.derive {
		h = d(h)
	}
	return h
}

func (s *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return s.load().Enabled(ctx, level)
}

func (s *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.load().Handle(ctx, r)
}

func (s *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	return s.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (s *swapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return s.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (s *swapHandler) with(d func(slog.Handler) slog.Handler) *swapHandler {
	derive := make([]func(slog.Handler) slog.Handler, len(s.derive), len(s.derive)+1)
	copy(derive, s.derive)
	return &swapHandler{root: s.root, derive: append(derive, d)}
}

var (
	logHandler = newSwapHandler()
	logger     = slog.New(logHandler)
)

func newSwapHandler() *swapHandler {
	s := &swapHandler{root: new(atomic.Pointer[slog.Handler])}
	var h slog.Handler = slog.DiscardHandler
	if lvl, ok := ParseLogLevel(os.Getenv(EnvLog)); ok && lvl > LogQuiet {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl.slogLevel()})
	}
	s.root.Store(&h)
	return s
}

// SetLogger routes ffgate's logs to l. Pass nil to silence them. Loggers
// obtained from Logger, or derived from it, already follow SetLogger and are
// ignored.
func SetLogger(l *slog.Logger) {
	var h slog.Handler = slog.DiscardHandler
	if l != nil {
		h = l.Handler()
	}
	if sh, ok := h.(*swapHandler); ok && sh.root == logHandler.root {
		return
	}
	logHandler.root.Store(&h)
}

// SetLogLevel logs to stderr at the given level.
func SetLogLevel(level LogLevel) {
	if level <= LogQuiet {
		SetLogger(nil)
		return
	}
	SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level.slogLevel()})))
}

// Logger returns the logger ffgate writes to.
func Logger() *slog.Logger {
	return logger
}

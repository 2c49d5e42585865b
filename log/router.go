// Package log routes log lines emitted by the native library's logging
// callback into slog. The native layer reports records as (level, target,
// message, module path, file, line); the router maps its numeric levels onto
// slog levels and republishes each record on a configurable logger.
package log

import (
	"context"
	"log/slog"
)

// Native log levels, matching the env_logger convention the native layer uses.
const (
	LevelError uint32 = 1
	LevelWarn  uint32 = 2
	LevelInfo  uint32 = 3
	LevelDebug uint32 = 4
	LevelTrace uint32 = 5
)

// Record is one native log line, already copied into Go memory.
type Record struct {
	Target  string
	Message string
	File    string
	Level   uint32
	Line    uint32
}

// Router republishes native log records through slog.
type Router struct {
	opts routerConfig
}

// RouterOption configures a Router.
type RouterOption func(*routerConfig)

type routerConfig struct {
	logger    *slog.Logger
	minLevel  slog.Level
	addSource bool
}

func defaultRouterConfig() routerConfig {
	return routerConfig{
		logger:   slog.Default(),
		minLevel: slog.LevelInfo,
	}
}

// WithLogger sets the destination logger.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(c *routerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMinLevel sets the minimum slog level to republish.
// Records mapping below this level are dropped.
func WithMinLevel(level slog.Level) RouterOption {
	return func(c *routerConfig) {
		c.minLevel = level
	}
}

// WithSource enables forwarding of the native file/line as attributes.
func WithSource(enabled bool) RouterOption {
	return func(c *routerConfig) {
		c.addSource = enabled
	}
}

// NewRouter creates a Router with the given options.
func NewRouter(opts ...RouterOption) *Router {
	cfg := defaultRouterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Router{opts: cfg}
}

// SlogLevel maps a native numeric level onto a slog level. Unknown levels map
// to debug so a misbehaving native layer cannot spam the caller's info stream.
func SlogLevel(native uint32) slog.Level {
	switch native {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4 // trace and anything unexpected
	}
}

// Route republishes one native record. Safe to call from any thread: the
// native layer invokes its logging callback from its own thread pool.
func (r *Router) Route(rec Record) {
	level := SlogLevel(rec.Level)
	if level < r.opts.minLevel {
		return
	}
	attrs := []any{slog.String("target", rec.Target)}
	if r.opts.addSource && rec.File != "" {
		attrs = append(attrs,
			slog.String("native_file", rec.File),
			slog.Int("native_line", int(rec.Line)),
		)
	}
	r.opts.logger.Log(context.Background(), level, rec.Message, attrs...)
}

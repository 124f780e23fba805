// Package logger provides the application's structured logging:
// single-line KV or JSON output with a pinned key order, per-component
// child loggers, context-carried correlation ids and debug sampling.
package logger

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/anketabot/internal/buildinfo"
	"github.com/m3rciful/anketabot/internal/config"
)

// Package-level loggers. Nil until InitLogger runs; the Event helpers
// tolerate that, so library code can log unconditionally.
var (
	// L is the root logger.
	L *slog.Logger
	// DB is scoped to database access.
	DB *slog.Logger
	// MIG is scoped to schema migrations.
	MIG *slog.Logger
	// TG is scoped to the Telegram transport.
	TG *slog.Logger
	// TWire is scoped to bot wiring (commands, callbacks, routes).
	TWire *slog.Logger
)

var (
	setupOnce sync.Once
	teardown  sync.Once

	out      *sink
	toClose  []io.Closer
	minLevel slog.LevelVar

	sampler    = newRatioSampler(1, 50)
	forceDebug bool
)

// InitLogger builds the root logger from config. Subsequent calls are
// no-ops.
func InitLogger(cfg *config.Config) error {
	setupOnce.Do(func() {
		minLevel.Set(pickLevel(cfg))
		sampler.Set(pickSample(cfg))
		forceDebug = envTruthy("TRACE") || envTruthy("LOG_TRACE")

		dests, closers := openDests(cfg)
		toClose = closers
		out = newSink(dests, 0)

		L = slog.New(newLineHandler(lineOptions{
			minLevel: &minLevel,
			out:      out,
			json:     pickJSON(cfg),
			order:    pickOrder(cfg),
		}))
		slog.SetDefault(L)

		DB = L.With("component", "db")
		MIG = L.With("component", "db.migrate")
		TG = L.With("component", "tg")
		TWire = L.With("component", "tg.wire")

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", pickProfile(cfg)),
		)
	})
	return nil
}

// Shutdown flushes pending log output and closes file sinks.
func Shutdown() error {
	var err error
	teardown.Do(func() {
		if out != nil {
			err = out.Close()
		}
		for _, c := range toClose {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}

func pickJSON(cfg *config.Config) bool {
	if cfg == nil {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "kv", "text", "pretty":
		return false
	case "json":
		return true
	}
	profile := strings.ToLower(strings.TrimSpace(cfg.Logging.Profile))
	return profile != "debug" && profile != "dev"
}

func pickOrder(cfg *config.Config) []string {
	if cfg == nil {
		return nil
	}
	raw := strings.TrimSpace(cfg.Logging.KeysOrder)
	if raw == "" || raw == "default" {
		return nil
	}
	var order []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			order = append(order, part)
		}
	}
	return order
}

func pickLevel(cfg *config.Config) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func pickSample(cfg *config.Config) (int, int) {
	if cfg == nil || strings.TrimSpace(cfg.Logging.DebugSample) == "" {
		return 1, 50
	}
	num, den := parseRatioSpec(cfg.Logging.DebugSample)
	if num == 0 && den == 0 {
		return 0, 0
	}
	if num < 0 || den <= 0 {
		return 1, 50
	}
	return num, den
}

func pickProfile(cfg *config.Config) string {
	if cfg != nil {
		if p := strings.TrimSpace(cfg.Logging.Profile); p != "" {
			return strings.ToLower(p)
		}
	}
	return "prod"
}

func openDests(cfg *config.Config) ([]io.Writer, []io.Closer) {
	dests := []io.Writer{os.Stdout}
	if cfg == nil {
		return dests, nil
	}
	dir := strings.TrimSpace(cfg.Logging.Dir)
	name := strings.TrimSpace(cfg.Logging.BotFile)
	if dir == "" || name == "" {
		return dests, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("logger: mkdir %s: %v", dir, err)
		return dests, nil
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: open %s: %v", path, err)
		return dests, nil
	}
	return append(dests, f), []io.Closer{f}
}

func envTruthy(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Background returns a fresh root context for work not tied to an update.
func Background() context.Context {
	return context.Background()
}

// LogEvent emits attrs on the given logger with a leading event key.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns a child logger carrying the component attribute.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs one event under the named component.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	logg := Component(component)
	if logg == nil {
		if logg = FromContext(ctx); logg == nil {
			return
		}
		if name := strings.TrimSpace(component); name != "" {
			logg = logg.With("component", name)
		}
	}
	LogEvent(ctx, logg, level, event, attrs...)
}

// Debug logs a debug-level event under the component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event under the component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event under the component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event under the component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug gates high-volume debug detail behind the sampling
// ratio. TRACE=1 in the environment lets everything through.
func ShouldSampleDebug() bool {
	return forceDebug || sampler.Allow()
}

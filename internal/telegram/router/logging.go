// Package router turns a registry of commands and callbacks into telebot
// routes, wrapping every handler with recovery, logging and a per-update
// summary line.
package router

import (
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/anketabot/internal/logger"
	tghelpers "github.com/m3rciful/anketabot/internal/telegram/helpers"
	"github.com/m3rciful/anketabot/internal/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summary carries everything needed to emit one handler.handled line.
// Status stays empty unless the caller wants to override the ok/fail
// derivation from the handler error.
type summary struct {
	name   string
	start  time.Time
	status string
	extras []slog.Attr
}

// observe runs fn under the named handler and logs its outcome.
func observe(c tele.Context, s summary, fn func() error) error {
	tghelpers.WithHandler(c, s.name)
	err := fn()
	s.emit(c, err)
	return err
}

func (s summary) emit(c tele.Context, err error) {
	ctx := tghelpers.WithHandler(c, s.name)

	status := s.status
	if status == "" {
		status = "ok"
		if err != nil {
			status = "fail"
		}
	}

	msgs, kb := middleware.GetCounters(c)
	attrs := make([]slog.Attr, 0, 8+len(s.extras))
	attrs = append(attrs,
		slog.String("status", status),
		slog.String("handler", s.name),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(s.start)).Milliseconds()),
	)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	attrs = append(attrs, s.extras...)

	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "handler.handled", attrs...)
}

// handlerSlug makes a stable lowercase identifier out of a command or
// endpoint name.
func handlerSlug(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// deriveErrorCode prefers an explicit Code() on the error and falls back
// to the concrete error type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if c, ok := err.(interface{ Code() string }); ok {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}

package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/anketabot/internal/telegram"
	"github.com/m3rciful/anketabot/internal/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions configures the single OnCallback route.
type CallbackOptions struct {
	// NotFound handles callbacks whose key has no registered handler.
	// Nil falls back to the registry's default.
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches every callback update by its key. The query is
// acknowledged up front so buttons never stay in the loading state.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler: func(c tele.Context) error {
			start := time.Now()
			_ = c.Respond()

			key := callbackKey(c.Callback())
			handler, ok := reg.GetCallback(key)
			if !ok {
				handler = opts.NotFound
				if handler == nil {
					handler = reg.CallbackNotFound()
				}
				return observe(c, summary{
					name:   "callback",
					start:  start,
					status: "unknown_callback",
					extras: []slog.Attr{slog.String("cb_key", key)},
				}, func() error { return handler(c) })
			}

			return observe(c, summary{
				name:   "callback",
				start:  start,
				extras: []slog.Attr{slog.String("cb_key", key)},
			}, func() error { return handler(c) })
		},
	}
}

func callbackKey(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	key, _ := callbacks.ParseCallbackData(cb.Data)
	return key
}

package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/anketabot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns a handler panic into an error log line. The
// update is dropped; the bot keeps polling.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if p := recover(); p != nil {
				attrs := []slog.Attr{
					slog.String("event", "tg.panic"),
					slog.Any("err", p),
					slog.String("stack", string(debug.Stack())),
				}
				if u := c.Sender(); u != nil {
					attrs = append(attrs, slog.Int64("user_id", u.ID))
				}
				logger.TG.LogAttrs(logger.Background(), slog.LevelError, "panic recovered", attrs...)
			}
		}()
		return next(c)
	}
}

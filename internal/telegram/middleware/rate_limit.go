package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/anketabot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures per-user pacing. Update kinds listed in
// Exclude bypass the limiter entirely.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

type userPacer struct {
	mu   sync.Mutex
	last map[int64]time.Time
}

// tooSoon records the hit and reports whether it arrived inside the
// minimum interval.
func (p *userPacer) tooSoon(userID int64, interval time.Duration) bool {
	now := time.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.last[userID]; ok && now.Sub(prev) < interval {
		return true
	}
	p.last[userID] = now
	return false
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// RateLimitMiddleware enforces a minimum interval between updates from
// the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	pacer := &userPacer{last: map[int64]time.Time{}}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			u := c.Sender()
			if u == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if !pacer.tooSoon(u.ID, opts.Interval) {
				return next(c)
			}

			attrs := []slog.Attr{
				slog.String("event", "tg.rate_limit"),
				slog.Int64("user_id", u.ID),
			}
			if ch := c.Chat(); ch != nil {
				attrs = append(attrs, slog.Int64("chat_id", ch.ID))
			}
			logger.TG.LogAttrs(logger.Background(), slog.LevelWarn, "rate limit", attrs...)

			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			return nil
		}
	}
}

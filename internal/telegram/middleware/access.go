package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions configures the admin gate. IsAdmin is the allow-list
// predicate; when nil, nobody passes.
type AdminOptions struct {
	IsAdmin  func(userID int64) bool
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware stops updates from users outside the allow-list.
// Rejected users get OnReject, or silence when it is unset.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			u := c.Sender()
			if u != nil && opts.IsAdmin != nil && opts.IsAdmin(u.ID) {
				return next(c)
			}
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}

package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const statsKey = "send_stats"

// sendStats accumulates what a handler sent, for the summary log line.
type sendStats struct {
	messages int
	keyboard bool
}

func statsOf(c tele.Context) *sendStats {
	s, _ := c.Get(statsKey).(*sendStats)
	return s
}

// countingContext intercepts the send family of calls to tally
// delivered messages and keyboard usage.
type countingContext struct{ tele.Context }

func (cc countingContext) record(opts []interface{}) {
	s := statsOf(cc.Context)
	if s == nil {
		return
	}
	s.messages++
	if !s.keyboard {
		s.keyboard = withKeyboard(opts)
	}
}

func withKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (cc countingContext) Send(what interface{}, opts ...interface{}) error {
	err := cc.Context.Send(what, opts...)
	if err == nil {
		cc.record(opts)
	}
	return err
}

func (cc countingContext) Reply(what interface{}, opts ...interface{}) error {
	err := cc.Context.Reply(what, opts...)
	if err == nil {
		cc.record(opts)
	}
	return err
}

func (cc countingContext) Edit(what interface{}, opts ...interface{}) error {
	err := cc.Context.Edit(what, opts...)
	if err == nil {
		cc.record(opts)
	}
	return err
}

func (cc countingContext) EditOrSend(what interface{}, opts ...interface{}) error {
	err := cc.Context.EditOrSend(what, opts...)
	if err == nil {
		cc.record(opts)
	}
	return err
}

// MessageMetricsMiddleware attaches the send counter to the update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(statsKey, &sendStats{})
		return next(countingContext{Context: c})
	}
}

// GetCounters returns how many messages the handler sent and whether
// any carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	if s := statsOf(c); s != nil {
		return s.messages, s.keyboard
	}
	return 0, false
}

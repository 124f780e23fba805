package router

import (
	"time"

	tg "github.com/m3rciful/anketabot/internal/telegram"

	tele "gopkg.in/telebot.v4"
)

// Dialogue is the stateful conversation surface. While a user is mid
// dialogue, free text and contacts bypass the menu layer entirely.
type Dialogue interface {
	InDialogue(userID int64) bool
	HandleText(c tele.Context) error
	HandleContact(c tele.Context) error
}

// MessageOptions supplies fallbacks for plain messages that match
// neither a dialogue phase nor a menu button.
type MessageOptions struct {
	UnknownText       tele.HandlerFunc
	UnexpectedContact tele.HandlerFunc
}

// MessageRoutes wires OnText and OnContact around the dialogue.
func MessageRoutes(dlg Dialogue, reg *tg.Registry, opts MessageOptions) []tg.Route {
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: textHandler(dlg, reg, opts)},
		{Endpoint: tele.OnContact, Handler: contactHandler(dlg, opts)},
	}
}

func textHandler(dlg Dialogue, reg *tg.Registry, opts MessageOptions) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()

		if dlg != nil && inDialogue(dlg, c) {
			return observe(c, summary{name: "dialogue", start: start}, func() error {
				return dlg.HandleText(c)
			})
		}

		if fb := reg.TextFallback(); fb != nil {
			return observe(c, summary{name: "menu_text", start: start}, func() error {
				return fb(c)
			})
		}

		if opts.UnknownText != nil {
			return observe(c, summary{name: "unknown_text", start: start}, func() error {
				return opts.UnknownText(c)
			})
		}
		return nil
	}
}

func contactHandler(dlg Dialogue, opts MessageOptions) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()

		if dlg != nil && inDialogue(dlg, c) {
			return observe(c, summary{name: "dialogue_contact", start: start}, func() error {
				return dlg.HandleContact(c)
			})
		}

		if opts.UnexpectedContact != nil {
			return observe(c, summary{name: "unexpected_contact", start: start}, func() error {
				return opts.UnexpectedContact(c)
			})
		}
		return nil
	}
}

func inDialogue(dlg Dialogue, c tele.Context) bool {
	sender := c.Sender()
	return sender != nil && dlg.InDialogue(sender.ID)
}

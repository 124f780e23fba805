// Package bot maps Telegram updates onto questionnaire engine events
// and renders the engine's reply directives back into messages and
// keyboards.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/m3rciful/anketabot/internal/config"
	"github.com/m3rciful/anketabot/internal/questionnaire"
	"github.com/m3rciful/anketabot/internal/storage"
	tghelpers "github.com/m3rciful/anketabot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Bot bundles the handlers for user and admin surfaces.
type Bot struct {
	cfg      *config.Config
	gw       *storage.Gateway
	eng      *questionnaire.Engine
	sessions *questionnaire.Store
	delay    time.Duration
}

// New wires the bot surface to its collaborators.
func New(cfg *config.Config, gw *storage.Gateway, eng *questionnaire.Engine, sessions *questionnaire.Store) *Bot {
	return &Bot{
		cfg:      cfg,
		gw:       gw,
		eng:      eng,
		sessions: sessions,
		delay:    time.Duration(cfg.Questionnaire.PromptDelayMS) * time.Millisecond,
	}
}

// render sends the reply directives in order as one outbound job, so
// pacing and ordering survive the asynchronous dispatcher.
func (b *Bot) render(c tele.Context, replies []questionnaire.Reply) error {
	if len(replies) == 0 {
		return nil
	}
	delay := b.delay
	return tghelpers.Async(c, "send.replies", func() error {
		for _, r := range replies {
			if r.Delayed && delay > 0 {
				time.Sleep(delay)
			}
			markup := b.markupFor(r)
			if markup != nil {
				if err := c.Send(r.Text, markup); err != nil {
					return err
				}
				continue
			}
			if err := c.Send(r.Text); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Bot) markupFor(r questionnaire.Reply) *tele.ReplyMarkup {
	switch r.Keyboard {
	case questionnaire.KeyboardMain:
		return mainMenu()
	case questionnaire.KeyboardPhone:
		return phoneRequest()
	case questionnaire.KeyboardOptions:
		return optionButtons(r.Options)
	case questionnaire.KeyboardRemove:
		return removeMenu()
	case questionnaire.KeyboardAdmin:
		return adminMenu()
	default:
		return nil
	}
}

// withSession runs fn under the sender's session lock and renders the
// replies it produces.
func (b *Bot) withSession(c tele.Context, fn func(ctx context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error)) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	var replies []questionnaire.Reply
	err := b.sessions.With(sender.ID, func(s *questionnaire.Session) error {
		var innerErr error
		replies, innerErr = fn(ctx, s)
		return innerErr
	})
	if err != nil {
		return err
	}
	return b.render(c, replies)
}

// InDialogue reports whether free text should be routed into the
// conversation flow instead of the menu.
func (b *Bot) InDialogue(userID int64) bool {
	in := false
	_ = b.sessions.With(userID, func(s *questionnaire.Session) error {
		in = s.InDialogue()
		return nil
	})
	return in
}

// HandleText routes mid-dialogue free text by conversation phase.
func (b *Bot) HandleText(c tele.Context) error {
	text := c.Text()
	return b.withSession(c, func(ctx context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
		switch s.Phase {
		case questionnaire.PhaseAwaitingPhone:
			return b.eng.HandlePhoneText(ctx, s, text)
		case questionnaire.PhaseAsking:
			return b.eng.HandleAnswer(ctx, s, text)
		case questionnaire.PhaseAdminAwaitingNewQuestion,
			questionnaire.PhaseAdminAwaitingEditID,
			questionnaire.PhaseAdminAwaitingEditText,
			questionnaire.PhaseAdminAwaitingToggleID:
			return b.adminDialogueText(ctx, s, text)
		default:
			return nil, nil
		}
	})
}

// HandleContact feeds a shared contact into the phone step.
func (b *Bot) HandleContact(c tele.Context) error {
	contact := c.Message().Contact
	if contact == nil {
		return nil
	}
	return b.withSession(c, func(ctx context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
		return b.eng.HandleContact(ctx, s, contact.PhoneNumber)
	})
}

func senderNames(c tele.Context) (username, fullName string) {
	sender := c.Sender()
	if sender == nil {
		return "", ""
	}
	fullName = strings.TrimSpace(strings.TrimSpace(sender.FirstName) + " " + strings.TrimSpace(sender.LastName))
	return sender.Username, fullName
}

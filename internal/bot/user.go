package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/anketabot/internal/questionnaire"
	"github.com/m3rciful/anketabot/internal/storage"
	tgcallbacks "github.com/m3rciful/anketabot/internal/telegram/callbacks"
	tghelpers "github.com/m3rciful/anketabot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) handleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	username, fullName := senderNames(c)
	if _, err := b.gw.GetOrCreateUser(ctx, sender.ID, username, fullName); err != nil {
		return err
	}
	// /start aborts whatever was in progress.
	_ = b.sessions.With(sender.ID, func(s *questionnaire.Session) error {
		s.ResetRun()
		return nil
	})
	return tghelpers.SendMarkup(c, textWelcome, mainMenu())
}

func (b *Bot) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, textHelp)
}

func (b *Bot) handleAbout(c tele.Context) error {
	return tghelpers.SendText(c, textAbout)
}

func (b *Bot) handleFillForm(c tele.Context) error {
	username, fullName := senderNames(c)
	return b.withSession(c, func(ctx context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
		return b.eng.StartRun(ctx, s, username, fullName)
	})
}

func (b *Bot) handlePhone(c tele.Context) error {
	username, fullName := senderNames(c)
	return b.withSession(c, func(ctx context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
		return b.eng.StartPhoneCapture(ctx, s, username, fullName)
	})
}

func (b *Bot) handleMyPhone(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	user, err := b.gw.UserByTelegramID(ctx, sender.ID)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return err
	}
	current := "не вказано"
	if user != nil {
		current = user.DisplayPhone()
	}

	// The current number and the update prompt must leave as one job;
	// separate dispatcher jobs may be delivered out of order.
	username, fullName := senderNames(c)
	return b.withSession(c, func(ctx context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
		prompt, err := b.eng.StartPhoneCapture(ctx, s, username, fullName)
		if err != nil {
			return nil, err
		}
		return myPhoneReplies(current, prompt), nil
	})
}

// myPhoneReplies prepends the current-number line to the phone prompt
// sequence so both render in a single ordered send.
func myPhoneReplies(current string, prompt []questionnaire.Reply) []questionnaire.Reply {
	head := questionnaire.Reply{Text: fmt.Sprintf(textMyPhone, current)}
	return append([]questionnaire.Reply{head}, prompt...)
}

func (b *Bot) handleCancel(c tele.Context) error {
	return b.withSession(c, func(ctx context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
		return b.eng.Cancel(ctx, s)
	})
}

func (b *Bot) handleMyForm(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	user, err := b.gw.UserByTelegramID(ctx, sender.ID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return tghelpers.SendMarkup(c, textNoSavedForm, mainMenu())
		}
		return err
	}
	form, err := b.gw.LatestQuestionnaireForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if form == nil {
		return tghelpers.SendMarkup(c, textNoSavedForm, mainMenu())
	}

	answers := form.Answers()
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Ваша анкета від %s\n", form.CreatedAt.Format("02.01.2006"))
	fmt.Fprintf(&sb, "Відповіли: %d, пропущено: %d\n", answers.Answered(), answers.SkippedCount())
	for _, e := range answers.Ordered() {
		fmt.Fprintf(&sb, "\n%d. %s\n%s\n", e.Number, e.QuestionText, e.Answer)
	}
	return tghelpers.SendMarkup(c, sb.String(), mainMenu())
}

// handleOptionCallback resolves an option button press into an answer
// for the current question.
func (b *Bot) handleOptionCallback(c tele.Context) error {
	idx, err := tgcallbacks.PayloadInt(c)
	if err != nil {
		return nil
	}
	return b.withSession(c, func(ctx context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
		if s.Phase != questionnaire.PhaseAsking || s.Cursor >= len(s.Questions) {
			return nil, nil
		}
		_, opts := questionnaire.ParseOptions(s.Questions[s.Cursor].Text)
		if idx < 0 || idx >= len(opts) {
			return nil, nil
		}
		return b.eng.HandleAnswer(ctx, s, opts[idx])
	})
}

// handleMenuText resolves main-menu and admin-menu button presses for
// users who are not mid-dialogue.
func (b *Bot) handleMenuText(c tele.Context) error {
	switch c.Text() {
	case btnFillForm:
		return b.handleFillForm(c)
	case btnMyForm:
		return b.handleMyForm(c)
	case btnMyPhone:
		return b.handleMyPhone(c)
	case btnAbout:
		return b.handleAbout(c)
	}

	sender := c.Sender()
	if sender != nil && b.cfg.Telegram.IsAdmin(sender.ID) {
		adminMode := false
		_ = b.sessions.With(sender.ID, func(s *questionnaire.Session) error {
			adminMode = s.AdminMode
			return nil
		})
		if adminMode {
			return b.handleAdminMenuText(c)
		}
	}

	return tghelpers.SendText(c, textUnknownInput)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/anketabot/internal/questionnaire"
	"github.com/m3rciful/anketabot/internal/storage"
	tghelpers "github.com/m3rciful/anketabot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func adminSay(text string) []questionnaire.Reply {
	return []questionnaire.Reply{{Text: text, Keyboard: questionnaire.KeyboardAdmin}}
}

// handleAdmin enters admin mode. Access is enforced by the admin-only
// middleware on the command route.
func (b *Bot) handleAdmin(c tele.Context) error {
	return b.withSession(c, func(_ context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
		s.ResetRun()
		s.AdminMode = true
		return adminSay(textAdminWelcome), nil
	})
}

func (b *Bot) handleAdminReject(c tele.Context) error {
	return tghelpers.SendText(c, textAdminDenied)
}

// handleAdminMenuText dispatches admin menu button presses.
func (b *Bot) handleAdminMenuText(c tele.Context) error {
	switch c.Text() {
	case btnAdminQuestions:
		return b.adminListQuestions(c)
	case btnAdminAddQuestion:
		return b.withSession(c, func(_ context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
			s.Phase = questionnaire.PhaseAdminAwaitingNewQuestion
			return adminSay(textAdminAskNewQuestion), nil
		})
	case btnAdminEdit:
		return b.withSession(c, func(_ context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
			s.Phase = questionnaire.PhaseAdminAwaitingEditID
			return adminSay(textAdminAskEditID), nil
		})
	case btnAdminToggle:
		return b.withSession(c, func(_ context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
			s.Phase = questionnaire.PhaseAdminAwaitingToggleID
			return adminSay(textAdminAskToggleID), nil
		})
	case btnAdminForms:
		return b.adminRecentForms(c)
	case btnAdminUsers:
		return b.adminRecentUsers(c)
	case btnAdminStats:
		return b.adminStats(c)
	case btnAdminExit:
		return b.withSession(c, func(_ context.Context, s *questionnaire.Session) ([]questionnaire.Reply, error) {
			s.ResetRun()
			s.AdminMode = false
			return []questionnaire.Reply{{Text: textAdminExited, Keyboard: questionnaire.KeyboardMain}}, nil
		})
	default:
		return tghelpers.SendText(c, textUnknownInput)
	}
}

// adminDialogueText handles the step-by-step admin flows (add question,
// edit question) fed through the dialogue router.
func (b *Bot) adminDialogueText(ctx context.Context, s *questionnaire.Session, text string) ([]questionnaire.Reply, error) {
	switch s.Phase {
	case questionnaire.PhaseAdminAwaitingNewQuestion:
		text = strings.TrimSpace(text)
		if text == "" {
			return adminSay(textAdminAskNewQuestion), nil
		}
		q, err := b.gw.AddQuestion(ctx, text, 0)
		if err != nil {
			return nil, err
		}
		s.ResetRun()
		return adminSay(fmt.Sprintf(textAdminQuestionAdded, q.ID, q.Order)), nil

	case questionnaire.PhaseAdminAwaitingEditID:
		id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return adminSay(textAdminBadQuestionID), nil
		}
		q, err := b.gw.QuestionByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrQuestionNotFound) {
				return adminSay(textAdminQuestionGone), nil
			}
			return nil, err
		}
		s.EditQuestionID = q.ID
		s.Phase = questionnaire.PhaseAdminAwaitingEditText
		return adminSay(fmt.Sprintf(textAdminAskEditText, q.ID, q.Text)), nil

	case questionnaire.PhaseAdminAwaitingEditText:
		id := s.EditQuestionID
		text = strings.TrimSpace(text)
		if text == "" {
			return adminSay(fmt.Sprintf(textAdminAskEditText, id, "")), nil
		}
		if err := b.gw.UpdateQuestionText(ctx, id, text); err != nil {
			if errors.Is(err, storage.ErrQuestionNotFound) {
				s.ResetRun()
				return adminSay(textAdminQuestionGone), nil
			}
			return nil, err
		}
		s.ResetRun()
		return adminSay(fmt.Sprintf(textAdminQuestionEdited, id)), nil

	case questionnaire.PhaseAdminAwaitingToggleID:
		id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return adminSay(textAdminBadQuestionID), nil
		}
		q, err := b.gw.QuestionByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrQuestionNotFound) {
				return adminSay(textAdminQuestionGone), nil
			}
			return nil, err
		}
		if err := b.gw.SetQuestionActive(ctx, q.ID, !q.IsActive); err != nil {
			return nil, err
		}
		s.ResetRun()
		if q.IsActive {
			return adminSay(fmt.Sprintf(textAdminQuestionOff, q.ID)), nil
		}
		return adminSay(fmt.Sprintf(textAdminQuestionOn, q.ID)), nil
	}
	return nil, nil
}

func (b *Bot) adminListQuestions(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	questions, err := b.gw.AllQuestions(ctx)
	if err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("📋 Питання анкети:\n")
	for _, q := range questions {
		flag := "✅"
		if !q.IsActive {
			flag = "🚫"
		}
		prompt, opts := questionnaire.ParseOptions(q.Text)
		fmt.Fprintf(&sb, "\n%s #%d (порядок %d): %s", flag, q.ID, q.Order, prompt)
		if len(opts) > 0 {
			fmt.Fprintf(&sb, "\n   варіанти: %s", strings.Join(opts, " / "))
		}
	}
	if len(questions) == 0 {
		sb.WriteString("\nСписок порожній.")
	}
	return tghelpers.SendMarkup(c, sb.String(), adminMenu())
}

func (b *Bot) adminRecentForms(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	subs, err := b.gw.RecentSubmissions(ctx, 3)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return tghelpers.SendMarkup(c, textAdminNoForms, adminMenu())
	}
	var sb strings.Builder
	sb.WriteString("📥 Останні анкети:\n")
	for _, sub := range subs {
		name := sub.FullName.String
		if name == "" {
			name = sub.Username.String
		}
		if name == "" {
			name = fmt.Sprintf("ID %d", sub.TelegramID)
		}
		fmt.Fprintf(&sb, "\n— %s, %s", name, sub.CreatedAt.Format("02.01.2006 15:04"))
		if sub.FormattedPhone.Valid && sub.FormattedPhone.String != "" {
			fmt.Fprintf(&sb, ", %s", sub.FormattedPhone.String)
		}
		answers := sub.Answers()
		fmt.Fprintf(&sb, "\n   відповідей: %d", answers.Answered())
		for i, e := range answers.Ordered() {
			if i == 2 {
				sb.WriteString("\n   …")
				break
			}
			fmt.Fprintf(&sb, "\n   %d. %s — %s", e.Number, e.QuestionText, e.Answer)
		}
		sb.WriteString("\n")
	}
	return tghelpers.SendMarkup(c, sb.String(), adminMenu())
}

func (b *Bot) adminRecentUsers(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	users, err := b.gw.RecentUsers(ctx, 10)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return tghelpers.SendMarkup(c, textAdminNoUsers, adminMenu())
	}
	var sb strings.Builder
	sb.WriteString("👥 Останні користувачі:\n")
	for _, u := range users {
		name := u.DisplayName()
		if name == "" {
			name = fmt.Sprintf("ID %d", u.TelegramID)
		}
		fmt.Fprintf(&sb, "\n— %s, %s, з %s", name, u.DisplayPhone(), u.CreatedAt.Format("02.01.2006"))
	}
	return tghelpers.SendMarkup(c, sb.String(), adminMenu())
}

func (b *Bot) adminStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	stats, err := b.gw.Stats(ctx)
	if err != nil {
		return err
	}
	text := fmt.Sprintf(
		"📊 Статистика:\n\n"+
			"Користувачів: %d\n"+
			"З номером телефону: %d\n"+
			"Анкет усього: %d\n"+
			"Анкет сьогодні: %d\n"+
			"Питань: %d (активних: %d)",
		stats.TotalUsers, stats.UsersWithPhones,
		stats.TotalQuestionnaires, stats.TodayQuestionnaires,
		stats.TotalQuestions, stats.ActiveQuestions,
	)
	return tghelpers.SendMarkup(c, text, adminMenu())
}

package questionnaire

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/anketabot/internal/logger"
	"github.com/m3rciful/anketabot/internal/models"
	"github.com/m3rciful/anketabot/internal/phone"
)

// Gateway is the persistence surface the engine depends on.
type Gateway interface {
	GetOrCreateUser(ctx context.Context, telegramID int64, username, fullName string) (*models.User, error)
	UpdateUserPhone(ctx context.Context, telegramID int64, phone, formatted string) error
	UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	ListActiveQuestions(ctx context.Context) ([]models.Question, error)
	RepairIfNoneActive(ctx context.Context) (int, error)
	SaveQuestionnaire(ctx context.Context, userID int64, answers models.Answers) (*models.Questionnaire, error)
}

// Notifier delivers a completed run to the operator. Implementations
// must not block: the user has already received the success reply.
type Notifier interface {
	NotifyCompleted(user *models.User, answers models.Answers)
}

// Skip keyword sets. Answer skipping applies to free-text questions
// only; on an option question a skip keyword is rejected like any other
// non-matching input.
var (
	phoneSkipKeywords  = []string{"пропустити", "пропустить", "skip", "🚫 пропустити"}
	answerSkipKeywords = []string{"пропустити", "пропустить", "skip", "pass"}
)

func matchesKeyword(input string, keywords []string) bool {
	norm := strings.ToLower(strings.TrimSpace(input))
	for _, k := range keywords {
		if norm == k {
			return true
		}
	}
	return false
}

// Engine drives the questionnaire conversation. All methods expect the
// session to be held exclusively by the caller (see Store.With).
type Engine struct {
	gw Gateway
	nf Notifier
}

// NewEngine wires the engine to its collaborators.
func NewEngine(gw Gateway, nf Notifier) *Engine {
	return &Engine{gw: gw, nf: nf}
}

// StartPhoneCapture moves the session into the phone step. It is
// reachable from any phase and preempts whatever was in progress.
func (e *Engine) StartPhoneCapture(ctx context.Context, s *Session, username, fullName string) ([]Reply, error) {
	if _, err := e.gw.GetOrCreateUser(ctx, s.TelegramID, username, fullName); err != nil {
		return nil, fmt.Errorf("phone capture for %d: %w", s.TelegramID, err)
	}
	s.ResetRun()
	s.Phase = PhaseAwaitingPhone
	return []Reply{say(textPhonePrompt, KeyboardPhone)}, nil
}

// HandleContact accepts a platform shared-contact payload. The number
// is taken verbatim as the canonical form.
func (e *Engine) HandleContact(ctx context.Context, s *Session, number string) ([]Reply, error) {
	if s.Phase != PhaseAwaitingPhone {
		return nil, nil
	}
	return e.acceptPhone(ctx, s, number, phone.Format(number))
}

// HandlePhoneText processes free-text input in the phone step.
func (e *Engine) HandlePhoneText(ctx context.Context, s *Session, text string) ([]Reply, error) {
	if matchesKeyword(text, phoneSkipKeywords) {
		// The sentinel bypasses validation entirely.
		if err := e.gw.UpdateUserPhone(ctx, s.TelegramID, models.PhoneNotProvided, models.PhoneNotProvided); err != nil {
			logger.Error(ctx, "service.users", "user.phone.skip_failed",
				slog.Int64("telegram_id", s.TelegramID), slog.Any("err", err))
		}
		s.ResetRun()
		return []Reply{say(textPhoneSkipped, KeyboardMain)}, nil
	}
	canonical, ok := phone.Validate(text)
	if !ok {
		// Re-prompt, phase unchanged.
		return []Reply{say(textPhoneInvalid, KeyboardPhone)}, nil
	}
	return e.acceptPhone(ctx, s, canonical, phone.Format(canonical))
}

func (e *Engine) acceptPhone(ctx context.Context, s *Session, canonical, formatted string) ([]Reply, error) {
	if err := e.gw.UpdateUserPhone(ctx, s.TelegramID, canonical, formatted); err != nil {
		return nil, fmt.Errorf("store phone for %d: %w", s.TelegramID, err)
	}
	s.Phone = canonical
	s.FormattedPhone = formatted
	s.ResetRun()
	logger.Info(ctx, "service.users", "user.phone.captured",
		slog.Int64("telegram_id", s.TelegramID))
	return []Reply{say(fmt.Sprintf(textPhoneSaved, formatted), KeyboardMain)}, nil
}

// StartRun begins a questionnaire run. A user without a stored phone is
// redirected to the phone step instead.
func (e *Engine) StartRun(ctx context.Context, s *Session, username, fullName string) ([]Reply, error) {
	user, err := e.gw.GetOrCreateUser(ctx, s.TelegramID, username, fullName)
	if err != nil {
		return nil, fmt.Errorf("start run for %d: %w", s.TelegramID, err)
	}
	if !user.HasPhone() {
		s.ResetRun()
		s.Phase = PhaseAwaitingPhone
		return []Reply{
			say(textNeedPhoneFirst, KeyboardKeep),
			say(textPhonePrompt, KeyboardPhone),
		}, nil
	}

	questions, err := e.gw.ListActiveQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("start run for %d: %w", s.TelegramID, err)
	}
	if len(questions) == 0 {
		// Self-healing path for a fully deactivated set.
		if n, err := e.gw.RepairIfNoneActive(ctx); err == nil && n > 0 {
			questions, err = e.gw.ListActiveQuestions(ctx)
			if err != nil {
				return nil, fmt.Errorf("start run for %d: %w", s.TelegramID, err)
			}
		}
	}
	if len(questions) == 0 {
		s.ResetRun()
		return []Reply{say(textNoQuestions, KeyboardMain)}, nil
	}

	s.ResetRun()
	s.Phase = PhaseAsking
	s.Questions = questions
	s.Answers = models.Answers{}
	s.UserRowID = user.ID
	if user.PhoneNumber.Valid {
		s.Phone = user.PhoneNumber.String
	}
	if user.FormattedPhone.Valid {
		s.FormattedPhone = user.FormattedPhone.String
	}
	logger.Info(ctx, "service.forms", "run.started",
		slog.Int64("telegram_id", s.TelegramID),
		slog.Int("questions", len(questions)))

	replies := []Reply{say(fmt.Sprintf(textRunIntro, len(questions)), KeyboardRemove)}
	next, err := e.presentCurrent(ctx, s, false)
	if err != nil {
		return nil, err
	}
	return append(replies, next...), nil
}

// presentCurrent renders the question at the cursor, or finishes the
// run when the cursor has passed the snapshot.
func (e *Engine) presentCurrent(ctx context.Context, s *Session, paced bool) ([]Reply, error) {
	if s.Cursor >= len(s.Questions) {
		return e.finish(ctx, s)
	}
	q := s.Questions[s.Cursor]
	prompt, opts := ParseOptions(q.Text)
	r := Reply{
		Text:    fmt.Sprintf(textQuestionHeader, s.Cursor+1, len(s.Questions), prompt),
		Delayed: paced,
	}
	if len(opts) > 0 {
		r.Keyboard = KeyboardOptions
		r.Options = opts
	} else {
		r.Keyboard = KeyboardKeep
	}
	return []Reply{r}, nil
}

// HandleAnswer processes free-text or option-button input while asking.
// Unrecognized input re-presents the current question without advancing.
func (e *Engine) HandleAnswer(ctx context.Context, s *Session, text string) ([]Reply, error) {
	if s.Phase != PhaseAsking || s.Cursor >= len(s.Questions) {
		return nil, nil
	}
	q := s.Questions[s.Cursor]
	prompt, opts := ParseOptions(q.Text)

	answer := strings.TrimSpace(text)
	ack := textAnswerAccepted
	if len(opts) > 0 {
		if !containsExact(opts, answer) {
			reprompt, err := e.presentCurrent(ctx, s, false)
			if err != nil {
				return nil, err
			}
			return append([]Reply{say(textOptionInvalid, KeyboardKeep)}, reprompt...), nil
		}
	} else {
		if answer == "" {
			return []Reply{say(textAnswerEmpty, KeyboardKeep)}, nil
		}
		if matchesKeyword(answer, answerSkipKeywords) {
			answer = models.SkippedAnswer
			ack = textAnswerSkipped
		}
	}

	s.Answers[q.ID] = models.AnswerEntry{
		QuestionID:   q.ID,
		QuestionText: prompt,
		Answer:       answer,
		Number:       s.Cursor + 1,
	}
	s.Cursor++

	replies := []Reply{say(ack, KeyboardKeep)}
	next, err := e.presentCurrent(ctx, s, true)
	if err != nil {
		return nil, err
	}
	return append(replies, next...), nil
}

// finish persists the run. The session is cleared no matter how the
// save goes; a failed write must not leave the user stuck mid-run.
func (e *Engine) finish(ctx context.Context, s *Session) ([]Reply, error) {
	answers := s.Answers
	userRowID := s.UserRowID
	telegramID := s.TelegramID
	s.ResetRun()

	if len(answers) == 0 {
		return []Reply{say(textFinishEmpty, KeyboardMain)}, nil
	}
	saved, err := e.gw.SaveQuestionnaire(ctx, userRowID, answers)
	if err != nil {
		logger.Error(ctx, "service.forms", "form.save.failed",
			slog.Int64("telegram_id", telegramID), slog.Any("err", err))
		return []Reply{say(textFinishSaveFailed, KeyboardMain)}, nil
	}
	logger.Info(ctx, "service.forms", "form.completed",
		slog.Int64("telegram_id", telegramID),
		slog.Int64("questionnaire_id", saved.ID),
		slog.Int("answered", answers.Answered()),
		slog.Int("skipped", answers.SkippedCount()))

	if e.nf != nil {
		user, err := e.gw.UserByTelegramID(ctx, telegramID)
		if err != nil {
			logger.Warn(ctx, "service.forms", "form.notify.user_lookup_failed",
				slog.Int64("telegram_id", telegramID), slog.Any("err", err))
		} else {
			e.nf.NotifyCompleted(user, answers)
		}
	}
	return []Reply{say(buildSummary(answers), KeyboardMain)}, nil
}

// buildSummary renders the completed run in submission order.
func buildSummary(answers models.Answers) string {
	var b strings.Builder
	fmt.Fprintf(&b, textSummaryHeader, answers.Answered(), answers.SkippedCount())
	for _, entry := range answers.Ordered() {
		fmt.Fprintf(&b, "\n%d. %s\n%s\n", entry.Number, entry.QuestionText, entry.Answer)
	}
	return b.String()
}

// Cancel aborts whatever is in progress and reports run progress.
func (e *Engine) Cancel(ctx context.Context, s *Session) ([]Reply, error) {
	switch s.Phase {
	case PhaseAsking:
		done, total := s.Cursor, len(s.Questions)
		s.ResetRun()
		logger.Info(ctx, "service.forms", "run.cancelled",
			slog.Int64("telegram_id", s.TelegramID),
			slog.Int("answered", done), slog.Int("total", total))
		return []Reply{say(fmt.Sprintf(textCancelRun, done, total), KeyboardMain)}, nil
	case PhaseIdle:
		return []Reply{say(textCancelIdle, KeyboardMain)}, nil
	default:
		s.ResetRun()
		return []Reply{say(textCancelPhone, KeyboardMain)}, nil
	}
}

func containsExact(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

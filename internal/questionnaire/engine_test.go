package questionnaire

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/anketabot/internal/models"
)

type fakeGateway struct {
	user        *models.User
	questions   []models.Question
	inactive    []models.Question
	saved       []models.Answers
	saveErr     error
	repaired    bool
	phoneWrites []string
}

func (f *fakeGateway) GetOrCreateUser(_ context.Context, telegramID int64, _, _ string) (*models.User, error) {
	if f.user == nil {
		f.user = &models.User{ID: 1, TelegramID: telegramID}
	}
	return f.user, nil
}

func (f *fakeGateway) UpdateUserPhone(_ context.Context, _ int64, phone, formatted string) error {
	f.phoneWrites = append(f.phoneWrites, phone)
	if f.user != nil {
		f.user.PhoneNumber = sql.NullString{String: phone, Valid: true}
		f.user.FormattedPhone = sql.NullString{String: formatted, Valid: true}
	}
	return nil
}

func (f *fakeGateway) UserByTelegramID(_ context.Context, _ int64) (*models.User, error) {
	if f.user == nil {
		return nil, errors.New("no user")
	}
	return f.user, nil
}

func (f *fakeGateway) ListActiveQuestions(context.Context) ([]models.Question, error) {
	return f.questions, nil
}

func (f *fakeGateway) RepairIfNoneActive(context.Context) (int, error) {
	if len(f.questions) == 0 && len(f.inactive) > 0 {
		f.questions = f.inactive
		f.inactive = nil
		f.repaired = true
		return len(f.questions), nil
	}
	return 0, nil
}

func (f *fakeGateway) SaveQuestionnaire(_ context.Context, userID int64, answers models.Answers) (*models.Questionnaire, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, answers)
	return &models.Questionnaire{ID: int64(len(f.saved)), UserID: userID}, nil
}

type fakeNotifier struct {
	calls int
	last  models.Answers
}

func (f *fakeNotifier) NotifyCompleted(_ *models.User, answers models.Answers) {
	f.calls++
	f.last = answers
}

func userWithPhone(telegramID int64) *models.User {
	return &models.User{
		ID:          1,
		TelegramID:  telegramID,
		PhoneNumber: sql.NullString{String: "+380671234567", Valid: true},
	}
}

func questionSet() []models.Question {
	return []models.Question{
		{ID: 10, Text: "Як звати дитину?", Order: 1, IsActive: true},
		{ID: 11, Text: "Чи є алергія?\n• Так\n• Ні", Order: 2, IsActive: true},
		{ID: 12, Text: "Додаткові коментарі?", Order: 3, IsActive: true},
	}
}

func newTestEngine(gw *fakeGateway, nf Notifier) (*Engine, *Session) {
	return NewEngine(gw, nf), &Session{TelegramID: 42}
}

// mustReplies returns a helper that unwraps an engine call, failing the
// test on error. The closure form lets a multi-value call be passed
// directly: must(eng.StartRun(...)).
func mustReplies(t *testing.T) func([]Reply, error) []Reply {
	t.Helper()
	return func(replies []Reply, err error) []Reply {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return replies
	}
}

func lastReply(t *testing.T, replies []Reply) Reply {
	t.Helper()
	if len(replies) == 0 {
		t.Fatal("no replies")
	}
	return replies[len(replies)-1]
}

func TestFullRun(t *testing.T) {
	gw := &fakeGateway{user: userWithPhone(42), questions: questionSet()}
	nf := &fakeNotifier{}
	eng, sess := newTestEngine(gw, nf)
	must := mustReplies(t)
	ctx := context.Background()

	replies := must(eng.StartRun(ctx, sess, "u", "U"))
	if sess.Phase != PhaseAsking {
		t.Fatalf("phase = %v, want asking", sess.Phase)
	}
	last := lastReply(t, replies)
	if !strings.Contains(last.Text, "Питання 1 з 3") {
		t.Errorf("first prompt = %q", last.Text)
	}

	// Free text.
	must(eng.HandleAnswer(ctx, sess, "Марія"))
	// Option question: pick a valid option.
	replies = must(eng.HandleAnswer(ctx, sess, "Ні"))
	if !strings.Contains(lastReply(t, replies).Text, "Питання 3 з 3") {
		t.Errorf("expected third prompt, got %q", lastReply(t, replies).Text)
	}
	// Skip the last free-text question.
	replies = must(eng.HandleAnswer(ctx, sess, "пропустити"))

	if sess.Phase != PhaseIdle {
		t.Errorf("phase after finish = %v, want idle", sess.Phase)
	}
	if len(gw.saved) != 1 {
		t.Fatalf("saved %d questionnaires, want 1", len(gw.saved))
	}
	ans := gw.saved[0]
	if len(ans) != 3 {
		t.Errorf("answer count = %d, want 3", len(ans))
	}
	if ans.SkippedCount() != 1 || ans.Answered() != 2 {
		t.Errorf("answered/skipped = %d/%d, want 2/1", ans.Answered(), ans.SkippedCount())
	}
	if !ans[12].Skipped() {
		t.Errorf("question 12 should be the skipped one: %+v", ans[12])
	}
	if nf.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", nf.calls)
	}
	summary := lastReply(t, replies).Text
	if !strings.Contains(summary, "відповіли: 2") || !strings.Contains(summary, "пропущено: 1") {
		t.Errorf("summary = %q", summary)
	}
}

func TestStartRunRepairsInactiveSet(t *testing.T) {
	gw := &fakeGateway{user: userWithPhone(42), inactive: questionSet()}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)

	must(eng.StartRun(context.Background(), sess, "", ""))
	if !gw.repaired {
		t.Error("repair was not invoked")
	}
	if sess.Phase != PhaseAsking || len(sess.Questions) != 3 {
		t.Errorf("phase=%v questions=%d, want asking/3", sess.Phase, len(sess.Questions))
	}
}

func TestStartRunNoQuestions(t *testing.T) {
	gw := &fakeGateway{user: userWithPhone(42)}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)

	replies := must(eng.StartRun(context.Background(), sess, "", ""))
	if sess.Phase != PhaseIdle {
		t.Errorf("phase = %v, want idle", sess.Phase)
	}
	if !strings.Contains(lastReply(t, replies).Text, "немає жодного питання") {
		t.Errorf("reply = %q", lastReply(t, replies).Text)
	}
}

func TestStartRunWithoutPhoneRedirects(t *testing.T) {
	gw := &fakeGateway{user: &models.User{ID: 1, TelegramID: 42}, questions: questionSet()}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)

	replies := must(eng.StartRun(context.Background(), sess, "", ""))
	if sess.Phase != PhaseAwaitingPhone {
		t.Errorf("phase = %v, want awaiting phone", sess.Phase)
	}
	if lastReply(t, replies).Keyboard != KeyboardPhone {
		t.Error("expected the phone request keyboard")
	}
}

func TestStartRunSentinelPhoneRedirects(t *testing.T) {
	u := &models.User{ID: 1, TelegramID: 42,
		PhoneNumber: sql.NullString{String: models.PhoneNotProvided, Valid: true}}
	gw := &fakeGateway{user: u, questions: questionSet()}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)

	must(eng.StartRun(context.Background(), sess, "", ""))
	if sess.Phase != PhaseAwaitingPhone {
		t.Errorf("phase = %v, want awaiting phone", sess.Phase)
	}
}

func TestWrongOptionDoesNotAdvance(t *testing.T) {
	gw := &fakeGateway{user: userWithPhone(42), questions: questionSet()}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)
	ctx := context.Background()

	must(eng.StartRun(ctx, sess, "", ""))
	must(eng.HandleAnswer(ctx, sess, "Марія"))
	if sess.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", sess.Cursor)
	}

	replies := must(eng.HandleAnswer(ctx, sess, "можливо"))
	if sess.Cursor != 1 {
		t.Errorf("cursor advanced to %d on invalid option", sess.Cursor)
	}
	if !strings.Contains(replies[0].Text, "оберіть один із запропонованих") {
		t.Errorf("reply = %q", replies[0].Text)
	}
	// The same question is re-presented with its options.
	re := lastReply(t, replies)
	if !strings.Contains(re.Text, "Питання 2 з 3") || re.Keyboard != KeyboardOptions {
		t.Errorf("re-prompt = %+v", re)
	}
}

func TestSkipKeywordRejectedOnOptionQuestion(t *testing.T) {
	gw := &fakeGateway{user: userWithPhone(42), questions: questionSet()}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)
	ctx := context.Background()

	must(eng.StartRun(ctx, sess, "", ""))
	must(eng.HandleAnswer(ctx, sess, "Марія"))

	// "пропустити" skips free-text questions but is not an option here,
	// so it is rejected like any other non-matching input.
	must(eng.HandleAnswer(ctx, sess, "пропустити"))
	if sess.Cursor != 1 {
		t.Errorf("cursor = %d, skip keyword must not advance an option question", sess.Cursor)
	}
	if len(sess.Answers) != 1 {
		t.Errorf("answers = %d, want 1", len(sess.Answers))
	}
}

func TestEmptyAnswerRejected(t *testing.T) {
	gw := &fakeGateway{user: userWithPhone(42), questions: questionSet()}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)
	ctx := context.Background()

	must(eng.StartRun(ctx, sess, "", ""))
	replies := must(eng.HandleAnswer(ctx, sess, "   "))
	if sess.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", sess.Cursor)
	}
	if !strings.Contains(replies[0].Text, "порожньою") {
		t.Errorf("reply = %q", replies[0].Text)
	}
}

func TestCancelMidRun(t *testing.T) {
	gw := &fakeGateway{user: userWithPhone(42), questions: questionSet()}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)
	ctx := context.Background()

	must(eng.StartRun(ctx, sess, "", ""))
	must(eng.HandleAnswer(ctx, sess, "Марія"))

	replies := must(eng.Cancel(ctx, sess))
	if sess.Phase != PhaseIdle {
		t.Errorf("phase = %v, want idle", sess.Phase)
	}
	if !strings.Contains(replies[0].Text, "пройдено 1 з 3") {
		t.Errorf("reply = %q", replies[0].Text)
	}
	if len(gw.saved) != 0 {
		t.Errorf("partial run must not be persisted, saved = %d", len(gw.saved))
	}
}

func TestFinishPersistenceFailureClearsSession(t *testing.T) {
	gw := &fakeGateway{
		user:      userWithPhone(42),
		questions: questionSet()[:1],
		saveErr:   errors.New("db down"),
	}
	nf := &fakeNotifier{}
	eng, sess := newTestEngine(gw, nf)
	must := mustReplies(t)
	ctx := context.Background()

	must(eng.StartRun(ctx, sess, "", ""))
	replies := must(eng.HandleAnswer(ctx, sess, "Марія"))

	if sess.Phase != PhaseIdle {
		t.Errorf("phase = %v, session must clear even on save failure", sess.Phase)
	}
	if !strings.Contains(lastReply(t, replies).Text, "помилка при збереженні") {
		t.Errorf("reply = %q", lastReply(t, replies).Text)
	}
	if nf.calls != 0 {
		t.Errorf("notifier must not fire on failed save, calls = %d", nf.calls)
	}
}

func TestPhoneCaptureFlow(t *testing.T) {
	gw := &fakeGateway{}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)
	ctx := context.Background()

	replies := must(eng.StartPhoneCapture(ctx, sess, "u", "U"))
	if sess.Phase != PhaseAwaitingPhone {
		t.Fatalf("phase = %v", sess.Phase)
	}
	if replies[0].Keyboard != KeyboardPhone {
		t.Error("expected the phone request keyboard")
	}

	// Invalid input re-prompts in place.
	replies = must(eng.HandlePhoneText(ctx, sess, "12345"))
	if sess.Phase != PhaseAwaitingPhone {
		t.Errorf("phase = %v after invalid input", sess.Phase)
	}
	if !strings.Contains(replies[0].Text, "Не вдалося розпізнати") {
		t.Errorf("reply = %q", replies[0].Text)
	}
	if len(gw.phoneWrites) != 0 {
		t.Errorf("invalid input must not be persisted: %v", gw.phoneWrites)
	}

	// Valid input is stored in both forms and clears the phase.
	replies = must(eng.HandlePhoneText(ctx, sess, "0671234567"))
	if sess.Phase != PhaseIdle {
		t.Errorf("phase = %v, want idle", sess.Phase)
	}
	if got := gw.phoneWrites; len(got) != 1 || got[0] != "+380671234567" {
		t.Errorf("phoneWrites = %v", got)
	}
	if !strings.Contains(replies[0].Text, "+38 (067) 123-45-67") {
		t.Errorf("reply = %q", replies[0].Text)
	}
}

func TestPhoneSkipStoresSentinel(t *testing.T) {
	gw := &fakeGateway{user: &models.User{ID: 1, TelegramID: 42}}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)
	ctx := context.Background()

	must(eng.StartPhoneCapture(ctx, sess, "", ""))
	must(eng.HandlePhoneText(ctx, sess, "Пропустити"))
	if sess.Phase != PhaseIdle {
		t.Errorf("phase = %v, want idle", sess.Phase)
	}
	if got := gw.phoneWrites; len(got) != 1 || got[0] != models.PhoneNotProvided {
		t.Errorf("phoneWrites = %v, want sentinel", got)
	}
}

func TestContactTakenVerbatim(t *testing.T) {
	gw := &fakeGateway{user: &models.User{ID: 1, TelegramID: 42}}
	eng, sess := newTestEngine(gw, nil)
	must := mustReplies(t)
	ctx := context.Background()

	must(eng.StartPhoneCapture(ctx, sess, "", ""))
	must(eng.HandleContact(ctx, sess, "+380671234567"))
	if got := gw.phoneWrites; len(got) != 1 || got[0] != "+380671234567" {
		t.Errorf("phoneWrites = %v", got)
	}
	if sess.Phase != PhaseIdle {
		t.Errorf("phase = %v, want idle", sess.Phase)
	}
}

func TestCancelIdle(t *testing.T) {
	eng, sess := newTestEngine(&fakeGateway{}, nil)
	must := mustReplies(t)
	replies := must(eng.Cancel(context.Background(), sess))
	if !strings.Contains(replies[0].Text, "Немає активної дії") {
		t.Errorf("reply = %q", replies[0].Text)
	}
}

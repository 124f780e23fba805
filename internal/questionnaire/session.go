package questionnaire

import (
	"sync"

	"github.com/m3rciful/anketabot/internal/models"
)

// Phase is the conversation phase of one user's session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingPhone
	PhaseAsking

	// Admin dialogue phases. They reuse the same per-user session so
	// an admin cannot hold a questionnaire run and an edit flow at once.
	PhaseAdminAwaitingNewQuestion
	PhaseAdminAwaitingEditID
	PhaseAdminAwaitingEditText
	PhaseAdminAwaitingToggleID
)

// String names phases for logging.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingPhone:
		return "awaiting_phone"
	case PhaseAsking:
		return "asking"
	case PhaseAdminAwaitingNewQuestion:
		return "admin_new_question"
	case PhaseAdminAwaitingEditID:
		return "admin_edit_id"
	case PhaseAdminAwaitingEditText:
		return "admin_edit_text"
	case PhaseAdminAwaitingToggleID:
		return "admin_toggle_id"
	default:
		return "unknown"
	}
}

// Session is the transient per-user conversation state. It is not
// persisted; a process restart drops all in-flight runs.
type Session struct {
	TelegramID int64
	Phase      Phase

	// AdminMode marks an allow-listed user who entered the admin menu.
	AdminMode bool

	// Run snapshot. Questions are frozen at run start so later admin
	// edits do not shift an in-flight questionnaire.
	Questions []models.Question
	Cursor    int
	Answers   models.Answers

	// Phone forms carried from the capture step.
	Phone          string
	FormattedPhone string

	// UserRowID is the users table id, resolved at run start.
	UserRowID int64

	// EditQuestionID carries the target between the two admin edit steps.
	EditQuestionID int64
}

// InDialogue reports whether the session is mid-flow and free text
// should be routed to the engine rather than the menu fallback.
func (s *Session) InDialogue() bool {
	return s.Phase != PhaseIdle
}

// ResetRun clears run state and returns the session to Idle. Phone
// forms and admin mode survive a reset.
func (s *Session) ResetRun() {
	s.Phase = PhaseIdle
	s.Questions = nil
	s.Cursor = 0
	s.Answers = nil
	s.UserRowID = 0
	s.EditQuestionID = 0
}

// Store holds one session per user with per-user serialized access.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*sessionEntry
}

type sessionEntry struct {
	mu   sync.Mutex
	sess *Session
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{entries: make(map[int64]*sessionEntry)}
}

func (st *Store) entry(telegramID int64) *sessionEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[telegramID]
	if !ok {
		e = &sessionEntry{sess: &Session{TelegramID: telegramID}}
		st.entries[telegramID] = e
	}
	return e
}

// With runs fn with exclusive access to the user's session. Events for
// one user are therefore processed one at a time, in arrival order.
func (st *Store) With(telegramID int64, fn func(*Session) error) error {
	e := st.entry(telegramID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

package questionnaire

import (
	"sync"
	"testing"

	"github.com/m3rciful/anketabot/internal/models"
)

func TestStoreIsolatesUsers(t *testing.T) {
	st := NewStore()
	_ = st.With(1, func(s *Session) error {
		s.Phase = PhaseAsking
		return nil
	})
	_ = st.With(2, func(s *Session) error {
		if s.Phase != PhaseIdle {
			t.Errorf("user 2 phase = %v, want idle", s.Phase)
		}
		return nil
	})
	_ = st.With(1, func(s *Session) error {
		if s.Phase != PhaseAsking {
			t.Errorf("user 1 phase = %v, want asking", s.Phase)
		}
		return nil
	})
}

func TestStoreSerializesPerUser(t *testing.T) {
	st := NewStore()
	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.With(7, func(s *Session) error {
				s.Cursor++
				return nil
			})
		}()
	}
	wg.Wait()
	_ = st.With(7, func(s *Session) error {
		if s.Cursor != n {
			t.Errorf("cursor = %d, want %d", s.Cursor, n)
		}
		return nil
	})
}

func TestResetRunKeepsPhoneAndAdminMode(t *testing.T) {
	s := &Session{
		TelegramID: 5,
		Phase:      PhaseAsking,
		AdminMode:  true,
		Questions:  questionSet(),
		Cursor:     2,
		Answers:    models.Answers{1: {QuestionID: 1}},
		Phone:      "+380671234567",
	}
	s.ResetRun()
	if s.Phase != PhaseIdle || s.Questions != nil || s.Cursor != 0 || s.Answers != nil {
		t.Errorf("run state not cleared: %+v", s)
	}
	if !s.AdminMode || s.Phone != "+380671234567" {
		t.Errorf("admin mode and phone must survive reset: %+v", s)
	}
}

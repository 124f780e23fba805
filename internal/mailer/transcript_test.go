package mailer

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/anketabot/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:             1,
		TelegramID:     42,
		Username:       sql.NullString{String: "olena", Valid: true},
		FullName:       sql.NullString{String: "Олена Петренко", Valid: true},
		FormattedPhone: sql.NullString{String: "+38 (067) 123-45-67", Valid: true},
		PhoneNumber:    sql.NullString{String: "+380671234567", Valid: true},
	}
}

func TestBuildTranscriptHeader(t *testing.T) {
	answers := models.Answers{
		1: {QuestionID: 1, QuestionText: "Ім'я?", Answer: "Марія", Number: 1},
	}
	at := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	subject, body := BuildTranscript(testUser(), answers, at)

	if subject != "Нова анкета: Олена Петренко" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{
		"Клієнт: Олена Петренко",
		"Telegram: @olena",
		"Телефон: +38 (067) 123-45-67",
		"Дата: 15.03.2026 14:30",
		"Відповіді: 1, пропущено: 0",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestBuildTranscriptBands(t *testing.T) {
	answers := models.Answers{}
	for _, n := range []int{1, 10, 11, 14, 15, 21, 22, 30} {
		answers[int64(n)] = models.AnswerEntry{
			QuestionID:   int64(n),
			QuestionText: "Питання",
			Answer:       "Відповідь",
			Number:       n,
		}
	}
	_, body := BuildTranscript(testUser(), answers, time.Now())

	for _, title := range []string{
		"Крок 1 — Основна інформація",
		"Крок 2 — Анамнез пологів",
		"Крок 3 — Здоров'я",
		"Крок 4 — Соціальні аспекти",
	} {
		if !strings.Contains(body, title) {
			t.Errorf("body missing band %q", title)
		}
	}
}

func TestBuildTranscriptOmitsEmptyBands(t *testing.T) {
	answers := models.Answers{
		2: {QuestionID: 2, QuestionText: "Питання", Answer: "Відповідь", Number: 2},
	}
	_, body := BuildTranscript(testUser(), answers, time.Now())
	if strings.Contains(body, "Крок 2") || strings.Contains(body, "Крок 4") {
		t.Errorf("empty bands must be omitted:\n%s", body)
	}
}

func TestTranscriptRowWidth(t *testing.T) {
	answers := models.Answers{
		1: {
			QuestionID:   1,
			QuestionText: "Дуже довге питання про стан здоров'я дитини та перебіг вагітності загалом",
			Answer:       "Так, були певні ускладнення, про які варто розповісти лікарю окремо",
			Number:       1,
		},
	}
	_, body := BuildTranscript(testUser(), answers, time.Now())

	wantWidth := len([]rune("| " + strings.Repeat("x", colWidth) + " | " + strings.Repeat("x", colWidth) + " |"))
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		if got := len([]rune(line)); got != wantWidth {
			t.Errorf("row width %d, want %d: %q", got, wantWidth, line)
		}
	}
}

func TestWrap(t *testing.T) {
	lines := wrap("один два три", 8)
	if len(lines) != 2 || lines[0] != "один два" || lines[1] != "три" {
		t.Errorf("wrap = %v", lines)
	}
	long := wrap(strings.Repeat("а", 20), 8)
	if len(long) != 3 {
		t.Errorf("long word wrap = %v", long)
	}
	if got := wrap("", 8); len(got) != 1 || got[0] != "" {
		t.Errorf("empty wrap = %v", got)
	}
}

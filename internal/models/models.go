package models

import (
	"database/sql"
	"time"
)

// Sentinel values persisted inside user and questionnaire records.
const (
	// PhoneNotProvided is stored as the phone number when the user skips
	// the phone capture step.
	PhoneNotProvided = "Не вказано"
	// SkippedAnswer is stored as the answer text when the user skips a
	// free-text question.
	SkippedAnswer = "❌ Питання пропущено"
)

// User is a bot user created on first contact and never deleted.
type User struct {
	ID             int64          `db:"id"`
	TelegramID     int64          `db:"telegram_id"`
	Username       sql.NullString `db:"username"`
	FullName       sql.NullString `db:"full_name"`
	PhoneNumber    sql.NullString `db:"phone_number"`
	FormattedPhone sql.NullString `db:"formatted_phone"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// HasPhone reports whether the user provided a real phone number,
// as opposed to nothing or the skip sentinel.
func (u *User) HasPhone() bool {
	return u != nil && u.PhoneNumber.Valid &&
		u.PhoneNumber.String != "" && u.PhoneNumber.String != PhoneNotProvided
}

// DisplayPhone returns the best user-facing rendering of the stored phone.
func (u *User) DisplayPhone() string {
	if u == nil {
		return PhoneNotProvided
	}
	if u.FormattedPhone.Valid && u.FormattedPhone.String != "" {
		return u.FormattedPhone.String
	}
	if u.PhoneNumber.Valid && u.PhoneNumber.String != "" {
		return u.PhoneNumber.String
	}
	return PhoneNotProvided
}

// DisplayName returns the full name when present, falling back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName.Valid && u.FullName.String != "" {
		return u.FullName.String
	}
	if u.Username.Valid {
		return u.Username.String
	}
	return ""
}

// Question is an admin-managed questionnaire entry. The prompt may embed
// selectable options as marker-prefixed lines after the first line.
type Question struct {
	ID        int64     `db:"id"`
	Text      string    `db:"question_text"`
	Order     int       `db:"question_order"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

// QuestionnaireStatus values for stored submissions.
const (
	QuestionnaireCompleted = "completed"
)

// Questionnaire is an immutable snapshot of one finished run.
type Questionnaire struct {
	ID         int64          `db:"id"`
	UserID     int64          `db:"user_id"`
	RawAnswers sql.NullString `db:"answers"`
	Status     string         `db:"status"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// Answers decodes the stored answer mapping. A corrupt or missing record
// yields an empty mapping rather than an error.
func (q *Questionnaire) Answers() Answers {
	if q == nil || !q.RawAnswers.Valid {
		return Answers{}
	}
	return DecodeAnswers([]byte(q.RawAnswers.String))
}

// Statistics aggregates admin-facing counters.
type Statistics struct {
	TotalUsers          int `db:"total_users"`
	UsersWithPhones     int `db:"users_with_phones"`
	TotalQuestionnaires int `db:"total_questionnaires"`
	TodayQuestionnaires int `db:"today_questionnaires"`
	TotalQuestions      int `db:"total_questions"`
	ActiveQuestions     int `db:"active_questions"`
}

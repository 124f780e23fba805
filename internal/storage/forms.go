package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/anketabot/internal/logger"
	"github.com/m3rciful/anketabot/internal/models"
)

// SaveQuestionnaire stores one completed run for the given user row id.
func (g *Gateway) SaveQuestionnaire(ctx context.Context, userID int64, answers models.Answers) (*models.Questionnaire, error) {
	raw, err := answers.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	var q models.Questionnaire
	err = g.db.GetContext(ctx, &q, `
		INSERT INTO questionnaires (user_id, answers, status)
		VALUES ($1, $2, $3) RETURNING *`,
		userID, string(raw), models.QuestionnaireCompleted)
	if err != nil {
		return nil, fmt.Errorf("save questionnaire for user %d: %w", userID, err)
	}
	logger.Info(ctx, "service.forms", "form.saved",
		slog.Int64("questionnaire_id", q.ID),
		slog.Int64("user_row_id", userID),
		slog.Int("answers", len(answers)))
	return &q, nil
}

// LatestQuestionnaireForUser returns the most recent run by the user,
// or nil when the user has never finished one.
func (g *Gateway) LatestQuestionnaireForUser(ctx context.Context, userID int64) (*models.Questionnaire, error) {
	var q models.Questionnaire
	err := g.db.GetContext(ctx, &q, `
		SELECT * FROM questionnaires
		WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest questionnaire for user %d: %w", userID, err)
	}
	return &q, nil
}

// Submission pairs a stored run with the user who produced it.
type Submission struct {
	models.Questionnaire
	TelegramID     int64          `db:"telegram_id"`
	Username       sql.NullString `db:"tg_username"`
	FullName       sql.NullString `db:"tg_full_name"`
	FormattedPhone sql.NullString `db:"tg_formatted_phone"`
}

// RecentSubmissions lists the newest completed runs with user details.
func (g *Gateway) RecentSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 3
	}
	var subs []Submission
	err := g.db.SelectContext(ctx, &subs, `
		SELECT q.*,
		       u.telegram_id,
		       u.username        AS tg_username,
		       u.full_name       AS tg_full_name,
		       u.formatted_phone AS tg_formatted_phone
		FROM questionnaires q
		JOIN users u ON u.id = q.user_id
		ORDER BY q.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	return subs, nil
}

// Stats collects the admin dashboard counters in one round trip.
func (g *Gateway) Stats(ctx context.Context) (*models.Statistics, error) {
	var s models.Statistics
	err := g.db.GetContext(ctx, &s, `
		SELECT
			(SELECT COUNT(*) FROM users)                                       AS total_users,
			(SELECT COUNT(*) FROM users
			 WHERE phone_number IS NOT NULL AND phone_number <> ''
			   AND phone_number <> $1)                                         AS users_with_phones,
			(SELECT COUNT(*) FROM questionnaires)                              AS total_questionnaires,
			(SELECT COUNT(*) FROM questionnaires
			 WHERE created_at >= date_trunc('day', NOW()))                     AS today_questionnaires,
			(SELECT COUNT(*) FROM questions)                                   AS total_questions,
			(SELECT COUNT(*) FROM questions WHERE is_active = TRUE)            AS active_questions`,
		models.PhoneNotProvided)
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return &s, nil
}

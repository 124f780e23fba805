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

// ListActiveQuestions returns active questions in asking order.
// It performs no writes; use RepairIfNoneActive to recover a set where
// every question was deactivated.
func (g *Gateway) ListActiveQuestions(ctx context.Context) ([]models.Question, error) {
	var qs []models.Question
	err := g.db.SelectContext(ctx, &qs, `
		SELECT * FROM questions
		WHERE is_active = TRUE
		ORDER BY question_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active questions: %w", err)
	}
	return qs, nil
}

// RepairIfNoneActive reactivates every question when none is active but
// inactive ones exist. Returns how many rows were reactivated.
func (g *Gateway) RepairIfNoneActive(ctx context.Context) (int, error) {
	res, err := g.db.ExecContext(ctx, `
		UPDATE questions SET is_active = TRUE
		WHERE NOT EXISTS (SELECT 1 FROM questions WHERE is_active = TRUE)`)
	if err != nil {
		return 0, fmt.Errorf("repair active questions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repair active questions: %w", err)
	}
	if n > 0 {
		logger.Warn(ctx, "service.questions", "questions.repaired",
			slog.Int64("reactivated", n))
	}
	return int(n), nil
}

// AllQuestions lists every question regardless of activity, in asking order.
func (g *Gateway) AllQuestions(ctx context.Context) ([]models.Question, error) {
	var qs []models.Question
	err := g.db.SelectContext(ctx, &qs,
		`SELECT * FROM questions ORDER BY question_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("all questions: %w", err)
	}
	return qs, nil
}

// QuestionByID fetches one question.
func (g *Gateway) QuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	err := g.db.GetContext(ctx, &q, `SELECT * FROM questions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", id, err)
	}
	return &q, nil
}

// AddQuestion inserts a new active question. When order is zero or
// negative the question is appended after the current maximum.
func (g *Gateway) AddQuestion(ctx context.Context, text string, order int) (*models.Question, error) {
	var q models.Question
	var err error
	if order > 0 {
		err = g.db.GetContext(ctx, &q, `
			INSERT INTO questions (question_text, question_order)
			VALUES ($1, $2) RETURNING *`, text, order)
	} else {
		err = g.db.GetContext(ctx, &q, `
			INSERT INTO questions (question_text, question_order)
			VALUES ($1, (SELECT COALESCE(MAX(question_order), 0) + 1 FROM questions))
			RETURNING *`, text)
	}
	if err != nil {
		return nil, fmt.Errorf("add question: %w", err)
	}
	logger.Info(ctx, "service.questions", "question.added",
		slog.Int64("question_id", q.ID), slog.Int("order", q.Order))
	return &q, nil
}

// UpdateQuestionText replaces the prompt text of an existing question.
func (g *Gateway) UpdateQuestionText(ctx context.Context, id int64, text string) error {
	res, err := g.db.ExecContext(ctx,
		`UPDATE questions SET question_text = $2 WHERE id = $1`, id, text)
	if err != nil {
		return fmt.Errorf("update question %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuestionNotFound
	}
	logger.Info(ctx, "service.questions", "question.updated",
		slog.Int64("question_id", id))
	return nil
}

// SetQuestionActive toggles a question in or out of the asking set.
func (g *Gateway) SetQuestionActive(ctx context.Context, id int64, active bool) error {
	res, err := g.db.ExecContext(ctx,
		`UPDATE questions SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set question %d active=%v: %w", id, active, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

// defaultQuestions seeds an empty installation so the bot is usable
// immediately after the first migration.
var defaultQuestions = []string{
	"Як звати вашу дитину?",
	"Скільки років вашій дитині?",
	"Які скарги або проблеми вас турбують?",
	"Чи були ускладнення під час пологів?\n• Так\n• Ні\n• Не пам'ятаю",
	"Чи є у дитини хронічні захворювання?\n• Так\n• Ні",
	"Як дитина спить?\n• Добре\n• Неспокійно\n• Погано",
}

// SeedDefaultQuestions inserts the default question set when the table
// is empty. Returns how many questions were inserted.
func (g *Gateway) SeedDefaultQuestions(ctx context.Context) (int, error) {
	var count int
	if err := g.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM questions`); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for i, text := range defaultQuestions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO questions (question_text, question_order)
			VALUES ($1, $2)`, text, i+1); err != nil {
			return 0, fmt.Errorf("seed question %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	logger.Info(ctx, "db.seed", "questions.seeded",
		slog.Int("count", len(defaultQuestions)))
	return len(defaultQuestions), nil
}

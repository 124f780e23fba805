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

// GetOrCreateUser returns the user for the given Telegram account,
// creating the row on first contact. Username and full name are
// refreshed on every call so stale profile data does not linger.
func (g *Gateway) GetOrCreateUser(ctx context.Context, telegramID int64, username, fullName string) (*models.User, error) {
	var u models.User
	err := g.db.GetContext(ctx, &u, `
		INSERT INTO users (telegram_id, username, full_name)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		ON CONFLICT (telegram_id) DO UPDATE
		SET username  = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
		    full_name = COALESCE(NULLIF(EXCLUDED.full_name, ''), users.full_name),
		    updated_at = NOW()
		RETURNING *`,
		telegramID, username, fullName)
	if err != nil {
		return nil, fmt.Errorf("get or create user %d: %w", telegramID, err)
	}
	logger.Debug(ctx, "service.users", "user.upsert",
		slog.Int64("telegram_id", telegramID))
	return &u, nil
}

// UserByTelegramID fetches a user by Telegram account id.
func (g *Gateway) UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	err := g.db.GetContext(ctx, &u,
		`SELECT * FROM users WHERE telegram_id = $1`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user by telegram id %d: %w", telegramID, err)
	}
	return &u, nil
}

// UpdateUserPhone stores the canonical and display phone forms for the user.
func (g *Gateway) UpdateUserPhone(ctx context.Context, telegramID int64, phone, formatted string) error {
	res, err := g.db.ExecContext(ctx, `
		UPDATE users
		SET phone_number = $2, formatted_phone = $3, updated_at = NOW()
		WHERE telegram_id = $1`,
		telegramID, phone, formatted)
	if err != nil {
		return fmt.Errorf("update phone for %d: %w", telegramID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	logger.Info(ctx, "service.users", "user.phone.updated",
		slog.Int64("telegram_id", telegramID))
	return nil
}

// RecentUsers lists the most recently registered users, newest first.
func (g *Gateway) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []models.User
	err := g.db.SelectContext(ctx, &users,
		`SELECT * FROM users ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}
	return users, nil
}

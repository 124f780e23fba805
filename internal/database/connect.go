// Package database owns the Postgres connection pool and schema
// migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/anketabot/internal/config"
	"github.com/m3rciful/anketabot/internal/logger"
)

const connectTimeout = 5 * time.Second

// keywordDSN renders the libpq keyword/value connection string.
func keywordDSN(cfg config.DatabaseConfig) string {
	pairs := []string{
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"host=" + cfg.Host,
		"port=" + cfg.Port,
		"dbname=" + cfg.Name,
		"sslmode=" + cfg.SSLMode,
	}
	return strings.Join(pairs, " ")
}

// urlDSN renders the postgres:// form golang-migrate expects.
func urlDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)
}

func connAttrs(cfg config.DatabaseConfig) []slog.Attr {
	return []slog.Attr{
		slog.String("driver", "postgres"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
	}
}

// Connect opens the pool, verifies connectivity and applies pool limits.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	started := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", keywordDSN(cfg))
	took := logger.RoundMS(time.Since(started))
	if err != nil {
		attrs := append(connAttrs(cfg),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		logger.DB.LogAttrs(ctx, slog.LevelError, "db connect failed",
			append([]slog.Attr{slog.String("event", "db.connect")}, attrs...)...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	attrs := append(connAttrs(cfg),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", took),
	)
	logger.DB.LogAttrs(ctx, slog.LevelInfo, "db connected",
		append([]slog.Attr{slog.String("event", "db.connect")}, attrs...)...)

	return db, nil
}

// WaitForPostgres polls the database until it answers a ping or the
// timeout elapses. The bot may start ahead of the database container.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	var lastErr error
	for {
		lastErr = pingOnce(dsn)
		if lastErr == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		}
		time.Sleep(2 * time.Second)
	}
}

func pingOnce(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping()
}

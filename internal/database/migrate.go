package database

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/anketabot/internal/config"
	"github.com/m3rciful/anketabot/internal/logger"
)

const migrateWaitTimeout = 30 * time.Second

// RunMigrations waits for the database and applies every pending up
// migration from ./migrations relative to the working directory.
func RunMigrations(cfg config.DatabaseConfig) error {
	dsn := urlDSN(cfg)
	if err := WaitForPostgres(dsn, migrateWaitTimeout); err != nil {
		logger.MIG.Error("db not ready",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("database not ready: %w", err)
	}

	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	files := upMigrations(dir)
	logResolved(dir, files)

	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		logger.MIG.Error("init failed",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	before, _, _ := m.Version()

	started := time.Now()
	upErr := m.Up()
	took := logger.RoundMS(time.Since(started))

	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.MIG.Error("migration failed",
			slog.String("event", "apply"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	after := before
	applied := 0
	if upErr == nil {
		after, _, _ = m.Version()
		applied = len(files)
	}
	logger.MIG.Info("migrations summary",
		slog.String("event", "summary"),
		slog.Uint64("from_ver", uint64(before)),
		slog.Uint64("to_ver", uint64(after)),
		slog.Int("files", applied),
		slog.Duration("duration", took),
	)
	return nil
}

func migrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return filepath.Join(cwd, "migrations"), nil
}

// upMigrations returns the sorted *.up.sql file names in dir. A missing
// directory yields nil and is reported later by golang-migrate.
func upMigrations(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func logResolved(dir string, files []string) {
	attrs := []any{
		slog.String("event", "resolve"),
		slog.String("path", dir),
		slog.Int("files_total", len(files)),
	}
	if preview, truncated := logger.SummarizeStrings(files, 6); preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
		if truncated {
			attrs = append(attrs, slog.Bool("files_truncated", true))
		}
	}
	logger.MIG.Debug("migrations resolved", attrs...)
}

// Package app assembles the bot from its parts: configuration,
// logging, database, questionnaire engine, mail delivery and the
// Telegram runtime.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/anketabot/internal/bot"
	"github.com/m3rciful/anketabot/internal/config"
	"github.com/m3rciful/anketabot/internal/database"
	"github.com/m3rciful/anketabot/internal/logger"
	"github.com/m3rciful/anketabot/internal/mailer"
	"github.com/m3rciful/anketabot/internal/questionnaire"
	"github.com/m3rciful/anketabot/internal/sender"
	"github.com/m3rciful/anketabot/internal/storage"
	tg "github.com/m3rciful/anketabot/internal/telegram"
)

// App holds the assembled application.
type App struct {
	cfg      *config.Config
	db       *sqlx.DB
	gateway  *storage.Gateway
	mail     *mailer.Mailer
	surface  *bot.Bot
	registry *tg.Registry
	disp     *sender.Dispatcher
}

// New initializes infrastructure and wires the application together.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("app: logger init failed: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: database initialization failed: %w", err)
	}
	if err := database.RunMigrations(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("app: migrations failed: %w", err)
	}

	gw := storage.New(db)
	ctx := logger.Background()

	if n, err := gw.SeedDefaultQuestions(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("app: seeding failed: %w", err)
	} else if n > 0 {
		logger.Info(ctx, "db.seed", "seed.completed", slog.Int("questions", n))
	}

	// One-time repair pass so a fully deactivated question set heals at
	// boot instead of on the first user's run.
	if _, err := gw.RepairIfNoneActive(ctx); err != nil {
		logger.Warn(ctx, "service.questions", "questions.repair_failed", slog.Any("err", err))
	}

	disp := sender.New(sender.Options{})
	mail := mailer.New(cfg.SMTP, disp)
	sessions := questionnaire.NewStore()
	engine := questionnaire.NewEngine(gw, mail)
	surface := bot.New(cfg, gw, engine, sessions)

	return &App{
		cfg:      cfg,
		db:       db,
		gateway:  gw,
		mail:     mail,
		surface:  surface,
		registry: surface.BuildRegistry(),
		disp:     disp,
	}, nil
}

// TelegramRunOptions builds the runtime configuration for RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := a.surface.Routes(a.registry)

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Dispatcher:  a.disp,
		Middlewares: tg.DefaultMiddlewares(a.cfg, a.surface.RateLimited),
		Routes:      routes,
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			return a.Close()
		},
	}, nil
}

// Close releases infrastructure owned by the app.
func (a *App) Close() error {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("app: database close failed: %w", err)
		}
		a.db = nil
	}
	return nil
}

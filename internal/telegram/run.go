package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m3rciful/anketabot/internal/config"
	"github.com/m3rciful/anketabot/internal/logger"
	"github.com/m3rciful/anketabot/internal/sender"
	tghelpers "github.com/m3rciful/anketabot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to an endpoint accepted by tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *config.Config
	Registry *Registry

	DispatcherOptions sender.Options
	Dispatcher        *sender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *sender.Dispatcher
	Registry   *Registry
}

// runner keeps the assembled pieces together for the serve loop.
type runner struct {
	opts       RunOptions
	bot        *tele.Bot
	dispatcher *sender.Dispatcher
	registry   *Registry
	buildTook  time.Duration
}

// RunTelegram assembles a bot from opts and runs it until ctx is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}

	r, err := newRunner(opts)
	if err != nil {
		return err
	}
	r.announce(ctx)
	r.install()

	return r.serve(ctx)
}

func newRunner(opts RunOptions) (*runner, error) {
	cfg := opts.Config

	started := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token: cfg.Telegram.Token,
		Poller: BuildPoller(PollerOptions{
			RunMode:                cfg.Telegram.RunMode,
			LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
			Webhook: WebhookOptions{
				Listen: cfg.Webhook.Listen,
				Port:   cfg.Webhook.Port,
				URL:    cfg.Webhook.URL,
			},
		}),
		Client: BuildHTTPClient(),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	r := &runner{
		opts:       opts,
		bot:        bot,
		dispatcher: opts.Dispatcher,
		registry:   opts.Registry,
		buildTook:  time.Since(started),
	}
	if r.registry == nil {
		r.registry = NewRegistry()
	}
	if r.dispatcher == nil {
		r.dispatcher = sender.New(opts.DispatcherOptions)
	}
	return r, nil
}

// announce logs the active transport and, in polling mode, clears any
// leftover webhook registration that would block getUpdates.
func (r *runner) announce(ctx context.Context) {
	cfg := r.opts.Config

	if wh, ok := r.bot.Poller.(*tele.Webhook); ok {
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
			slog.Duration("duration", logger.RoundMS(r.buildTook)),
		)
		return
	}

	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	logger.TG.Info("polling mode",
		slog.String("event", "mode"),
		slog.String("mode", "polling"),
		slog.Int("timeout_seconds", timeoutSec),
		slog.Duration("duration", logger.RoundMS(r.buildTook)),
	)

	if r.opts.DisableWebhookCleanup || !strings.EqualFold(cfg.Telegram.RunMode, config.RunModeLongpoll) {
		return
	}
	if err := dropWebhook(ctx, cfg.Telegram.Token); err != nil {
		logger.TG.Warn("failed to delete webhook",
			slog.String("event", "delete_webhook"),
			slog.String("mode", "polling"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TG.Info("webhook deleted",
		slog.String("event", "delete_webhook"),
		slog.String("mode", "polling"),
	)
}

// install registers middlewares, routes and the command menu.
func (r *runner) install() {
	tghelpers.SetDispatcher(r.dispatcher)

	for _, mw := range r.opts.Middlewares {
		if mw.Use != nil {
			r.bot.Use(mw.Use)
		}
	}
	for _, route := range r.opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			r.bot.Handle(route.Endpoint, route.Handler)
		}
	}
	InitBotCommands(r.bot, r.registry)
}

func (r *runner) serve(ctx context.Context) error {
	rt := Runtime{Bot: r.bot, Dispatcher: r.dispatcher, Registry: r.registry}

	defer func() {
		r.dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

	if r.opts.OnStart != nil {
		if err := r.opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		r.bot.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		r.bot.Stop()
		<-stopped
		runErr = ctx.Err()
	case <-stopped:
	}

	if r.opts.OnStop != nil {
		if err := r.opts.OnStop(ctx, rt); err != nil {
			return err
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// dropWebhook calls the Bot API directly; telebot has no client-side way
// to delete a webhook before the poller starts.
func dropWebhook(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	form := url.Values{"drop_pending_updates": {"false"}}
	endpoint := "https://api.telegram.org/bot" + token + "/deleteWebhook"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}

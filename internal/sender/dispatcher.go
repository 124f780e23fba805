// Package sender runs outbound side effects (Telegram replies, mail
// delivery) on a bounded asynchronous queue with retry, so handlers
// never block on the network twice.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/anketabot/internal/logger"
	"github.com/m3rciful/anketabot/internal/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed reports an enqueue after Close.
	ErrQueueClosed = errors.New("sender: queue closed")
	// ErrQueueFull reports a saturated queue; the job was not accepted.
	ErrQueueFull = errors.New("sender: queue full")
)

var (
	botTokenRe  = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
	parenCodeRe = regexp.MustCompile(`\((\d{3})\)`)
)

// Options tunes the dispatcher. Zero values take defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds one job including all retries.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 15 * time.Second
	}
	return o
}

type task struct {
	ctx    context.Context
	action string
	run    func() error
}

// Dispatcher owns a worker pool draining the outbound queue.
type Dispatcher struct {
	opts     Options
	queue    chan task
	closing  chan struct{}
	shutdown sync.Once
	workers  sync.WaitGroup
	failed   atomic.Uint64
}

// New starts the worker pool and returns the dispatcher.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		opts:    opts.withDefaults(),
		closing: make(chan struct{}),
	}
	d.queue = make(chan task, d.opts.QueueSize)
	for i := 0; i < d.opts.Workers; i++ {
		d.workers.Add(1)
		go func() {
			defer d.workers.Done()
			for t := range d.queue {
				d.execute(t)
			}
		}()
	}
	return d
}

// Enqueue schedules run on the pool. Retried closures must be
// idempotent. A full queue is the caller's problem: ErrQueueFull comes
// back immediately instead of blocking a handler.
func (d *Dispatcher) Enqueue(ctx context.Context, action string, run func() error) error {
	if run == nil {
		return errors.New("sender: nil job")
	}
	select {
	case <-d.closing:
		return ErrQueueClosed
	default:
	}
	select {
	case d.queue <- task{ctx: ctx, action: action, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount reports jobs that failed after all retries.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close rejects new work, drains the queue and waits for the workers.
func (d *Dispatcher) Close() {
	d.shutdown.Do(func() {
		close(d.closing)
		close(d.queue)
		d.workers.Wait()
	})
}

func (d *Dispatcher) execute(t task) {
	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	budget, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	base := []slog.Attr{slog.String("action", t.action)}
	if rid := logger.RIDFrom(ctx); rid != "" {
		base = append(base, slog.String("rid", rid))
	}
	if id := logger.ChatIDFrom(ctx); id != 0 {
		base = append(base, slog.Int64("chat_id", id))
	}
	if id := logger.UserIDFrom(ctx); id != 0 {
		base = append(base, slog.Int64("user_id", id))
	}

	started := time.Now()
	maxAttempts := d.opts.MaxRetries + 1

	var err error
	for attempt := 1; ; attempt++ {
		if err = budget.Err(); err != nil {
			break
		}
		if err = t.run(); err == nil {
			event, level := "send.success", slog.LevelDebug
			if attempt > 1 {
				event, level = "send.retry.success", slog.LevelInfo
			}
			logger.Event(ctx, "sender", level, event,
				append(base, slog.Duration("elapsed", time.Since(started)))...)
			return
		}
		if attempt >= maxAttempts || !netutil.ShouldRetry(err) {
			break
		}
		if !d.pause(budget, d.opts.RetryBackoff*time.Duration(attempt)) {
			err = budget.Err()
			break
		}
		logger.Debug(ctx, "sender", "send.retry.backoff",
			append(base, slog.Int("attempt", attempt))...)
	}

	d.failed.Add(1)
	logger.Error(ctx, "sender", "send.fail",
		append(base,
			slog.String("error", redact(err)),
			slog.String("error_kind", errKind(err)),
			slog.Int("attempts", maxAttempts),
			slog.Duration("elapsed", time.Since(started)))...)
}

// pause sleeps for the backoff, returning false if the budget expired
// first.
func (d *Dispatcher) pause(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// redact strips the bot token from Telegram API error text before it
// reaches the logs.
func redact(err error) string {
	if err == nil {
		return ""
	}
	return botTokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

// errKind buckets an error for the send.fail metric dimension.
func errKind(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}
	if netErr := net.Error(nil); errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "dial"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
		if kind := errKind(urlErr.Err); kind != "" && kind != "unknown" {
			return kind
		}
	}

	switch code := httpCode(err); {
	case code >= 500:
		return "http_5xx"
	case code >= 400:
		return "http_4xx"
	}
	return "unknown"
}

// httpCode extracts an HTTP status from a Telegram API error, falling
// back to a parenthesized three-digit code in the message text.
func httpCode(err error) int {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return http.StatusTooManyRequests
	}
	if m := parenCodeRe.FindStringSubmatch(err.Error()); m != nil {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil {
			return code
		}
	}
	return 0
}

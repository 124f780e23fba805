// Package mailer delivers completed questionnaire transcripts to the
// operator mailbox over SMTP.
package mailer

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/anketabot/internal/config"
	"github.com/m3rciful/anketabot/internal/logger"
	"github.com/m3rciful/anketabot/internal/models"
	"github.com/m3rciful/anketabot/internal/sender"
)

// Mailer formats and sends transcripts through the shared outbound
// dispatcher, so a slow mailbox never blocks a handler.
type Mailer struct {
	cfg  config.SMTPConfig
	disp *sender.Dispatcher
	now  func() time.Time
}

// New builds a mailer. A nil dispatcher makes every notification a no-op.
func New(cfg config.SMTPConfig, disp *sender.Dispatcher) *Mailer {
	return &Mailer{cfg: cfg, disp: disp, now: time.Now}
}

// NotifyCompleted queues transcript delivery for a finished run.
// Failures are logged by the dispatcher and never surfaced to the user.
func (m *Mailer) NotifyCompleted(user *models.User, answers models.Answers) {
	if m == nil || m.disp == nil || !m.cfg.Enabled() {
		return
	}
	subject, body := BuildTranscript(user, answers, m.now())
	ctx := logger.Background()
	err := m.disp.Enqueue(ctx, "mail.transcript", func() error {
		return m.send(subject, body)
	})
	if err != nil {
		logger.Error(ctx, "mail", "mail.enqueue.failed",
			slog.Int64("telegram_id", user.TelegramID), slog.Any("err", err))
	}
}

// SendTranscript delivers one message synchronously. Exposed for
// startup checks; normal flow goes through NotifyCompleted.
func (m *Mailer) SendTranscript(subject, body string) error {
	return m.send(subject, body)
}

func (m *Mailer) send(subject, body string) error {
	c, err := smtp.Dial(m.cfg.Addr())
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", m.cfg.Addr(), err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(m.cfg.Sender); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(m.cfg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(m.message(subject, body))); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return c.Quit()
}

func (m *Mailer) message(subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", m.cfg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", encodeHeader(subject))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), m.cfg.Host)
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}

// encodeHeader wraps a header value in RFC 2047 UTF-8 encoding when it
// contains non-ASCII characters.
func encodeHeader(s string) string {
	return mime.BEncoding.Encode("UTF-8", s)
}

package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/yanryp/servicedesk-sub004/internal/config"
)

// ErrNoRecipients is returned when a message has nobody to go to.
var ErrNoRecipients = errors.New("notify: message has no recipients")

// Message is a plain-text e-mail.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers messages over SMTP.
type Mailer struct {
	from    string
	dialer  *gomail.Dialer
	timeout time.Duration
}

// NewMailer returns nil when no SMTP host is configured.
func NewMailer(cfg config.NotificationConfig) *Mailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil
	}
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.SSL = cfg.SMTPUseTLS
	if cfg.SMTPUseTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	}
	return &Mailer{from: cfg.EmailFrom, dialer: d, timeout: cfg.Timeout()}
}

// Send dials the server and delivers m, giving up at the earlier of ctx's
// deadline and the configured timeout.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	built, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(built)
	}()

	wait := m.timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, errors.New("notify: sender address is required")
	}
	to := cleanAddrs(m.To)
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}
	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		return nil, errors.New("notify: subject is required")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", m.Body)
	return msg, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

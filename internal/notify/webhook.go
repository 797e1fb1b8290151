package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Webhook posts JSON payloads to a single endpoint.
type Webhook struct {
	url     string
	timeout time.Duration
}

// NewWebhook returns nil when url is blank.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{url: url, timeout: timeout}
}

// Post sends payload as JSON. Any non-2xx answer is an error.
func (w *Webhook) Post(ctx context.Context, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := w.timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < timeout {
			timeout = d
		}
	}

	agent := fiber.Post(w.url)
	agent.JSON(payload)
	agent.Timeout(timeout)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("webhook post: %w", errors.Join(errs...))
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook post: status %d: %s", status, strings.TrimSpace(string(body)))
	}
	return nil
}

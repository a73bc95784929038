// Package notify delivers accepted contact submissions to downstream channels.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quickfy/backend/internal/contact/domain"
)

const defaultTimeout = 15 * time.Second

// ErrWebhookNotConfigured is returned by Webhook.Notify when no URL is set.
var ErrWebhookNotConfigured = errors.New("notify: webhook URL not configured")

// Notifier delivers a submission. Implementations must not retain s.
type Notifier interface {
	Notify(ctx context.Context, s *domain.Submission) error
}

// Webhook posts submissions as JSON to a URL.
type Webhook struct {
	URL        string
	Secret     string
	HTTPClient *http.Client
}

// NewWebhook returns a webhook notifier. secret, when set, is sent as a bearer token.
func NewWebhook(url, secret string) *Webhook {
	return &Webhook{
		URL:        strings.TrimSpace(url),
		Secret:     secret,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type webhookPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notify sends the submission. A non-2xx response is an error; the response body is included truncated.
func (w *Webhook) Notify(ctx context.Context, s *domain.Submission) error {
	if w.URL == "" {
		return ErrWebhookNotConfigured
	}
	raw, err := json.Marshal(webhookPayload{
		ID: s.ID, Name: s.Name, Email: s.Email, Company: s.Company,
		Phone: s.Phone, Message: s.Message, CreatedAt: s.CreatedAt,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+w.Secret)
	}
	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: webhook failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}

// Multi notifies every non-nil notifier in order and joins their errors.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

type multi []Notifier

func (m multi) Notify(ctx context.Context, s *domain.Submission) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, s *domain.Submission) error

func (f Func) Notify(ctx context.Context, s *domain.Submission) error { return f(ctx, s) }

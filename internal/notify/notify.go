// Package notify delivers completed insight reports to an external
// automation webhook. Delivery is fire-and-forget: failures are logged and
// discarded, never surfaced to the caller.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"
)

// DefaultTimeout bounds one webhook delivery.
const DefaultTimeout = 10 * time.Second

// Webhook posts JSON payloads to a configured endpoint.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier. An empty URL yields a notifier that
// silently does nothing.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Notify posts the payload to the webhook endpoint. All failures are logged
// only.
func (w *Webhook) Notify(ctx context.Context, payload any) {
	if w.url == "" {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[notify] failed to marshal payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[notify] failed to create request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		log.Printf("[notify] webhook delivery failed: %v", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		log.Printf("[notify] webhook returned status %d", resp.StatusCode)
	}
}

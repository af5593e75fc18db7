// Package notify provides notification sinks. Delivery is fire-and-forget:
// a failed send is logged, never surfaced, so automation state changes are
// not blocked or rolled back by a flaky channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"

	"github.com/tallyhq/tally/pkg/api"
)

// LogSink writes notifications to the structured log. It is the default
// sink when no delivery channel is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "notify")}
}

func (s *LogSink) Notify(_ context.Context, n api.Notification) {
	s.logger.Info("notification",
		"kind", n.Kind,
		"subject", n.Subject,
		"message", n.Message,
	)
}

// WebhookSink POSTs notifications as JSON to a configured URL.
type WebhookSink struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewWebhookSink(url string, logger *slog.Logger) *WebhookSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With("component", "notify"),
	}
}

func (s *WebhookSink) Notify(ctx context.Context, n api.Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("encoding notification", "error", err)
		return
	}

	err = retry.Do(
		func() error { return s.post(ctx, body) },
		retry.Attempts(3),
		retry.Delay(1*time.Second),
		retry.Context(ctx),
	)
	if err != nil {
		s.logger.Error("webhook delivery failed",
			"kind", n.Kind,
			"url", s.url,
			"error", err,
		)
	}
}

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

// Multi fans a notification out to every sink.
type Multi []api.Sink

func (m Multi) Notify(ctx context.Context, n api.Notification) {
	for _, s := range m {
		s.Notify(ctx, n)
	}
}

var (
	_ api.Sink = (*LogSink)(nil)
	_ api.Sink = (*WebhookSink)(nil)
	_ api.Sink = (Multi)(nil)
)

package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"NewsSentinel/internal/model"
)

// SlackNotifier posts messages to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewSlackNotifier creates a notifier for the given webhook URL.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendText posts a plain message with bounded retry.
func (s *SlackNotifier) SendText(ctx context.Context, text string) error {
	payload := map[string]string{"text": text}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("slack webhook: status %d, body: %s", resp.StatusCode, string(respBody))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

// SendCycleSummary posts a formatted cycle result.
func (s *SlackNotifier) SendCycleSummary(ctx context.Context, summary *model.CycleSummary) error {
	return s.SendText(ctx, FormatCycleSummary(summary))
}

// SendDailyReport posts a formatted end-of-day report.
func (s *SlackNotifier) SendDailyReport(ctx context.Context, report *model.DailyReport) error {
	return s.SendText(ctx, FormatDailyReport(report))
}

// SendError posts an error alert.
func (s *SlackNotifier) SendError(ctx context.Context, kind, message string) error {
	return s.SendText(ctx, fmt.Sprintf(":rotating_light: *%s failed*\n%s", kind, message))
}

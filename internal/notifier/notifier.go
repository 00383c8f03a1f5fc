package notifier

import (
	"context"

	"NewsSentinel/internal/model"
)

// Notifier delivers cycle and daily summaries. Delivery failure never
// affects trading state; callers log and move on.
type Notifier interface {
	SendCycleSummary(ctx context.Context, summary *model.CycleSummary) error
	SendDailyReport(ctx context.Context, report *model.DailyReport) error
	SendError(ctx context.Context, kind, message string) error
	SendText(ctx context.Context, text string) error
}

// NoopNotifier is used when Slack is not configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) SendCycleSummary(_ context.Context, _ *model.CycleSummary) error { return nil }
func (n *NoopNotifier) SendDailyReport(_ context.Context, _ *model.DailyReport) error   { return nil }
func (n *NoopNotifier) SendError(_ context.Context, _, _ string) error                  { return nil }
func (n *NoopNotifier) SendText(_ context.Context, _ string) error                      { return nil }

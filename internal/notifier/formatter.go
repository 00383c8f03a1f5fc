package notifier

import (
	"fmt"
	"strings"

	"NewsSentinel/internal/model"
)

// FormatCycleSummary renders one analysis cycle for Slack.
func FormatCycleSummary(s *model.CycleSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(":newspaper: *Analysis cycle* | %s | %s\n\n",
		s.Trigger, s.StartedAt.Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("Observations: %d", s.Observations))
	if s.Dropped > 0 {
		b.WriteString(fmt.Sprintf(" (%d dropped)", s.Dropped))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Trending: %d | Emerging: %d\n", s.Trending, s.Emerging))
	b.WriteString(fmt.Sprintf("Signals: %d\n\n", s.Signals))

	b.WriteString(fmt.Sprintf("Orders — approved: %d, rejected: %d", s.Approved, s.Rejected))
	if s.HaltedCount > 0 {
		b.WriteString(fmt.Sprintf(", halted: %d", s.HaltedCount))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Legs — filled: %d, failed: %d\n", s.LegsFilled, s.LegsFailed))

	if s.RiskHalted {
		b.WriteString("\n:octagonal_sign: *Trading halted for the day* (loss limit)\n")
	}
	if s.Error != "" {
		b.WriteString(fmt.Sprintf("\n:warning: %s\n", s.Error))
	}
	return b.String()
}

// FormatDailyReport renders the end-of-day summary for Slack.
func FormatDailyReport(r *model.DailyReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(":bar_chart: *Daily report* | %s\n\n", r.Date))
	b.WriteString(fmt.Sprintf("Cycles run: %d\n", len(r.Cycles)))
	b.WriteString(fmt.Sprintf("Trades executed: %d\n", r.TradesExecuted))
	b.WriteString(fmt.Sprintf("Realized P&L: %+.2f%%\n", r.RealizedPnlRatio*100))

	var signals, filled, failed int
	for _, c := range r.Cycles {
		signals += c.Signals
		filled += c.LegsFilled
		failed += c.LegsFailed
	}
	b.WriteString(fmt.Sprintf("Signals: %d | Legs filled: %d | Legs failed: %d\n", signals, filled, failed))

	if r.RiskHalted {
		b.WriteString("\n:octagonal_sign: Day ended in risk halt\n")
	}
	return b.String()
}

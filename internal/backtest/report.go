package backtest

import (
	"fmt"
	"strings"
)

// FormatReport renders a replay result for the console.
func FormatReport(r *Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Replay — %d trading days\n\n", r.Days))
	b.WriteString(fmt.Sprintf("Initial cash:  %.0f\n", r.InitialCash))
	b.WriteString(fmt.Sprintf("Final equity:  %.0f\n", r.FinalEquity))
	b.WriteString(fmt.Sprintf("Total return:  %+.2f%%\n", r.TotalReturn*100))
	b.WriteString(fmt.Sprintf("Max drawdown:  %.2f%%\n\n", r.MaxDrawdown*100))

	b.WriteString(fmt.Sprintf("Signals: %d | Orders — approved: %d, rejected: %d\n", r.Signals, r.Approved, r.Rejected))
	b.WriteString(fmt.Sprintf("Legs — filled: %d, failed: %d\n", r.LegsFilled, r.LegsFailed))
	if r.Dropped > 0 {
		b.WriteString(fmt.Sprintf("Observations dropped: %d\n", r.Dropped))
	}

	if len(r.Curve) > 0 {
		b.WriteString("\nEquity curve:\n")
		for _, p := range r.Curve {
			b.WriteString(fmt.Sprintf("  %s  %.0f\n", p.Date, p.Equity))
		}
	}
	return b.String()
}

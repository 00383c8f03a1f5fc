package model

import "time"

// CycleSummary aggregates one analysis cycle's outcome. Produced even on
// partial failure so every cycle is reportable.
type CycleSummary struct {
	CycleID      string
	Trigger      TriggerType
	StartedAt    time.Time
	FinishedAt   time.Time
	Observations int
	Dropped      int // observations that failed validation
	Trending     int
	Emerging     int
	Signals      int
	Approved     int
	Rejected     int
	HaltedCount  int // signals refused because of a risk halt
	LegsFilled   int
	LegsFailed   int
	RiskHalted   bool // halt state at end of cycle
	Error        string
}

// DailyReport aggregates the day's cycles plus closing risk stats for the
// notification collaborator.
type DailyReport struct {
	Date             string
	Cycles           []CycleSummary
	TradesExecuted   int
	RealizedPnlRatio float64
	RiskHalted       bool
}

package model

import "time"

// Direction is the side of a proposed trade.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// TriggerType indicates which schedule point started a cycle.
type TriggerType string

const (
	TriggerMorning     TriggerType = "MORNING"
	TriggerIntraday    TriggerType = "INTRADAY"
	TriggerDailyReport TriggerType = "DAILY_REPORT"
	TriggerRiskReset   TriggerType = "RISK_RESET"
	TriggerManual      TriggerType = "MANUAL"
)

// Signal is a directional trade proposal for one instrument, derived from
// trend and sentiment evidence. At most one signal per instrument-direction
// pair exists within a cycle.
type Signal struct {
	Instrument  string
	Direction   Direction
	Strength    float64 // 0.0 ~ 1.0, normalized distance from threshold
	Keywords    []string
	Mentions    int
	Sentiment   float64
	Forced      bool // stop-loss / take-profit override, bypasses sentiment gates
	Reason      string
	GeneratedAt time.Time
}

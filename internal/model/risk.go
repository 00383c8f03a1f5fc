package model

import "time"

// RiskState tracks intraday trading limits. Mutated only by the risk
// manager; reset only by the explicit daily risk-reset trigger.
type RiskState struct {
	Date             string             `json:"date"`
	TradesExecuted   int                `json:"trades_executed"`
	RealizedPnlRatio float64            `json:"realized_pnl_ratio"`
	ExposureRatio    map[string]float64 `json:"exposure_ratio"`
	HaltedForDay     bool               `json:"halted_for_day"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

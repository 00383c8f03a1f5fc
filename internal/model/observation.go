package model

import "time"

// KeywordObservation is one cycle's aggregated view of a single keyword:
// how often it was mentioned across the collected articles and the average
// sentiment of those mentions. Immutable after creation.
type KeywordObservation struct {
	Keyword    string
	Mentions   int
	Sentiment  float64 // -1.0 ~ 1.0
	ArticleIDs []string
	ObservedAt time.Time
}

// TrendStatus classifies a keyword's mention trajectory.
type TrendStatus string

const (
	TrendStable   TrendStatus = "stable"
	TrendTrending TrendStatus = "trending"
	TrendEmerging TrendStatus = "emerging"
)

// TrendClassification is the per-cycle trend verdict for a keyword.
// Derived from history every cycle, never persisted.
type TrendClassification struct {
	Keyword  string
	Status   TrendStatus
	Velocity float64 // today's count / trailing average, 0 when no history
	Mentions int
}

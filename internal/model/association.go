package model

import "time"

// AssociationSource marks how a keyword-instrument link was created.
type AssociationSource string

const (
	SourceSeed    AssociationSource = "seed"
	SourceLearned AssociationSource = "learned"
)

// Association links a keyword to an instrument with a confidence weight.
// Seed associations come from the static mapping file and never decay
// below their configured weight; learned ones decay daily and are evicted
// once they fall under the decay floor.
type Association struct {
	Keyword     string
	Instrument  string
	Weight      float64 // 0.0 ~ 1.0
	Source      AssociationSource
	LastUpdated time.Time
}

// InstrumentCandidate is one resolved (keyword, instrument) pair with the
// effective confidence, produced by the dynamic mapper for signal generation.
type InstrumentCandidate struct {
	Keyword    string
	Instrument string
	Confidence float64
}

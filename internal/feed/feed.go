package feed

import (
	"context"
	"errors"
	"unicode/utf8"

	"NewsSentinel/internal/model"
)

// ErrDataUnavailable signals that no news input could be produced this
// cycle. The pipeline degrades to an empty-signal cycle, not a failure.
var ErrDataUnavailable = errors.New("news data unavailable")

// Snapshot is one cycle's worth of extracted news input: aggregated
// keyword observations plus the instruments mentioned alongside each
// keyword, used for association learning.
type Snapshot struct {
	Observations       []model.KeywordObservation
	InstrumentMentions map[string][]string // keyword -> co-occurring instrument IDs
}

// Provider supplies extracted (keyword, mentions, sentiment) tuples. The
// actual fetching, morphological extraction, and model inference live
// behind this interface; an empty snapshot is a valid result.
type Provider interface {
	Collect(ctx context.Context) (*Snapshot, error)
	Name() string
}

// Sanitize drops malformed observations (out-of-range sentiment, empty or
// single-character keywords, non-positive mentions) and returns the clean
// set plus the dropped count. One bad observation never rejects the batch.
func Sanitize(obs []model.KeywordObservation) ([]model.KeywordObservation, int) {
	clean := make([]model.KeywordObservation, 0, len(obs))
	dropped := 0
	for _, o := range obs {
		// Rune count, not bytes: keywords are frequently CJK.
		if utf8.RuneCountInString(o.Keyword) < 2 || o.Mentions <= 0 || o.Sentiment < -1 || o.Sentiment > 1 {
			dropped++
			continue
		}
		clean = append(clean, o)
	}
	return clean, dropped
}

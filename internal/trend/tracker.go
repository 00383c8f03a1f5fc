package trend

import (
	"time"

	"github.com/rs/zerolog"

	"NewsSentinel/internal/model"
	"NewsSentinel/internal/store"
)

const dateLayout = "2006-01-02"

// Config holds trend classification parameters.
type Config struct {
	WindowDays  int     // trailing history window, excluding today
	TrendFactor float64 // today must exceed factor x trailing average (strictly)
	MinMentions int     // absolute floor below which nothing trends
}

// Tracker classifies keywords against their mention history and appends
// the current cycle's counts into the trend store.
type Tracker struct {
	store *store.TrendStore
	cfg   Config
	log   zerolog.Logger
}

// NewTracker creates a Tracker bound to a trend store.
func NewTracker(ts *store.TrendStore, cfg Config, log zerolog.Logger) *Tracker {
	return &Tracker{store: ts, cfg: cfg, log: log.With().Str("component", "trend").Logger()}
}

// Classify derives a trend classification for every observed keyword, then
// appends today's counts under the cycle's idempotency marker. Re-running
// with the same cycle ID never double-counts. A broken history for one
// keyword downgrades only that keyword, never the batch.
func (t *Tracker) Classify(cycleID string, now time.Time, obs []model.KeywordObservation) ([]model.TrendClassification, error) {
	today := now.Format(dateLayout)
	from := now.AddDate(0, 0, -t.cfg.WindowDays).Format(dateLayout)

	out := make([]model.TrendClassification, 0, len(obs))
	for _, o := range obs {
		cls := model.TrendClassification{
			Keyword:  o.Keyword,
			Status:   model.TrendStable,
			Mentions: o.Mentions,
		}

		totals, err := t.store.DailyTotals(o.Keyword, from, today)
		if err != nil {
			// Treat unreadable history as absent; the keyword can still
			// emerge, and the rest of the batch proceeds.
			t.log.Warn().Err(err).Str("keyword", o.Keyword).Msg("history lookup failed, treating as no history")
			totals = nil
		}

		switch {
		case len(totals) == 0:
			if o.Mentions >= t.cfg.MinMentions {
				cls.Status = model.TrendEmerging
			}
		default:
			sum := 0
			for _, c := range totals {
				sum += c
			}
			avg := float64(sum) / float64(len(totals))
			if avg > 0 {
				cls.Velocity = float64(o.Mentions) / avg
			}
			if float64(o.Mentions) > t.cfg.TrendFactor*avg && o.Mentions >= t.cfg.MinMentions {
				cls.Status = model.TrendTrending
			}
		}
		out = append(out, cls)
	}

	counts := make(map[string]int, len(obs))
	for _, o := range obs {
		counts[o.Keyword] += o.Mentions
	}
	applied, err := t.store.AppendCounts(today, cycleID, now.Hour(), counts)
	if err != nil {
		return nil, err
	}
	if !applied {
		t.log.Warn().Str("cycle_id", cycleID).Msg("cycle counts already appended, skipping")
	}

	return out, nil
}

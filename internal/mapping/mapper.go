package mapping

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"NewsSentinel/internal/model"
	"NewsSentinel/internal/store"
)

const dateLayout = "2006-01-02"

// Config holds association learning parameters.
type Config struct {
	LearningRate float64 // EMA step toward 1 on reinforcement
	DecayFactor  float64 // daily multiplier for unreinforced learned weights
	DecayFloor   float64 // learned weights below this are evicted
}

// Mapper resolves trending keywords to candidate instruments and learns
// new keyword-instrument associations from co-occurrence.
type Mapper struct {
	store *store.AssociationStore
	cfg   Config
	log   zerolog.Logger
}

// NewMapper creates a Mapper bound to an association store.
func NewMapper(as *store.AssociationStore, cfg Config, log zerolog.Logger) *Mapper {
	return &Mapper{store: as, cfg: cfg, log: log.With().Str("component", "mapping").Logger()}
}

// Resolve maps trending and emerging keywords to instrument candidates.
// When a pair has both a seed and a learned weight, the seed acts as a
// floor: effective confidence is the larger of the two. Stable keywords
// are skipped; an unresolvable keyword simply contributes nothing.
func (m *Mapper) Resolve(classifications []model.TrendClassification) ([]model.InstrumentCandidate, error) {
	var out []model.InstrumentCandidate
	for _, cls := range classifications {
		if cls.Status != model.TrendTrending && cls.Status != model.TrendEmerging {
			continue
		}

		assocs, err := m.store.Lookup(cls.Keyword)
		if err != nil {
			return nil, err
		}

		best := make(map[string]float64)
		for _, a := range assocs {
			if a.Weight < m.cfg.DecayFloor && a.Source == model.SourceLearned {
				continue
			}
			if a.Weight > best[a.Instrument] {
				best[a.Instrument] = a.Weight
			}
		}
		for instrument, confidence := range best {
			out = append(out, model.InstrumentCandidate{
				Keyword:    cls.Keyword,
				Instrument: instrument,
				Confidence: confidence,
			})
		}
	}

	// Deterministic output order for downstream aggregation and tests.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Keyword != out[j].Keyword {
			return out[i].Keyword < out[j].Keyword
		}
		return out[i].Instrument < out[j].Instrument
	})
	return out, nil
}

// Learn reinforces the association for every keyword-instrument pair that
// co-occurred this cycle.
func (m *Mapper) Learn(now time.Time, mentions map[string][]string) error {
	date := now.Format(dateLayout)
	for keyword, instruments := range mentions {
		seen := make(map[string]bool, len(instruments))
		for _, instrument := range instruments {
			if instrument == "" || seen[instrument] {
				continue
			}
			seen[instrument] = true
			if err := m.store.Reinforce(keyword, instrument, m.cfg.LearningRate, date); err != nil {
				return err
			}
			m.log.Debug().Str("keyword", keyword).Str("instrument", instrument).Msg("association reinforced")
		}
	}
	return nil
}

// DecayDaily applies the daily decay pass. The store guarantees it runs at
// most once per date, so multi-cycle days never over-decay.
func (m *Mapper) DecayDaily(now time.Time) error {
	applied, evicted, err := m.store.ApplyDecay(now.Format(dateLayout), m.cfg.DecayFactor, m.cfg.DecayFloor)
	if err != nil {
		return err
	}
	if applied && evicted > 0 {
		m.log.Info().Int("evicted", evicted).Msg("evicted stale learned associations")
	}
	return nil
}

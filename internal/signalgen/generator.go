package signalgen

import (
	"sort"
	"time"

	"NewsSentinel/internal/model"
)

// Config holds signal thresholds.
type Config struct {
	BuyThreshold  float64 // aggregate sentiment at or above emits buy
	SellThreshold float64 // aggregate sentiment at or below emits sell
	MinMentions   int
	MaxSignals    int // cap on emitted signals per cycle, strongest first
}

// Generator synthesizes directional trade signals from trend
// classifications, resolved instrument candidates, and sentiment.
type Generator struct {
	cfg Config
}

// NewGenerator creates a Generator.
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

type aggregate struct {
	instrument   string
	sentimentSum float64 // confidence-weighted
	confSum      float64
	mentions     int
	keywords     []string
}

// Generate emits at most one signal per instrument. Sentiment across an
// instrument's supporting keywords is averaged weighted by confidence;
// instruments satisfying neither threshold produce nothing, which is a
// valid no-action outcome.
func (g *Generator) Generate(
	classifications []model.TrendClassification,
	candidates []model.InstrumentCandidate,
	observations []model.KeywordObservation,
	now time.Time,
) []model.Signal {
	byKeyword := make(map[string]model.KeywordObservation, len(observations))
	for _, o := range observations {
		byKeyword[o.Keyword] = o
	}
	active := make(map[string]bool, len(classifications))
	for _, cls := range classifications {
		if cls.Status == model.TrendTrending || cls.Status == model.TrendEmerging {
			active[cls.Keyword] = true
		}
	}

	aggs := make(map[string]*aggregate)
	for _, cand := range candidates {
		if !active[cand.Keyword] {
			continue
		}
		obs, ok := byKeyword[cand.Keyword]
		if !ok {
			continue
		}
		agg := aggs[cand.Instrument]
		if agg == nil {
			agg = &aggregate{instrument: cand.Instrument}
			aggs[cand.Instrument] = agg
		}
		agg.sentimentSum += obs.Sentiment * cand.Confidence
		agg.confSum += cand.Confidence
		agg.mentions += obs.Mentions
		agg.keywords = append(agg.keywords, cand.Keyword)
	}

	var signals []model.Signal
	for _, agg := range aggs {
		if agg.confSum <= 0 || agg.mentions < g.cfg.MinMentions {
			continue
		}
		sentiment := agg.sentimentSum / agg.confSum

		var direction model.Direction
		var strength float64
		switch {
		case sentiment >= g.cfg.BuyThreshold:
			direction = model.DirectionBuy
			strength = normalize(sentiment-g.cfg.BuyThreshold, 1-g.cfg.BuyThreshold)
		case sentiment <= g.cfg.SellThreshold:
			direction = model.DirectionSell
			strength = normalize(g.cfg.SellThreshold-sentiment, 1+g.cfg.SellThreshold)
		default:
			continue
		}

		sort.Strings(agg.keywords)
		signals = append(signals, model.Signal{
			Instrument:  agg.instrument,
			Direction:   direction,
			Strength:    strength,
			Keywords:    agg.keywords,
			Mentions:    agg.mentions,
			Sentiment:   sentiment,
			Reason:      "news sentiment",
			GeneratedAt: now,
		})
	}

	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Strength != signals[j].Strength {
			return signals[i].Strength > signals[j].Strength
		}
		return signals[i].Instrument < signals[j].Instrument
	})
	if g.cfg.MaxSignals > 0 && len(signals) > g.cfg.MaxSignals {
		signals = signals[:g.cfg.MaxSignals]
	}
	return signals
}

func normalize(distance, span float64) float64 {
	if span <= 0 {
		return 1
	}
	v := distance / span
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

package signalgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/model"
)

var testCfg = Config{BuyThreshold: 0.3, SellThreshold: -0.2, MinMentions: 3, MaxSignals: 5}

func trending(keyword string, mentions int, sentiment float64) (model.TrendClassification, model.KeywordObservation) {
	return model.TrendClassification{Keyword: keyword, Status: model.TrendTrending, Mentions: mentions},
		model.KeywordObservation{Keyword: keyword, Mentions: mentions, Sentiment: sentiment}
}

func TestGenerate_BuyAboveThreshold(t *testing.T) {
	g := NewGenerator(testCfg)
	cls, obs := trending("semiconductor", 12, 0.4)

	sigs := g.Generate(
		[]model.TrendClassification{cls},
		[]model.InstrumentCandidate{{Keyword: "semiconductor", Instrument: "8035", Confidence: 0.8}},
		[]model.KeywordObservation{obs},
		time.Now(),
	)
	require.Len(t, sigs, 1)
	assert.Equal(t, "8035", sigs[0].Instrument)
	assert.Equal(t, model.DirectionBuy, sigs[0].Direction)
	assert.InDelta(t, 0.4, sigs[0].Sentiment, 1e-9)
	// Strength is distance past the threshold, normalized over the headroom.
	assert.InDelta(t, (0.4-0.3)/(1-0.3), sigs[0].Strength, 1e-9)
	assert.False(t, sigs[0].Forced)
}

func TestGenerate_SellBelowThreshold(t *testing.T) {
	g := NewGenerator(testCfg)
	cls, obs := trending("scandal", 20, -0.6)

	sigs := g.Generate(
		[]model.TrendClassification{cls},
		[]model.InstrumentCandidate{{Keyword: "scandal", Instrument: "7203", Confidence: 0.5}},
		[]model.KeywordObservation{obs},
		time.Now(),
	)
	require.Len(t, sigs, 1)
	assert.Equal(t, model.DirectionSell, sigs[0].Direction)
}

func TestGenerate_NeutralSentimentIsNoAction(t *testing.T) {
	g := NewGenerator(testCfg)
	cls, obs := trending("earnings", 15, 0.1)

	sigs := g.Generate(
		[]model.TrendClassification{cls},
		[]model.InstrumentCandidate{{Keyword: "earnings", Instrument: "8306", Confidence: 0.9}},
		[]model.KeywordObservation{obs},
		time.Now(),
	)
	assert.Empty(t, sigs)
}

func TestGenerate_MentionFloorGatesSignal(t *testing.T) {
	g := NewGenerator(testCfg)
	cls, obs := trending("thin", 2, 0.9)

	sigs := g.Generate(
		[]model.TrendClassification{cls},
		[]model.InstrumentCandidate{{Keyword: "thin", Instrument: "4502", Confidence: 0.7}},
		[]model.KeywordObservation{obs},
		time.Now(),
	)
	assert.Empty(t, sigs)
}

func TestGenerate_OneSignalPerInstrument(t *testing.T) {
	g := NewGenerator(testCfg)
	cls1, obs1 := trending("ai", 10, 0.6)
	cls2, obs2 := trending("robotics", 8, 0.5)

	// Two keywords resolving to the same instrument merge into one signal
	// with confidence-weighted sentiment.
	sigs := g.Generate(
		[]model.TrendClassification{cls1, cls2},
		[]model.InstrumentCandidate{
			{Keyword: "ai", Instrument: "6501", Confidence: 0.8},
			{Keyword: "robotics", Instrument: "6501", Confidence: 0.4},
		},
		[]model.KeywordObservation{obs1, obs2},
		time.Now(),
	)
	require.Len(t, sigs, 1)
	assert.Equal(t, []string{"ai", "robotics"}, sigs[0].Keywords)
	want := (0.6*0.8 + 0.5*0.4) / (0.8 + 0.4)
	assert.InDelta(t, want, sigs[0].Sentiment, 1e-9)
	assert.Equal(t, 18, sigs[0].Mentions)
}

func TestGenerate_CapStrongestFirst(t *testing.T) {
	g := NewGenerator(Config{BuyThreshold: 0.3, SellThreshold: -0.2, MinMentions: 3, MaxSignals: 2})

	var classifications []model.TrendClassification
	var observations []model.KeywordObservation
	var candidates []model.InstrumentCandidate
	sentiments := map[string]float64{"a": 0.4, "b": 0.9, "c": 0.6}
	instruments := map[string]string{"a": "1001", "b": "1002", "c": "1003"}
	for kw, s := range sentiments {
		cls, obs := trending(kw, 10, s)
		classifications = append(classifications, cls)
		observations = append(observations, obs)
		candidates = append(candidates, model.InstrumentCandidate{Keyword: kw, Instrument: instruments[kw], Confidence: 0.8})
	}

	sigs := g.Generate(classifications, candidates, observations, time.Now())
	require.Len(t, sigs, 2)
	assert.Equal(t, "1002", sigs[0].Instrument)
	assert.Equal(t, "1003", sigs[1].Instrument)
}

func TestGenerate_StableKeywordCandidatesIgnored(t *testing.T) {
	g := NewGenerator(testCfg)

	sigs := g.Generate(
		[]model.TrendClassification{{Keyword: "ai", Status: model.TrendStable, Mentions: 10}},
		[]model.InstrumentCandidate{{Keyword: "ai", Instrument: "6501", Confidence: 0.8}},
		[]model.KeywordObservation{{Keyword: "ai", Mentions: 10, Sentiment: 0.9}},
		time.Now(),
	)
	assert.Empty(t, sigs)
}

package backtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/feed"
	"NewsSentinel/internal/mapping"
	"NewsSentinel/internal/model"
	"NewsSentinel/internal/risk"
	"NewsSentinel/internal/signalgen"
	"NewsSentinel/internal/store"
	"NewsSentinel/internal/trend"
)

func replayConfig() Config {
	return Config{
		Trend:    trend.Config{WindowDays: 7, TrendFactor: 2.0, MinMentions: 3},
		Mapping:  mapping.Config{LearningRate: 0.3, DecayFactor: 0.9, DecayFloor: 0.1},
		Strategy: signalgen.Config{BuyThreshold: 0.3, SellThreshold: -0.2, MinMentions: 3, MaxSignals: 5},
		Risk: risk.Config{
			MaxTradesPerDay:     10,
			DailyLossLimit:      -0.03,
			MaxSingleTradeRatio: 0.1,
			MaxHoldingRatio:     0.2,
			StopLossRate:        -0.05,
			TakeProfitRate:      0.10,
			SplitCount:          1,
		},
		InitialCash: 1_000_000,
	}
}

func day(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, date)
	require.NoError(t, err)
	return d
}

// A fresh keyword triggers a buy on its first day, the position is
// half-exited on a take-profit and fully exited on the next day's stop-loss,
// with association learning and decay running across the days.
func TestRun_MultiDayReplay(t *testing.T) {
	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "replay.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.AssociationStore().SeedAll([]model.Association{
		{Keyword: "반도체", Instrument: "6501", Weight: 0.8, Source: model.SourceSeed},
	}, "2026-01-05"))

	runner, err := NewRunner(db, dir, replayConfig(), zerolog.Nop())
	require.NoError(t, err)

	days := []DayInput{
		{
			Date: day(t, "2026-01-05"),
			Snapshot: &feed.Snapshot{
				Observations: []model.KeywordObservation{
					{Keyword: "반도체", Mentions: 12, Sentiment: 0.8, ObservedAt: day(t, "2026-01-05")},
				},
				InstrumentMentions: map[string][]string{"반도체": {"6501"}},
			},
			Quotes: map[string]float64{"6501": 100},
		},
		{Date: day(t, "2026-01-06"), Quotes: map[string]float64{"6501": 112}},
		{Date: day(t, "2026-01-07"), Quotes: map[string]float64{"6501": 94}},
	}

	result, err := runner.Run(context.Background(), days)
	require.NoError(t, err)

	// Day 1: emerging keyword, sentiment 0.8 -> buy. Single-trade cap limits
	// the notional to 100,000, so 1000 shares fill at 100.
	// Day 2: quote 112 is +12% -> take-profit sells half (500 at 112).
	// Day 3: quote 94 is -6% against the 100 average cost -> stop-loss
	// sells the remaining 500 at 94.
	assert.Equal(t, 3, result.Days)
	assert.Equal(t, 3, result.Signals)
	assert.Equal(t, 3, result.Approved)
	assert.Equal(t, 0, result.Rejected)
	assert.Equal(t, 3, result.LegsFilled)
	assert.Equal(t, 0, result.LegsFailed)
	assert.Equal(t, 0, result.Dropped)

	require.Len(t, result.Curve, 3)
	assert.InDelta(t, 1_000_000, result.Curve[0].Equity, 1e-6)
	assert.InDelta(t, 1_012_000, result.Curve[1].Equity, 1e-6)
	assert.InDelta(t, 1_003_000, result.Curve[2].Equity, 1e-6)

	assert.InDelta(t, 1_003_000, result.FinalEquity, 1e-6)
	assert.InDelta(t, 0.003, result.TotalReturn, 1e-9)
	assert.InDelta(t, 9_000.0/1_012_000.0, result.MaxDrawdown, 1e-9)

	// The co-occurrence on day 1 created a learned association, decayed on
	// each of the two following days. The seed weight is untouched.
	assocs, err := db.AssociationStore().Lookup("반도체")
	require.NoError(t, err)
	require.Len(t, assocs, 2)
	bySource := map[model.AssociationSource]float64{}
	for _, a := range assocs {
		bySource[a.Source] = a.Weight
	}
	assert.InDelta(t, 0.8, bySource[model.SourceSeed], 1e-9)
	assert.InDelta(t, 0.3*0.9*0.9, bySource[model.SourceLearned], 1e-9)
}

func TestRun_NoDays(t *testing.T) {
	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "replay.db"))
	require.NoError(t, err)
	defer db.Close()

	runner, err := NewRunner(db, dir, replayConfig(), zerolog.Nop())
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Days)
	assert.InDelta(t, 1_000_000, result.FinalEquity, 1e-6)
	assert.InDelta(t, 0, result.TotalReturn, 1e-9)
}

func TestLoadDays_ParsesAndSortsArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	raw := `{
		"days": [
			{
				"date": "2026-01-06",
				"quotes": {"6501": 112},
				"observations": []
			},
			{
				"date": "2026-01-05",
				"quotes": {"6501": 100},
				"observations": [
					{
						"keyword": "반도체",
						"mentions": 12,
						"sentiment": 0.8,
						"article_ids": ["a1", "a2"],
						"instruments": ["6501"]
					}
				]
			}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	days, err := LoadDays(path)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "2026-01-05", days[0].Date.Format(dateLayout))
	assert.Equal(t, "2026-01-06", days[1].Date.Format(dateLayout))

	require.Len(t, days[0].Snapshot.Observations, 1)
	obs := days[0].Snapshot.Observations[0]
	assert.Equal(t, "반도체", obs.Keyword)
	assert.Equal(t, 12, obs.Mentions)
	assert.InDelta(t, 0.8, obs.Sentiment, 1e-9)
	assert.Equal(t, []string{"a1", "a2"}, obs.ArticleIDs)
	assert.Equal(t, days[0].Date, obs.ObservedAt)
	assert.Equal(t, []string{"6501"}, days[0].Snapshot.InstrumentMentions["반도체"])
	assert.InDelta(t, 100, days[0].Quotes["6501"], 1e-9)
}

func TestLoadDays_RejectsMalformedDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"days":[{"date":"01/05/2026"}]}`), 0o644))

	_, err := LoadDays(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "01/05/2026")
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(&Result{
		Days:        2,
		InitialCash: 1_000_000,
		FinalEquity: 1_012_000,
		TotalReturn: 0.012,
		MaxDrawdown: 0.004,
		Signals:     2,
		Approved:    2,
		LegsFilled:  2,
		Curve: []DayEquity{
			{Date: "2026-01-05", Equity: 1_000_000},
			{Date: "2026-01-06", Equity: 1_012_000},
		},
	})

	assert.Contains(t, out, "2 trading days")
	assert.Contains(t, out, "+1.20%")
	assert.Contains(t, out, "2026-01-06  1012000")
}

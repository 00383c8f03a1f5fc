package risk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/model"
)

var testCfg = Config{
	MaxTradesPerDay:     10,
	DailyLossLimit:      -0.03,
	MaxSingleTradeRatio: 0.1,
	MaxHoldingRatio:     0.2,
	StopLossRate:        -0.05,
	TakeProfitRate:      0.10,
	SplitCount:          3,
}

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "risk.json"), cfg, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func cashPortfolio(cash float64) *model.PortfolioState {
	return &model.PortfolioState{Cash: cash, Holdings: map[string]model.Holding{}}
}

func buySignal(instrument string, strength float64) model.Signal {
	return model.Signal{Instrument: instrument, Direction: model.DirectionBuy, Strength: strength}
}

func TestEvaluate_ApprovesAndSizesBuy(t *testing.T) {
	m := newTestManager(t, testCfg)
	pf := cashPortfolio(1_000_000)

	d := m.Evaluate(buySignal("8035", 1.0), pf, 100)
	require.Equal(t, OutcomeApproved, d.Outcome)
	// Full strength wants 20% of equity but the single-trade cap is 10%.
	assert.InDelta(t, 1_000_000*0.1/100, d.Quantity, 1e-9)
	assert.Equal(t, 3, d.Splits)
	assert.Equal(t, 1, m.State().TradesExecuted)
}

func TestEvaluate_TradeCountLimit(t *testing.T) {
	cfg := testCfg
	cfg.MaxTradesPerDay = 1
	m := newTestManager(t, cfg)
	pf := cashPortfolio(1_000_000)

	d := m.Evaluate(buySignal("8035", 0.5), pf, 100)
	require.Equal(t, OutcomeApproved, d.Outcome)

	d = m.Evaluate(buySignal("6501", 0.5), pf, 100)
	assert.Equal(t, OutcomeRejected, d.Outcome)
	assert.Equal(t, ReasonTradeCountLimit, d.Reason)
}

func TestEvaluate_DailyLossLimitHaltsAndPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "risk.json")
	today := time.Now().Format(dateLayout)

	// A day already 3.1% down, just past the -3% limit.
	seed := &model.RiskState{Date: today, RealizedPnlRatio: -0.031, ExposureRatio: map[string]float64{}}
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	m, err := NewManager(path, testCfg, zerolog.Nop())
	require.NoError(t, err)

	d := m.Evaluate(buySignal("8035", 0.5), cashPortfolio(1_000_000), 100)
	assert.Equal(t, OutcomeHalted, d.Outcome)
	assert.True(t, m.Halted())

	// The halt survives a restart.
	m2, err := NewManager(path, testCfg, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, m2.Halted())

	d = m2.Evaluate(buySignal("8035", 0.5), cashPortfolio(1_000_000), 100)
	assert.Equal(t, OutcomeHalted, d.Outcome)

	// Only the explicit reset lifts it.
	m2.ResetDaily(time.Now())
	assert.False(t, m2.Halted())
	d = m2.Evaluate(buySignal("8035", 0.5), cashPortfolio(1_000_000), 100)
	assert.Equal(t, OutcomeApproved, d.Outcome)
}

func TestEvaluate_PositionLimitBlocksBuyNotSell(t *testing.T) {
	m := newTestManager(t, testCfg)
	pf := &model.PortfolioState{
		Cash: 800_000,
		Holdings: map[string]model.Holding{
			// Position near 20% of equity already.
			"8035": {Quantity: 1900, AvgCost: 100, Price: 100},
		},
	}

	d := m.Evaluate(buySignal("8035", 1.0), pf, 100)
	assert.Equal(t, OutcomeRejected, d.Outcome)
	assert.Equal(t, ReasonPositionLimit, d.Reason)

	// Selling the same instrument is still allowed.
	d = m.Evaluate(model.Signal{Instrument: "8035", Direction: model.DirectionSell}, pf, 100)
	require.Equal(t, OutcomeApproved, d.Outcome)
	assert.InDelta(t, 1900.0/3, d.Quantity, 1e-9)
	assert.Equal(t, 1, d.Splits)
}

func TestEvaluate_SellQuantityByReason(t *testing.T) {
	m := newTestManager(t, testCfg)
	pf := &model.PortfolioState{
		Cash:     500_000,
		Holdings: map[string]model.Holding{"7203": {Quantity: 300, AvgCost: 100, Price: 100}},
	}

	d := m.Evaluate(model.Signal{Instrument: "7203", Direction: model.DirectionSell, Reason: ReasonStopLoss, Forced: true}, pf, 100)
	require.Equal(t, OutcomeApproved, d.Outcome)
	assert.InDelta(t, 300, d.Quantity, 1e-9)

	d = m.Evaluate(model.Signal{Instrument: "7203", Direction: model.DirectionSell, Reason: ReasonTakeProfit, Forced: true}, pf, 100)
	require.Equal(t, OutcomeApproved, d.Outcome)
	assert.InDelta(t, 150, d.Quantity, 1e-9)
}

func TestEvaluate_SellWithoutPositionRejected(t *testing.T) {
	m := newTestManager(t, testCfg)

	d := m.Evaluate(model.Signal{Instrument: "9999", Direction: model.DirectionSell}, cashPortfolio(100_000), 100)
	assert.Equal(t, OutcomeRejected, d.Outcome)
}

func TestForcedExits(t *testing.T) {
	m := newTestManager(t, testCfg)
	pf := &model.PortfolioState{
		Cash: 100_000,
		Holdings: map[string]model.Holding{
			"7203": {Quantity: 100, AvgCost: 100, Price: 94},  // -6%: stop-loss
			"8035": {Quantity: 100, AvgCost: 100, Price: 112}, // +12%: take-profit
			"6501": {Quantity: 100, AvgCost: 100, Price: 102}, // +2%: keep
		},
	}

	exits := m.ForcedExits(pf, time.Now())
	require.Len(t, exits, 2)

	assert.Equal(t, "7203", exits[0].Instrument)
	assert.Equal(t, ReasonStopLoss, exits[0].Reason)
	assert.True(t, exits[0].Forced)
	assert.InDelta(t, 1.0, exits[0].Strength, 1e-9)

	assert.Equal(t, "8035", exits[1].Instrument)
	assert.Equal(t, ReasonTakeProfit, exits[1].Reason)
}

func TestRecordResult_CounterNotRevertedOnFailedPlan(t *testing.T) {
	m := newTestManager(t, testCfg)
	pf := cashPortfolio(1_000_000)

	d := m.Evaluate(buySignal("8035", 0.5), pf, 100)
	require.Equal(t, OutcomeApproved, d.Outcome)
	require.Equal(t, 1, m.State().TradesExecuted)

	plan := &model.OrderPlan{
		Instrument: "8035",
		Direction:  model.DirectionBuy,
		Total:      d.Quantity,
		Legs: []model.OrderLeg{
			{Seq: 0, Quantity: d.Quantity, Status: model.LegFailed, Error: "rejected"},
		},
	}
	m.RecordResult(plan, pf)
	assert.Equal(t, 1, m.State().TradesExecuted)
	assert.Zero(t, m.State().ExposureRatio["8035"])
}

func TestRecordResult_SellAccumulatesRealizedPnl(t *testing.T) {
	m := newTestManager(t, testCfg)
	pf := &model.PortfolioState{
		Cash:     900_000,
		Holdings: map[string]model.Holding{"7203": {Quantity: 1000, AvgCost: 100, Price: 95}},
	}

	plan := &model.OrderPlan{
		Instrument: "7203",
		Direction:  model.DirectionSell,
		Total:      1000,
		Legs:       []model.OrderLeg{{Seq: 0, Quantity: 1000, Status: model.LegFilled, FillPrice: 95}},
	}
	m.RecordResult(plan, pf)

	equity := pf.Equity()
	assert.InDelta(t, (95.0-100.0)*1000/equity, m.State().RealizedPnlRatio, 1e-9)
}

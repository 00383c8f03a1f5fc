package backtest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"NewsSentinel/internal/brokerage"
	"NewsSentinel/internal/executor"
	"NewsSentinel/internal/feed"
	"NewsSentinel/internal/mapping"
	"NewsSentinel/internal/model"
	"NewsSentinel/internal/risk"
	"NewsSentinel/internal/signalgen"
	"NewsSentinel/internal/store"
	"NewsSentinel/internal/trend"
)

const dateLayout = "2006-01-02"

// DayInput is one replay day: the archived news snapshot plus that day's
// closing quotes.
type DayInput struct {
	Date     time.Time
	Snapshot *feed.Snapshot
	Quotes   map[string]float64
}

// Config bundles the pipeline parameters for a replay run.
type Config struct {
	Trend       trend.Config
	Mapping     mapping.Config
	Strategy    signalgen.Config
	Risk        risk.Config
	InitialCash float64
}

// DayEquity is one point of the equity curve.
type DayEquity struct {
	Date   string
	Equity float64
}

// Result aggregates a full replay run.
type Result struct {
	Days        int
	InitialCash float64
	FinalEquity float64
	TotalReturn float64
	MaxDrawdown float64
	Dropped     int
	Signals     int
	Approved    int
	Rejected    int
	LegsFilled  int
	LegsFailed  int
	Curve       []DayEquity
}

// Runner replays archived day snapshots through the live pipeline against
// a paper account. Each day runs one full cycle with that day's clock, so
// trend baselines and decay see exactly the history a live run would have
// had (no lookahead).
type Runner struct {
	tracker   *trend.Tracker
	mapper    *mapping.Mapper
	gen       *signalgen.Generator
	risk      *risk.Manager
	exec      *executor.Executor
	broker    *brokerage.PaperClient
	startCash float64
	log       zerolog.Logger
}

// NewRunner builds a replay pipeline over the given store. workDir holds
// the run's risk state file; callers should point both at a scratch
// location, never at the live data directory.
func NewRunner(db *store.DB, workDir string, cfg Config, log zerolog.Logger) (*Runner, error) {
	log = log.With().Str("component", "backtest").Logger()

	riskMgr, err := risk.NewManager(filepath.Join(workDir, "risk_state.json"), cfg.Risk, log)
	if err != nil {
		return nil, fmt.Errorf("init risk manager: %w", err)
	}

	broker := brokerage.NewPaperClient(cfg.InitialCash, nil)
	return &Runner{
		tracker:   trend.NewTracker(db.TrendStore(), cfg.Trend, log),
		mapper:    mapping.NewMapper(db.AssociationStore(), cfg.Mapping, log),
		gen:       signalgen.NewGenerator(cfg.Strategy),
		risk:      riskMgr,
		exec:      executor.NewExecutor(broker, executor.Config{MaxRetries: 1, InitialInterval: time.Millisecond}, log),
		broker:    broker,
		startCash: cfg.InitialCash,
		log:       log,
	}, nil
}

// Run replays the days in order and returns the aggregated result. Days
// must be sorted ascending by date; the caller owns that ordering.
func (r *Runner) Run(ctx context.Context, days []DayInput) (*Result, error) {
	result := &Result{Days: len(days)}
	peak := 0.0

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for instrument, price := range day.Quotes {
			r.broker.SetQuote(instrument, price)
		}
		r.risk.ResetDaily(day.Date)

		if err := r.runDay(ctx, day, result); err != nil {
			return nil, fmt.Errorf("replay %s: %w", day.Date.Format(dateLayout), err)
		}

		pf, err := r.broker.GetPortfolio(ctx)
		if err != nil {
			return nil, err
		}
		equity := pf.Equity()
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak; dd > result.MaxDrawdown {
				result.MaxDrawdown = dd
			}
		}
		result.Curve = append(result.Curve, DayEquity{Date: day.Date.Format(dateLayout), Equity: equity})
	}

	result.InitialCash = r.startCash
	if len(result.Curve) > 0 {
		result.FinalEquity = result.Curve[len(result.Curve)-1].Equity
	} else {
		result.FinalEquity = result.InitialCash
	}
	if result.InitialCash > 0 {
		result.TotalReturn = result.FinalEquity/result.InitialCash - 1
	}
	return result, nil
}

func (r *Runner) runDay(ctx context.Context, day DayInput, result *Result) error {
	snap := day.Snapshot
	if snap == nil {
		snap = &feed.Snapshot{}
	}
	obs, dropped := feed.Sanitize(snap.Observations)
	result.Dropped += dropped

	cycleID := "replay-" + day.Date.Format(dateLayout)
	classifications, err := r.tracker.Classify(cycleID, day.Date, obs)
	if err != nil {
		return err
	}
	if err := r.mapper.DecayDaily(day.Date); err != nil {
		return err
	}
	if err := r.mapper.Learn(day.Date, snap.InstrumentMentions); err != nil {
		return err
	}
	candidates, err := r.mapper.Resolve(classifications)
	if err != nil {
		return err
	}
	signals := r.gen.Generate(classifications, candidates, obs, day.Date)

	pf, err := r.broker.GetPortfolio(ctx)
	if err != nil {
		return err
	}

	forced := r.risk.ForcedExits(pf, day.Date)
	overridden := make(map[string]bool, len(forced))
	for _, sig := range forced {
		overridden[sig.Instrument] = true
	}
	merged := forced
	for _, sig := range signals {
		if !overridden[sig.Instrument] {
			merged = append(merged, sig)
		}
	}
	result.Signals += len(merged)

	var plans []*model.OrderPlan
	for _, sig := range merged {
		price, ok := day.Quotes[sig.Instrument]
		if !ok {
			result.Rejected++
			r.log.Debug().Str("instrument", sig.Instrument).Msg("no replay quote, signal dropped")
			continue
		}
		decision := r.risk.Evaluate(sig, pf, price)
		switch decision.Outcome {
		case risk.OutcomeApproved:
			result.Approved++
			plans = append(plans, executor.BuildPlan(sig.Instrument, sig.Direction, decision.Quantity, decision.Splits))
		case risk.OutcomeRejected:
			result.Rejected++
		}
	}

	r.exec.Execute(ctx, plans)
	for _, plan := range plans {
		result.LegsFilled += plan.Filled()
		result.LegsFailed += plan.Failed()
		r.risk.RecordResult(plan, pf)
	}
	return nil
}

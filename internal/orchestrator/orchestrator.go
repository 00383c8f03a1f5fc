package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"NewsSentinel/internal/brokerage"
	"NewsSentinel/internal/executor"
	"NewsSentinel/internal/feed"
	"NewsSentinel/internal/mapping"
	"NewsSentinel/internal/model"
	"NewsSentinel/internal/notifier"
	"NewsSentinel/internal/risk"
	"NewsSentinel/internal/signalgen"
	"NewsSentinel/internal/trend"
)

const dateLayout = "2006-01-02"

// State of the orchestrator's trading-day machine.
type State string

const (
	StateIdle             State = "idle"
	StateAnalysisRunning  State = "analysis-running"
	StateReportPending    State = "report-pending"
	StateRiskResetPending State = "risk-reset-pending"
)

// Orchestrator sequences the pipeline per schedule trigger. Triggers are
// single-flight: one arriving while a cycle runs is rejected and logged as
// skipped, never queued.
type Orchestrator struct {
	mu    sync.Mutex
	state State

	feed     feed.Provider
	tracker  *trend.Tracker
	mapper   *mapping.Mapper
	gen      *signalgen.Generator
	risk     *risk.Manager
	exec     *executor.Executor
	broker   brokerage.Client
	notifier notifier.Notifier
	log      zerolog.Logger

	cycleTimeout time.Duration

	sumMu     sync.Mutex
	summaries []model.CycleSummary
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Feed     feed.Provider
	Tracker  *trend.Tracker
	Mapper   *mapping.Mapper
	Gen      *signalgen.Generator
	Risk     *risk.Manager
	Exec     *executor.Executor
	Broker   brokerage.Client
	Notifier notifier.Notifier
}

// New creates an Orchestrator in the Idle state.
func New(deps Deps, cycleTimeout time.Duration, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		state:        StateIdle,
		feed:         deps.Feed,
		tracker:      deps.Tracker,
		mapper:       deps.Mapper,
		gen:          deps.Gen,
		risk:         deps.Risk,
		exec:         deps.Exec,
		broker:       deps.Broker,
		notifier:     deps.Notifier,
		log:          log.With().Str("component", "orchestrator").Logger(),
		cycleTimeout: cycleTimeout,
	}
}

// State returns the current machine state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) begin(next State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return false
	}
	o.state = next
	return true
}

func (o *Orchestrator) finish() {
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
}

// HandleTrigger dispatches a schedule firing. Returns false when the
// trigger was skipped because another one is still running.
func (o *Orchestrator) HandleTrigger(ctx context.Context, trigger model.TriggerType) bool {
	switch trigger {
	case model.TriggerMorning, model.TriggerIntraday, model.TriggerManual:
		if !o.begin(StateAnalysisRunning) {
			o.log.Warn().Str("trigger", string(trigger)).Msg("trigger skipped, cycle already running")
			return false
		}
		defer o.finish()
		o.runAnalysis(ctx, trigger)
	case model.TriggerDailyReport:
		if !o.begin(StateReportPending) {
			o.log.Warn().Str("trigger", string(trigger)).Msg("report trigger skipped, cycle already running")
			return false
		}
		defer o.finish()
		o.runDailyReport(ctx)
	case model.TriggerRiskReset:
		if !o.begin(StateRiskResetPending) {
			o.log.Warn().Str("trigger", string(trigger)).Msg("reset trigger skipped, cycle already running")
			return false
		}
		defer o.finish()
		o.risk.ResetDaily(time.Now())
	default:
		o.log.Error().Str("trigger", string(trigger)).Msg("unknown trigger")
		return false
	}
	return true
}

func (o *Orchestrator) runAnalysis(parent context.Context, trigger model.TriggerType) {
	ctx, cancel := context.WithTimeout(parent, o.cycleTimeout)
	defer cancel()

	now := time.Now()
	summary := model.CycleSummary{
		CycleID:   uuid.NewString(),
		Trigger:   trigger,
		StartedAt: now,
	}
	log := o.log.With().Str("cycle_id", summary.CycleID).Logger()
	log.Info().Str("trigger", string(trigger)).Msg("analysis cycle started")

	defer func() {
		summary.FinishedAt = time.Now()
		summary.RiskHalted = o.risk.Halted()
		o.record(summary)
		if summary.Error != "" {
			if err := o.notifier.SendError(ctx, "analysis cycle", summary.Error); err != nil {
				log.Warn().Err(err).Msg("error alert delivery failed")
			}
		}
		if err := o.notifier.SendCycleSummary(ctx, &summary); err != nil {
			log.Warn().Err(err).Msg("cycle summary delivery failed")
		}
		log.Info().
			Int("observations", summary.Observations).
			Int("signals", summary.Signals).
			Int("approved", summary.Approved).
			Int("legs_filled", summary.LegsFilled).
			Msg("analysis cycle finished")
	}()

	// 1. Collect news input; an unreachable source degrades to an empty cycle.
	snap, err := o.feed.Collect(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("news collection failed, running empty cycle")
		snap = &feed.Snapshot{}
	}
	obs, dropped := feed.Sanitize(snap.Observations)
	summary.Observations = len(obs)
	summary.Dropped = dropped

	// 2. Trend classification + history append.
	classifications, err := o.tracker.Classify(summary.CycleID, now, obs)
	if err != nil {
		summary.Error = "trend store: " + err.Error()
		log.Error().Err(err).Msg("trend classification aborted cycle")
		return
	}
	for _, cls := range classifications {
		switch cls.Status {
		case model.TrendTrending:
			summary.Trending++
		case model.TrendEmerging:
			summary.Emerging++
		}
	}

	// 3. Association maintenance: decay before reinforcement, both at most
	// daily for decay and per cycle for learning.
	if err := o.mapper.DecayDaily(now); err != nil {
		summary.Error = "association store: " + err.Error()
		log.Error().Err(err).Msg("association decay aborted cycle")
		return
	}
	if err := o.mapper.Learn(now, snap.InstrumentMentions); err != nil {
		summary.Error = "association store: " + err.Error()
		log.Error().Err(err).Msg("association learning aborted cycle")
		return
	}

	// 4. Resolve and generate signals.
	candidates, err := o.mapper.Resolve(classifications)
	if err != nil {
		summary.Error = "association store: " + err.Error()
		log.Error().Err(err).Msg("resolution aborted cycle")
		return
	}
	signals := o.gen.Generate(classifications, candidates, obs, now)

	// 5. Portfolio snapshot; without it no orders can be sized safely.
	portfolio, err := o.broker.GetPortfolio(ctx)
	if err != nil {
		summary.Signals = len(signals)
		summary.Error = "brokerage: " + err.Error()
		log.Error().Err(err).Msg("portfolio fetch failed, skipping trading")
		return
	}

	// 6. Forced exits take precedence over sentiment signals for the same
	// instrument.
	forced := o.risk.ForcedExits(portfolio, now)
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
	summary.Signals = len(merged)

	// 7. Risk gate and execution.
	var plans []*model.OrderPlan
	for _, sig := range merged {
		price, err := o.quote(ctx, sig.Instrument, portfolio)
		if err != nil {
			summary.Rejected++
			log.Warn().Err(err).Str("instrument", sig.Instrument).Msg("quote unavailable, signal dropped")
			continue
		}
		decision := o.risk.Evaluate(sig, portfolio, price)
		switch decision.Outcome {
		case risk.OutcomeApproved:
			summary.Approved++
			plans = append(plans, executor.BuildPlan(sig.Instrument, sig.Direction, decision.Quantity, decision.Splits))
		case risk.OutcomeRejected:
			summary.Rejected++
			log.Info().Str("instrument", sig.Instrument).Str("reason", decision.Reason).Msg("signal rejected")
		case risk.OutcomeHalted:
			summary.HaltedCount++
		}
	}

	o.exec.Execute(ctx, plans)
	for _, plan := range plans {
		summary.LegsFilled += plan.Filled()
		summary.LegsFailed += plan.Failed()
		o.risk.RecordResult(plan, portfolio)
	}
}

func (o *Orchestrator) quote(ctx context.Context, instrument string, pf *model.PortfolioState) (float64, error) {
	if h, ok := pf.Holdings[instrument]; ok && h.Price > 0 {
		return h.Price, nil
	}
	return o.broker.GetQuote(ctx, instrument)
}

func (o *Orchestrator) record(summary model.CycleSummary) {
	o.sumMu.Lock()
	defer o.sumMu.Unlock()
	o.summaries = append(o.summaries, summary)
}

func (o *Orchestrator) runDailyReport(ctx context.Context) {
	o.sumMu.Lock()
	cycles := o.summaries
	o.summaries = nil
	o.sumMu.Unlock()

	state := o.risk.State()
	report := &model.DailyReport{
		Date:             time.Now().Format(dateLayout),
		Cycles:           cycles,
		TradesExecuted:   state.TradesExecuted,
		RealizedPnlRatio: state.RealizedPnlRatio,
		RiskHalted:       state.HaltedForDay,
	}
	if err := o.notifier.SendDailyReport(ctx, report); err != nil {
		o.log.Warn().Err(err).Msg("daily report delivery failed")
	}
	o.log.Info().Int("cycles", len(cycles)).Msg("daily report sent")
}

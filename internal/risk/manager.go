package risk

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"NewsSentinel/internal/model"
)

const dateLayout = "2006-01-02"

// Exit reasons distinguish forced sells from sentiment-driven ones; they
// also determine how much of a holding an approved sell unwinds.
const (
	ReasonStopLoss   = "stop-loss"
	ReasonTakeProfit = "take-profit"
)

// Rejection reasons surfaced in decisions and summaries.
const (
	ReasonTradeCountLimit = "trade-count-limit"
	ReasonPositionLimit   = "position-limit"
	ReasonZeroQuantity    = "zero-quantity"
)

// Outcome is the verdict of a risk evaluation.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
	OutcomeHalted   Outcome = "halted"
)

// Decision carries the verdict plus sizing for approved orders.
type Decision struct {
	Outcome  Outcome
	Reason   string
	Quantity float64
	Splits   int
}

// Config holds trading limit parameters.
type Config struct {
	MaxTradesPerDay     int
	DailyLossLimit      float64 // negative ratio, e.g. -0.03
	MaxSingleTradeRatio float64
	MaxHoldingRatio     float64
	StopLossRate        float64 // negative ratio, e.g. -0.05
	TakeProfitRate      float64
	SplitCount          int
}

// Manager enforces intraday trading limits with persisted daily state.
// The trade counter increments at approval time, before execution
// confirms, so failed executions still consume the daily budget.
type Manager struct {
	mu       sync.Mutex
	cfg      Config
	state    *model.RiskState
	filePath string
	log      zerolog.Logger
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string, cfg Config, log zerolog.Logger) (*Manager, error) {
	state, err := LoadState(filePath, time.Now().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("load risk state: %w", err)
	}
	m := &Manager{
		cfg:      cfg,
		state:    state,
		filePath: filePath,
		log:      log.With().Str("component", "risk").Logger(),
	}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// State returns a copy of the current risk state.
func (m *Manager) State() model.RiskState {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.state
	cp.ExposureRatio = make(map[string]float64, len(m.state.ExposureRatio))
	for k, v := range m.state.ExposureRatio {
		cp.ExposureRatio[k] = v
	}
	return cp
}

// Halted reports whether trading is halted for the day.
func (m *Manager) Halted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.HaltedForDay
}

// Evaluate applies the limit checks in order, short-circuiting on the
// first failure, and sizes approved orders. price is the instrument's
// current quote.
func (m *Manager) Evaluate(sig model.Signal, pf *model.PortfolioState, price float64) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.HaltedForDay {
		return Decision{Outcome: OutcomeHalted}
	}
	if m.state.TradesExecuted >= m.cfg.MaxTradesPerDay {
		return Decision{Outcome: OutcomeRejected, Reason: ReasonTradeCountLimit}
	}
	if m.state.RealizedPnlRatio <= m.cfg.DailyLossLimit {
		m.state.HaltedForDay = true
		if err := m.save(); err != nil {
			m.log.Error().Err(err).Msg("failed to persist halt state")
		}
		m.log.Warn().Float64("pnl_ratio", m.state.RealizedPnlRatio).Msg("daily loss limit breached, halting for the day")
		return Decision{Outcome: OutcomeHalted}
	}

	equity := pf.Equity()
	if equity <= 0 || price <= 0 {
		return Decision{Outcome: OutcomeRejected, Reason: ReasonZeroQuantity}
	}

	var quantity float64
	splits := 1

	switch sig.Direction {
	case model.DirectionBuy:
		// Exposure limit: exits are never blocked, buys are.
		value := sig.Strength * m.cfg.MaxHoldingRatio * equity
		if limit := m.cfg.MaxSingleTradeRatio * equity; value > limit {
			value = limit
		}
		if value > pf.Cash {
			value = pf.Cash
		}
		current := m.state.ExposureRatio[sig.Instrument]
		if h, held := pf.Holdings[sig.Instrument]; held {
			if r := h.Value() / equity; r > current {
				current = r
			}
		}
		if current+value/equity > m.cfg.MaxHoldingRatio {
			return Decision{Outcome: OutcomeRejected, Reason: ReasonPositionLimit}
		}
		quantity = value / price
		splits = m.cfg.SplitCount
	case model.DirectionSell:
		h, held := pf.Holdings[sig.Instrument]
		if !held || h.Quantity <= 0 {
			return Decision{Outcome: OutcomeRejected, Reason: "no position"}
		}
		switch sig.Reason {
		case ReasonStopLoss:
			quantity = h.Quantity
		case ReasonTakeProfit:
			quantity = h.Quantity / 2
		default:
			quantity = h.Quantity / float64(m.cfg.SplitCount)
		}
	}

	if quantity <= 0 {
		return Decision{Outcome: OutcomeRejected, Reason: ReasonZeroQuantity}
	}

	// Optimistic increment: execution failures must not refund the cap.
	m.state.TradesExecuted++
	if err := m.save(); err != nil {
		m.log.Error().Err(err).Msg("failed to persist trade count")
	}

	return Decision{Outcome: OutcomeApproved, Quantity: quantity, Splits: splits}
}

// ForcedExits produces sell overrides for held instruments breaching the
// stop-loss or take-profit rates. Runs every cycle, independently of
// sentiment-derived signals.
func (m *Manager) ForcedExits(pf *model.PortfolioState, now time.Time) []model.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()

	instruments := make([]string, 0, len(pf.Holdings))
	for instrument := range pf.Holdings {
		instruments = append(instruments, instrument)
	}
	sort.Strings(instruments)

	var exits []model.Signal
	for _, instrument := range instruments {
		h := pf.Holdings[instrument]
		if h.Quantity <= 0 {
			continue
		}
		ret := h.Return()
		switch {
		case ret <= m.cfg.StopLossRate:
			exits = append(exits, model.Signal{
				Instrument:  instrument,
				Direction:   model.DirectionSell,
				Strength:    1,
				Forced:      true,
				Reason:      ReasonStopLoss,
				GeneratedAt: now,
			})
		case ret >= m.cfg.TakeProfitRate:
			exits = append(exits, model.Signal{
				Instrument:  instrument,
				Direction:   model.DirectionSell,
				Strength:    0.8,
				Forced:      true,
				Reason:      ReasonTakeProfit,
				GeneratedAt: now,
			})
		}
	}
	return exits
}

// RecordResult folds an executed plan back into the risk state: exposure
// for buys, realized P&L and exposure release for sells. The trade counter
// is never reverted, even for fully failed plans.
func (m *Manager) RecordResult(plan *model.OrderPlan, pf *model.PortfolioState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	equity := pf.Equity()
	if equity <= 0 {
		return
	}

	var filledValue, realized float64
	avgCost := pf.Holdings[plan.Instrument].AvgCost
	for _, leg := range plan.Legs {
		if leg.Status != model.LegFilled {
			continue
		}
		filledValue += leg.Quantity * leg.FillPrice
		if plan.Direction == model.DirectionSell && avgCost > 0 {
			realized += (leg.FillPrice - avgCost) * leg.Quantity
		}
	}
	if filledValue == 0 {
		return
	}

	switch plan.Direction {
	case model.DirectionBuy:
		m.state.ExposureRatio[plan.Instrument] += filledValue / equity
	case model.DirectionSell:
		m.state.RealizedPnlRatio += realized / equity
		next := m.state.ExposureRatio[plan.Instrument] - filledValue/equity
		if next <= 0 {
			delete(m.state.ExposureRatio, plan.Instrument)
		} else {
			m.state.ExposureRatio[plan.Instrument] = next
		}
	}

	if err := m.save(); err != nil {
		m.log.Error().Err(err).Msg("failed to persist risk state")
	}
}

// ResetDaily clears the daily limits. Invoked only by the explicit
// risk-reset schedule point, never by cycle count.
func (m *Manager) ResetDaily(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = newState(now.Format(dateLayout))
	if err := m.save(); err != nil {
		m.log.Error().Err(err).Msg("failed to persist reset state")
	}
	m.log.Info().Str("date", m.state.Date).Msg("daily risk limits reset")
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}

package executor

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"NewsSentinel/internal/brokerage"
	"NewsSentinel/internal/model"
)

// Config holds execution parameters.
type Config struct {
	MaxRetries      uint64        // per-leg retry budget for transient failures
	InitialInterval time.Duration // first backoff interval, 0 for default
}

// Executor submits order plans against the brokerage. Plans for different
// instruments run in parallel; legs within a plan run strictly in order to
// preserve split-execution intent.
type Executor struct {
	client brokerage.Client
	cfg    Config
	log    zerolog.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(client brokerage.Client, cfg Config, log zerolog.Logger) *Executor {
	return &Executor{client: client, cfg: cfg, log: log.With().Str("component", "executor").Logger()}
}

// BuildPlan splits a total quantity into near-equal sequential legs. Legs
// always sum exactly to the total; the last leg absorbs rounding.
func BuildPlan(instrument string, direction model.Direction, total float64, splits int) *model.OrderPlan {
	if splits < 1 {
		splits = 1
	}
	plan := &model.OrderPlan{
		Instrument: instrument,
		Direction:  direction,
		Total:      total,
		Legs:       make([]model.OrderLeg, splits),
	}

	per := total / float64(splits)
	var allocated float64
	for i := 0; i < splits; i++ {
		qty := per
		if i == splits-1 {
			qty = total - allocated
		}
		allocated += qty
		plan.Legs[i] = model.OrderLeg{
			Seq:      i,
			OrderID:  uuid.NewString(),
			Quantity: qty,
			Status:   model.LegPending,
		}
	}
	return plan
}

// Execute runs every plan, updating leg statuses in place. On context
// cancellation no further legs are submitted; legs already in flight are
// left to resolve and their outcome recorded.
func (e *Executor) Execute(ctx context.Context, plans []*model.OrderPlan) {
	g := new(errgroup.Group)
	for _, plan := range plans {
		plan := plan
		g.Go(func() error {
			e.executePlan(ctx, plan)
			return nil
		})
	}
	g.Wait()
}

func (e *Executor) executePlan(ctx context.Context, plan *model.OrderPlan) {
	for i := range plan.Legs {
		if ctx.Err() != nil {
			e.log.Warn().Str("instrument", plan.Instrument).Int("leg", i).Msg("cycle cancelled, remaining legs not submitted")
			return
		}
		e.executeLeg(ctx, plan, &plan.Legs[i])
	}
}

func (e *Executor) executeLeg(ctx context.Context, plan *model.OrderPlan, leg *model.OrderLeg) {
	leg.Status = model.LegSubmitted

	var fill *brokerage.Fill
	operation := func() error {
		f, err := e.client.SubmitOrder(ctx, plan.Instrument, plan.Direction, leg.Quantity)
		if err != nil {
			if brokerage.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		fill = f
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	if e.cfg.InitialInterval > 0 {
		policy.InitialInterval = e.cfg.InitialInterval
	}
	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, e.cfg.MaxRetries), ctx))
	if err != nil {
		leg.Status = model.LegFailed
		leg.Error = err.Error()
		e.log.Error().Err(err).
			Str("instrument", plan.Instrument).
			Str("direction", string(plan.Direction)).
			Int("leg", leg.Seq).
			Msg("order leg failed")
		return
	}

	leg.Status = model.LegFilled
	leg.FillPrice = fill.Price
	e.log.Info().
		Str("instrument", plan.Instrument).
		Str("direction", string(plan.Direction)).
		Int("leg", leg.Seq).
		Float64("quantity", leg.Quantity).
		Float64("price", fill.Price).
		Msg("order leg filled")
}

package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"NewsSentinel/internal/model"
	"NewsSentinel/internal/orchestrator"
)

// Scheduler fires the orchestrator's triggers on cron schedules.
type Scheduler struct {
	Cron *cron.Cron
	Orch *orchestrator.Orchestrator
	Ctx  context.Context
	Log  zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, orch *orchestrator.Orchestrator, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Orch: orch,
		Ctx:  ctx,
		Log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the morning, intraday, report, and reset tasks.
func (s *Scheduler) RegisterAll(morningCron string, intradayCrons []string, reportCron, resetCron string) error {
	if _, err := s.Cron.AddFunc(morningCron, s.trigger(model.TriggerMorning)); err != nil {
		return fmt.Errorf("register morning task: %w", err)
	}
	for _, spec := range intradayCrons {
		if _, err := s.Cron.AddFunc(spec, s.trigger(model.TriggerIntraday)); err != nil {
			return fmt.Errorf("register intraday task %q: %w", spec, err)
		}
	}
	if _, err := s.Cron.AddFunc(reportCron, s.trigger(model.TriggerDailyReport)); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	if _, err := s.Cron.AddFunc(resetCron, s.trigger(model.TriggerRiskReset)); err != nil {
		return fmt.Errorf("register reset task: %w", err)
	}
	return nil
}

func (s *Scheduler) trigger(t model.TriggerType) func() {
	return func() {
		s.Orch.HandleTrigger(s.Ctx, t)
	}
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	ctx := s.Cron.Stop()
	<-ctx.Done()
	s.Log.Info().Msg("scheduler stopped")
}

// RunMorningNow executes the morning cycle immediately (for RUN_ON_START).
func (s *Scheduler) RunMorningNow() {
	s.Orch.HandleTrigger(s.Ctx, model.TriggerManual)
}

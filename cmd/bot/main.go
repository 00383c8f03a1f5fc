package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"NewsSentinel/internal/config"
	"NewsSentinel/internal/executor"
	"NewsSentinel/internal/mapping"
	"NewsSentinel/internal/notifier"
	"NewsSentinel/internal/orchestrator"
	"NewsSentinel/internal/risk"
	"NewsSentinel/internal/scheduler"
	"NewsSentinel/internal/signalgen"
	"NewsSentinel/internal/store"
	"NewsSentinel/internal/trend"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	log.Info().Msg("NewsSentinel starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil {
		log = log.Level(level)
	}

	// Open store
	db, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open sqlite store")
	}
	defer db.Close()

	// Seed associations
	seeds, err := config.LoadSeeds(cfg.Mapping.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load keyword seeds")
	}
	if err := db.AssociationStore().SeedAll(seeds, time.Now().Format("2006-01-02")); err != nil {
		log.Fatal().Err(err).Msg("seed associations")
	}
	log.Info().Int("seeds", len(seeds)).Msg("association seeds loaded")

	// Components
	tracker := trend.NewTracker(db.TrendStore(), trend.Config{
		WindowDays:  cfg.Trend.WindowDays,
		TrendFactor: cfg.Trend.TrendFactor,
		MinMentions: cfg.Trend.MinMentions,
	}, log)

	mapper := mapping.NewMapper(db.AssociationStore(), mapping.Config{
		LearningRate: cfg.Mapping.LearningRate,
		DecayFactor:  cfg.Mapping.DecayFactor,
		DecayFloor:   cfg.Mapping.DecayFloor,
	}, log)

	gen := signalgen.NewGenerator(signalgen.Config{
		BuyThreshold:  cfg.Strategy.BuyThreshold,
		SellThreshold: cfg.Strategy.SellThreshold,
		MinMentions:   cfg.Strategy.MinMentions,
		MaxSignals:    cfg.Strategy.MaxSignals,
	})

	riskMgr, err := risk.NewManager(cfg.Risk.StateFile, risk.Config{
		MaxTradesPerDay:     cfg.Risk.MaxTradesPerDay,
		DailyLossLimit:      cfg.Risk.DailyLossLimit,
		MaxSingleTradeRatio: cfg.Risk.MaxSingleTradeRatio,
		MaxHoldingRatio:     cfg.Risk.MaxHoldingRatio,
		StopLossRate:        cfg.Risk.StopLossRate,
		TakeProfitRate:      cfg.Risk.TakeProfitRate,
		SplitCount:          cfg.Risk.SplitCount,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init risk manager")
	}

	broker := brokerageClient(cfg, log)
	exec := executor.NewExecutor(broker, executor.Config{
		MaxRetries:      uint64(cfg.Executor.MaxRetries),
		InitialInterval: time.Second,
	}, log)

	var notif notifier.Notifier
	if cfg.Slack.Enabled {
		notif = notifier.NewSlackNotifier(cfg.Slack.WebhookURL)
		log.Info().Msg("slack notifier enabled")
	} else {
		notif = notifier.NewNoopNotifier()
	}

	provider := newsProvider(log)

	orch := orchestrator.New(orchestrator.Deps{
		Feed:     provider,
		Tracker:  tracker,
		Mapper:   mapper,
		Gen:      gen,
		Risk:     riskMgr,
		Exec:     exec,
		Broker:   broker,
		Notifier: notif,
	}, time.Duration(cfg.Executor.CycleTimeout)*time.Second, log)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduler
	sched := scheduler.NewScheduler(ctx, orch, log)
	if err := sched.RegisterAll(cfg.Schedule.MorningCron, cfg.Schedule.IntradayCrons,
		cfg.Schedule.ReportCron, cfg.Schedule.ResetCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Run-once mode: one analysis cycle, then exit. For manual runs and
	// container jobs.
	if os.Getenv("RUN_ONCE") == "true" {
		log.Info().Msg("RUN_ONCE enabled, executing a single analysis cycle")
		sched.RunMorningNow()
		return
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing analysis cycle now")
		go sched.RunMorningNow()
	}

	if err := notif.SendText(ctx, ":rocket: NewsSentinel started"); err != nil {
		log.Warn().Err(err).Msg("startup notification failed")
	}
	log.Info().Msg("NewsSentinel is running, press Ctrl+C to stop")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	if err := notif.SendText(ctx, ":wave: NewsSentinel stopping"); err != nil {
		log.Warn().Err(err).Msg("shutdown notification failed")
	}
	cancel()
	log.Info().Msg("NewsSentinel stopped")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"NewsSentinel/internal/backtest"
	"NewsSentinel/internal/config"
	"NewsSentinel/internal/mapping"
	"NewsSentinel/internal/risk"
	"NewsSentinel/internal/signalgen"
	"NewsSentinel/internal/store"
	"NewsSentinel/internal/trend"
)

// Replays an archived news history through the analysis pipeline against
// a paper account. Everything runs in a scratch directory, so the live
// database and risk state are never touched.
func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	dataPath := flag.String("data", "", "replay archive (JSON)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if *dataPath == "" {
		log.Fatal().Msg("-data is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil {
		log = log.Level(level)
	}

	days, err := backtest.LoadDays(*dataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load replay archive")
	}
	if len(days) == 0 {
		log.Fatal().Msg("replay archive has no days")
	}

	workDir, err := os.MkdirTemp("", "newssentinel-replay-")
	if err != nil {
		log.Fatal().Err(err).Msg("create scratch dir")
	}
	defer os.RemoveAll(workDir)

	db, err := store.Open(filepath.Join(workDir, "replay.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open scratch store")
	}
	defer db.Close()

	seeds, err := config.LoadSeeds(cfg.Mapping.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load keyword seeds")
	}
	if err := db.AssociationStore().SeedAll(seeds, days[0].Date.Format("2006-01-02")); err != nil {
		log.Fatal().Err(err).Msg("seed associations")
	}

	runner, err := backtest.NewRunner(db, workDir, backtest.Config{
		Trend: trend.Config{
			WindowDays:  cfg.Trend.WindowDays,
			TrendFactor: cfg.Trend.TrendFactor,
			MinMentions: cfg.Trend.MinMentions,
		},
		Mapping: mapping.Config{
			LearningRate: cfg.Mapping.LearningRate,
			DecayFactor:  cfg.Mapping.DecayFactor,
			DecayFloor:   cfg.Mapping.DecayFloor,
		},
		Strategy: signalgen.Config{
			BuyThreshold:  cfg.Strategy.BuyThreshold,
			SellThreshold: cfg.Strategy.SellThreshold,
			MinMentions:   cfg.Strategy.MinMentions,
			MaxSignals:    cfg.Strategy.MaxSignals,
		},
		Risk: risk.Config{
			MaxTradesPerDay:     cfg.Risk.MaxTradesPerDay,
			DailyLossLimit:      cfg.Risk.DailyLossLimit,
			MaxSingleTradeRatio: cfg.Risk.MaxSingleTradeRatio,
			MaxHoldingRatio:     cfg.Risk.MaxHoldingRatio,
			StopLossRate:        cfg.Risk.StopLossRate,
			TakeProfitRate:      cfg.Risk.TakeProfitRate,
			SplitCount:          cfg.Risk.SplitCount,
		},
		InitialCash: cfg.Executor.PaperCash,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init replay runner")
	}

	result, err := runner.Run(context.Background(), days)
	if err != nil {
		log.Fatal().Err(err).Msg("replay failed")
	}

	fmt.Print(backtest.FormatReport(result))
}

package main

import (
	"os"

	"github.com/rs/zerolog"

	"NewsSentinel/internal/brokerage"
	"NewsSentinel/internal/config"
	"NewsSentinel/internal/feed"
)

// newsProvider picks the feed source. The extraction pipeline runs out of
// process and drops JSON snapshots; without one configured the bot runs
// empty cycles.
func newsProvider(log zerolog.Logger) feed.Provider {
	if path := os.Getenv("NEWS_FEED_FILE"); path != "" {
		p := feed.NewFileProvider(path)
		log.Info().Str("provider", p.Name()).Msg("news feed configured")
		return p
	}
	log.Warn().Msg("NEWS_FEED_FILE not set, running without news input")
	return &feed.StaticProvider{Err: feed.ErrDataUnavailable}
}

// brokerageClient returns the trading backend. Only paper trading ships
// here; a live adapter plugs in behind brokerage.Client.
func brokerageClient(cfg *config.Config, log zerolog.Logger) brokerage.Client {
	c := brokerage.NewPaperClient(cfg.Executor.PaperCash, nil)
	log.Info().Str("brokerage", c.Name()).Float64("cash", cfg.Executor.PaperCash).Msg("brokerage ready")
	return c
}

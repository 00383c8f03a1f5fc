package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 7, cfg.Trend.WindowDays)
	assert.Equal(t, 2.0, cfg.Trend.TrendFactor)
	assert.Equal(t, 0.3, cfg.Strategy.BuyThreshold)
	assert.Equal(t, -0.2, cfg.Strategy.SellThreshold)
	assert.Equal(t, -0.03, cfg.Risk.DailyLossLimit)
	assert.Equal(t, 10, cfg.Risk.MaxTradesPerDay)
	assert.Equal(t, 3, cfg.Risk.SplitCount)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
trend:
  window_days: 14
risk:
  max_trades_per_day: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Trend.WindowDays)
	assert.Equal(t, 5, cfg.Risk.MaxTradesPerDay)
	// Untouched fields keep defaults.
	assert.Equal(t, 2.0, cfg.Trend.TrendFactor)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
risk:
  max_trades_per_day: 5
`)
	t.Setenv("MAX_TRADES_PER_DAY", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Risk.MaxTradesPerDay)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"trend factor at 1", func(c *Config) { c.Trend.TrendFactor = 1.0 }},
		{"learning rate above 1", func(c *Config) { c.Mapping.LearningRate = 1.5 }},
		{"decay factor at 1", func(c *Config) { c.Mapping.DecayFactor = 1.0 }},
		{"buy below sell threshold", func(c *Config) { c.Strategy.BuyThreshold = -0.5 }},
		{"positive loss limit", func(c *Config) { c.Risk.DailyLossLimit = 0.03 }},
		{"positive stop loss", func(c *Config) { c.Risk.StopLossRate = 0.05 }},
		{"slack enabled without webhook", func(c *Config) { c.Slack.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadSeeds(t *testing.T) {
	path := writeFile(t, "keywords.yaml", `
seeds:
  - keyword: semiconductor
    instrument: "8035"
    weight: 0.8
  - keyword: ""
    instrument: "9999"
    weight: 0.5
`)
	seeds, err := LoadSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "semiconductor", seeds[0].Keyword)
	assert.Equal(t, "8035", seeds[0].Instrument)
	assert.Equal(t, model.SourceSeed, seeds[0].Source)
}

func TestLoadSeeds_MissingFileIsEmpty(t *testing.T) {
	seeds, err := LoadSeeds(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, seeds)
}

func TestLoadSeeds_WeightOutOfRange(t *testing.T) {
	path := writeFile(t, "keywords.yaml", `
seeds:
  - keyword: ai
    instrument: "6501"
    weight: 1.2
`)
	_, err := LoadSeeds(path)
	assert.Error(t, err)
}

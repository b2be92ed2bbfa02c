package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statforge/internal/rangemap"
	"github.com/udisondev/statforge/internal/stats"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultGenerator(t *testing.T) {
	cfg := DefaultGenerator()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, stats.DefaultSettings(), cfg.BalancerSettings())
	assert.Equal(t, 10, cfg.VariantOptions().Search.MinIterations)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestLoadGenerator_Missing(t *testing.T) {
	cfg, err := LoadGenerator(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultGenerator(), cfg)
}

func TestLoadGenerator_Overlay(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
seed: 42
workers: 2
catalog:
  path: monsters.json
balancer:
  points: 30
  max: 20
  start: [10, 10, 10, 10, 10, 10]
  schedule:
    - [4, 15, 1]
    - {low: 16, high: 20, value: 2}
search:
  timeout: 2s
variant:
  remove_chance: 0.25
rating:
  saving_throw: 0.5
`)

	cfg, err := LoadGenerator(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "monsters.json", cfg.Catalog.Path)

	settings := cfg.BalancerSettings()
	assert.Equal(t, 30, settings.Points)
	assert.Equal(t, 20, settings.Max)
	assert.Equal(t, 3, settings.Min, "untouched keys keep defaults")
	assert.Equal(t, stats.Fill(10), settings.Start)

	schedule, err := cfg.Schedule()
	require.NoError(t, err)
	cost, err := schedule.Get(18)
	require.NoError(t, err)
	assert.Equal(t, 2, cost)

	assert.Equal(t, 2*time.Second, cfg.SearchOptions().Timeout)
	assert.InDelta(t, 0.25, cfg.VariantOptions().RemoveChance, 1e-9)
	assert.InDelta(t, 0.5, cfg.Rating.SavingThrow, 1e-9)
	assert.InDelta(t, 0.1, cfg.Rating.Movement["walk"], 1e-9, "weights merge with defaults")

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadGenerator_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		is   error
	}{
		{name: "syntax", body: "workers: [1"},
		{name: "workers", body: "workers: 0", is: ErrInvalid},
		{name: "log level", body: "log_level: loud", is: ErrInvalid},
		{name: "odds", body: "variant:\n  remove_chance: 2", is: ErrInvalid},
		{name: "min above max", body: "balancer:\n  min: 20", is: stats.ErrInvalidSettings},
		{name: "short start", body: "balancer:\n  start: [8, 8]", is: stats.ErrShortVector},
		{name: "overlapping schedule", body: "balancer:\n  schedule: [[4, 10, 1], [10, 18, 2]]", is: rangemap.ErrOverlap},
		{name: "empty schedule", body: "balancer:\n  schedule: []", is: ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGenerator(writeConfig(t, tt.body))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	cfg := DefaultGenerator()
	c, err := cfg.LoadCatalog()
	require.NoError(t, err)
	_, err = c.Monster("Goblin")
	assert.NoError(t, err)

	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.LoadCatalog()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := LoadGenerator(filepath.Join("..", "..", "config", "statgen.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultGenerator(), cfg)
}

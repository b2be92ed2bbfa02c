package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/statforge/internal/catalog"
	"github.com/udisondev/statforge/internal/monster"
	"github.com/udisondev/statforge/internal/rangemap"
	"github.com/udisondev/statforge/internal/rating"
	"github.com/udisondev/statforge/internal/search"
	"github.com/udisondev/statforge/internal/stats"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid value")

// Generator holds all configuration for the statgen tool.
type Generator struct {
	LogLevel string `yaml:"log_level"`
	// 0 picks a random seed
	Seed    int64 `yaml:"seed"`
	Workers int   `yaml:"workers"`

	Catalog  CatalogConfig      `yaml:"catalog"`
	Balancer BalancerConfig     `yaml:"balancer"`
	Search   SearchConfig       `yaml:"search"`
	Variant  VariantConfig      `yaml:"variant"`
	Rating   rating.Adjustments `yaml:"rating"`
}

// CatalogConfig points at an external catalog. An empty path means the
// builtin one.
type CatalogConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // yaml | json; empty = by extension
}

// BalancerConfig holds point-buy parameters.
type BalancerConfig struct {
	Points     int                      `yaml:"points"`
	DiceSides  int                      `yaml:"dice_sides"`
	DiceRolled int                      `yaml:"dice_rolled"`
	DiceKept   int                      `yaml:"dice_kept"`
	Min        int                      `yaml:"min"`
	Max        int                      `yaml:"max"`
	Start      stats.Vector             `yaml:"start"`
	MaxSteps   int                      `yaml:"max_steps"`
	Schedule   []rangemap.Row[int, int] `yaml:"schedule"`
}

// SearchConfig bounds the balanced-array search.
type SearchConfig struct {
	MinIterations int           `yaml:"min_iterations"`
	MaxIterations int           `yaml:"max_iterations"`
	Timeout       time.Duration `yaml:"timeout"`
}

// VariantConfig tunes monster variant generation.
type VariantConfig struct {
	MaxWeapons    int                      `yaml:"max_weapons"`
	RemoveChance  float64                  `yaml:"remove_chance"`
	MinScore      int                      `yaml:"min_score"`
	MaxScore      int                      `yaml:"max_score"`
	MinIterations int                      `yaml:"min_iterations"`
	MaxIterations int                      `yaml:"max_iterations"`
	Timeout       time.Duration            `yaml:"timeout"`
	Schedule      []rangemap.Row[int, int] `yaml:"schedule"`
}

// DefaultGenerator returns Generator config with sensible defaults.
func DefaultGenerator() Generator {
	bal := stats.DefaultSettings()
	variant := monster.DefaultOptions()

	return Generator{
		LogLevel: "info",
		Workers:  4,
		Balancer: BalancerConfig{
			Points:     bal.Points,
			DiceSides:  bal.DiceSides,
			DiceRolled: bal.DiceRolled,
			DiceKept:   bal.DiceKept,
			Min:        bal.Min,
			Max:        bal.Max,
			Start:      bal.Start,
			MaxSteps:   bal.MaxSteps,
			Schedule:   stats.DefaultScheduleRows,
		},
		Search: SearchConfig{
			MaxIterations: search.DefaultMaxIterations,
			Timeout:       10 * time.Second,
		},
		Variant: VariantConfig{
			MaxWeapons:    variant.MaxWeapons,
			RemoveChance:  variant.RemoveChance,
			MinScore:      variant.MinScore,
			MaxScore:      variant.MaxScore,
			MinIterations: variant.Search.MinIterations,
			MaxIterations: variant.Search.MaxIterations,
			Timeout:       30 * time.Second,
			Schedule:      monster.ScheduleRows,
		},
		Rating: rating.DefaultAdjustments(),
	}
}

// LoadGenerator loads generator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGenerator(path string) (Generator, error) {
	cfg := DefaultGenerator()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values the YAML decoder cannot.
func (g Generator) Validate() error {
	if _, err := g.Level(); err != nil {
		return err
	}
	if g.Workers <= 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, g.Workers)
	}
	if g.Variant.RemoveChance < 0 || g.Variant.RemoveChance > 1 {
		return fmt.Errorf("%w: remove_chance %g", ErrInvalid, g.Variant.RemoveChance)
	}
	if err := g.BalancerSettings().Validate(); err != nil {
		return fmt.Errorf("balancer: %w", err)
	}
	if len(g.Balancer.Schedule) == 0 {
		return fmt.Errorf("%w: empty balancer schedule", ErrInvalid)
	}
	if _, err := stats.NewSchedule(g.Balancer.Schedule); err != nil {
		return fmt.Errorf("balancer schedule: %w", err)
	}
	if _, err := stats.NewSchedule(g.Variant.Schedule); err != nil {
		return fmt.Errorf("variant schedule: %w", err)
	}
	return nil
}

// Level parses LogLevel.
func (g Generator) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(g.LogLevel)); err != nil {
		return lvl, fmt.Errorf("%w: log_level %q", ErrInvalid, g.LogLevel)
	}
	return lvl, nil
}

// LoadCatalog returns the configured catalog, or the builtin one when no
// path is set.
func (g Generator) LoadCatalog() (*catalog.Catalog, error) {
	if g.Catalog.Path == "" {
		return catalog.Builtin(), nil
	}
	return catalog.LoadFile(g.Catalog.Path, g.Catalog.Format)
}

// Schedule builds the balancer price list.
func (g Generator) Schedule() (*stats.Schedule, error) {
	return stats.NewSchedule(g.Balancer.Schedule)
}

// BalancerSettings converts the balancer section.
func (g Generator) BalancerSettings() stats.Settings {
	b := g.Balancer
	return stats.Settings{
		Points:     b.Points,
		DiceSides:  b.DiceSides,
		DiceRolled: b.DiceRolled,
		DiceKept:   b.DiceKept,
		Min:        b.Min,
		Max:        b.Max,
		Start:      b.Start,
		MaxSteps:   b.MaxSteps,
	}
}

// SearchOptions converts the search section.
func (g Generator) SearchOptions() search.Options {
	return search.Options{
		MinIterations: g.Search.MinIterations,
		MaxIterations: g.Search.MaxIterations,
		Timeout:       g.Search.Timeout,
	}
}

// VariantOptions converts the variant section.
func (g Generator) VariantOptions() monster.Options {
	v := g.Variant
	return monster.Options{
		RemoveChance: v.RemoveChance,
		MaxWeapons:   v.MaxWeapons,
		MinScore:     v.MinScore,
		MaxScore:     v.MaxScore,
		Schedule:     v.Schedule,
		Search: search.Options{
			MinIterations: v.MinIterations,
			MaxIterations: v.MaxIterations,
			Timeout:       v.Timeout,
		},
	}
}

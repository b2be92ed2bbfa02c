package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/statforge/internal/catalog"
	"github.com/udisondev/statforge/internal/config"
	"github.com/udisondev/statforge/internal/dice"
	"github.com/udisondev/statforge/internal/monster"
	"github.com/udisondev/statforge/internal/rating"
	"github.com/udisondev/statforge/internal/stats"
)

// app holds what every command shares. Catalog and rater are read-only;
// each worker builds its own balancer or generator with its own source.
type app struct {
	cfg      config.Generator
	catalog  *catalog.Catalog
	rater    *rating.Rater
	schedule *stats.Schedule
	out      io.Writer
}

func newApp(cfg config.Generator, out io.Writer) (*app, error) {
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	schedule, err := cfg.Schedule()
	if err != nil {
		return nil, fmt.Errorf("building schedule: %w", err)
	}
	return &app{
		cfg:      cfg,
		catalog:  cat,
		rater:    rating.NewRater(rating.DefaultTable(), cfg.Rating),
		schedule: schedule,
		out:      out,
	}, nil
}

// workerSeed derives a per-worker seed. Seed 0 stays 0 so every worker
// seeds itself randomly.
func (a *app) workerSeed(i int) int64 {
	if a.cfg.Seed == 0 {
		return 0
	}
	return a.cfg.Seed + int64(i)
}

// parallel runs fn for 0..n-1 on at most cfg.Workers goroutines.
func (a *app) parallel(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i := range n {
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}

func (a *app) print(asJSON bool, results any, text func(w io.Writer)) error {
	if asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	text(a.out)
	return nil
}

type arrayResult struct {
	ID     string       `json:"id"`
	Seed   int64        `json:"seed"`
	Scores stats.Vector `json:"scores"`
	Sorted []int        `json:"sorted"`
	Total  int          `json:"total"`
}

type statsReport struct {
	Arrays      []arrayResult `json:"arrays"`
	MeanSurplus *float64      `json:"mean_surplus,omitempty"`
}

func (a *app) runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	n := fs.Int("n", 5, "number of balanced arrays")
	surplus := fs.Int("surplus", 0, "also report the mean leftover budget over this many unbalanced rolls")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n < 1 {
		return fmt.Errorf("%w: -n must be at least 1", errUsage)
	}

	settings := a.cfg.BalancerSettings()
	report := statsReport{Arrays: make([]arrayResult, *n)}

	err := a.parallel(ctx, *n, func(ctx context.Context, i int) error {
		seed := a.workerSeed(i)
		b, err := stats.NewBalancer(settings, a.schedule, dice.NewSource(seed))
		if err != nil {
			return err
		}
		trial, err := b.Generate(ctx, a.cfg.SearchOptions())
		if err != nil {
			return fmt.Errorf("array %d: %w", i, err)
		}
		report.Arrays[i] = arrayResult{
			ID:     uuid.NewString(),
			Seed:   seed,
			Scores: trial.Vector,
			Sorted: trial.Vector.Sorted(),
			Total:  trial.Vector.Sum(),
		}
		return nil
	})
	if err != nil {
		return err
	}

	if *surplus > 0 {
		b, err := stats.NewBalancer(settings, a.schedule, dice.NewSource(a.workerSeed(*n)))
		if err != nil {
			return err
		}
		mean, err := b.MeanSurplus(*surplus)
		if err != nil {
			return fmt.Errorf("mean surplus: %w", err)
		}
		report.MeanSurplus = &mean
	}

	slog.Info("arrays generated", "count", *n, "points", settings.Points)
	return a.print(*asJSON, report, func(w io.Writer) {
		for _, r := range report.Arrays {
			fmt.Fprintf(w, "%s  %v\n", r.Scores, r.Sorted)
		}
		if report.MeanSurplus != nil {
			fmt.Fprintf(w, "mean leftover budget over %d rolls: %.2f\n", *surplus, *report.MeanSurplus)
		}
	})
}

type variantResult struct {
	ID         string       `json:"id"`
	Monster    string       `json:"monster"`
	Seed       int64        `json:"seed"`
	Target     rating.CR    `json:"target"`
	Rating     rating.CR    `json:"rating"`
	Stats      stats.Vector `json:"stats"`
	HitPoints  int          `json:"hit_points"`
	ArmorClass int          `json:"armor_class"`
	Weapons    []string     `json:"weapons"`
	Armors     []string     `json:"armors"`
	Rounds     int          `json:"rounds"`
	Rejected   int          `json:"rejected"`

	text string
}

func (a *app) runVariant(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("variant", flag.ContinueOnError)
	n := fs.Int("n", 3, "number of variants")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: variant wants one monster name", errUsage)
	}
	if *n < 1 {
		return fmt.Errorf("%w: -n must be at least 1", errUsage)
	}
	name := fs.Arg(0)
	if _, err := a.catalog.Monster(name); err != nil {
		return err
	}

	results := make([]variantResult, *n)
	err := a.parallel(ctx, *n, func(ctx context.Context, i int) error {
		seed := a.workerSeed(i)
		gen, err := monster.NewGenerator(a.catalog, a.rater, dice.NewSource(seed), a.cfg.VariantOptions())
		if err != nil {
			return err
		}
		res, err := gen.Variant(ctx, name)
		if err != nil {
			return err
		}

		v := res.Variant
		r := variantResult{
			ID:         uuid.NewString(),
			Monster:    v.Template.Name,
			Seed:       seed,
			Target:     res.Target,
			Rating:     res.Rating,
			Stats:      v.Stats,
			HitPoints:  v.HitPoints,
			ArmorClass: v.ArmorClass(),
			Rounds:     res.Iterations,
			Rejected:   res.Rejected,
			text:       v.String(),
		}
		for _, w := range v.Weapons {
			r.Weapons = append(r.Weapons, w.String())
		}
		for _, p := range v.Armors {
			r.Armors = append(r.Armors, p.String())
		}
		results[i] = r
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("variants generated", "monster", name, "count", *n)
	return a.print(*asJSON, results, func(w io.Writer) {
		for _, r := range results {
			fmt.Fprintf(w, "%s\nCR %s after %d rounds\n\n", r.text, r.Rating, r.Rounds)
		}
	})
}

type ratingResult struct {
	Monster   string           `json:"monster"`
	Rating    rating.CR        `json:"rating"`
	XP        int              `json:"xp"`
	Expected  rating.CR        `json:"expected"`
	Breakdown rating.Breakdown `json:"breakdown"`
}

func (a *app) runRating(args []string) error {
	fs := flag.NewFlagSet("rating", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: rating wants at least one monster name", errUsage)
	}

	table := a.rater.Table()
	results := make([]ratingResult, 0, fs.NArg())
	for _, name := range fs.Args() {
		tpl, err := a.catalog.Monster(name)
		if err != nil {
			return err
		}
		v, err := monster.FromTemplate(a.catalog, tpl)
		if err != nil {
			return err
		}
		b := a.rater.Breakdown(v.Profile(table))
		xp, err := table.XP(b.Rating)
		if err != nil {
			return err
		}
		results = append(results, ratingResult{
			Monster:   tpl.Name,
			Rating:    b.Rating,
			XP:        xp,
			Expected:  tpl.ExpectedRating,
			Breakdown: b,
		})
	}

	return a.print(*asJSON, results, func(w io.Writer) {
		for _, r := range results {
			b := r.Breakdown
			fmt.Fprintf(w, "%-12s CR %-4s (%d XP)  expected %-4s defense %d offense %d traits %+.2f\n",
				r.Monster, r.Rating, r.XP, r.Expected, b.Defense, b.Offense, b.Modifier())
		}
	})
}

func (a *app) runCatalog(args []string) error {
	kinds := args
	if len(kinds) == 0 {
		kinds = []string{"weapons", "armors", "monsters"}
	}

	for _, kind := range kinds {
		var names []string
		switch kind {
		case "weapons":
			for _, w := range a.catalog.Weapons() {
				names = append(names, fmt.Sprintf("%s (%s)", w.Name, w.DamageType))
			}
		case "armors":
			for _, ar := range a.catalog.Armors() {
				names = append(names, fmt.Sprintf("%s [%s]", ar.Name, ar.Slot))
			}
		case "monsters":
			for _, m := range a.catalog.Monsters() {
				names = append(names, fmt.Sprintf("%s (CR %s)", m.Name, m.ExpectedRating))
			}
		default:
			return fmt.Errorf("%w: unknown catalog section %q", errUsage, kind)
		}
		fmt.Fprintf(a.out, "%s:\n  %s\n", kind, strings.Join(names, "\n  "))
	}
	return nil
}

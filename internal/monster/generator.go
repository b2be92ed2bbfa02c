package monster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/statforge/internal/catalog"
	"github.com/udisondev/statforge/internal/dice"
	"github.com/udisondev/statforge/internal/rangemap"
	"github.com/udisondev/statforge/internal/rating"
	"github.com/udisondev/statforge/internal/search"
	"github.com/udisondev/statforge/internal/stats"
)

// ScheduleRows is the point-buy price list for monster scores. It reaches
// down to 1 so beasts with very low scores can be reverted and rolled.
var ScheduleRows = []rangemap.Row[int, int]{
	{Low: 2, High: 13, Value: 1},
	{Low: 14, High: 15, Value: 2},
	{Low: 16, High: 17, Value: 3},
	{Low: 18, High: 18, Value: 4},
	{Low: 19, High: 30, Value: 100},
}

// Options tune the variant generator.
type Options struct {
	// RemoveChance is the odds of removing equipment instead of adding it.
	RemoveChance float64
	// MaxWeapons: weapons are only added below this count.
	MaxWeapons int
	// MinScore and MaxScore bound every ability of a variant.
	MinScore int
	MaxScore int
	// Schedule prices monster scores; empty means ScheduleRows.
	Schedule []rangemap.Row[int, int]
	// Search bounds the variant search.
	Search search.Options
}

// DefaultOptions returns the stock generator options.
func DefaultOptions() Options {
	return Options{
		RemoveChance: 0.5,
		MaxWeapons:   3,
		MinScore:     1,
		MaxScore:     30,
		Schedule:     ScheduleRows,
		Search: search.Options{
			MinIterations: 10,
			MaxIterations: search.DefaultMaxIterations,
		},
	}
}

// Result is a generated variant with the numbers that produced it.
type Result struct {
	Variant    Variant
	Target     rating.CR
	Rating     rating.CR
	Iterations int
	Skipped    int
	Rejected   int
	Outcome    search.Outcome
}

// Generator builds variants of catalog monsters. It owns its random source
// and is not safe for concurrent use.
type Generator struct {
	catalog  *catalog.Catalog
	rater    *rating.Rater
	schedule *stats.Schedule
	src      dice.Source
	opts     Options
}

// NewGenerator wires a generator. The catalog and rater are shared and
// read-only.
func NewGenerator(cat *catalog.Catalog, rater *rating.Rater, src dice.Source, opts Options) (*Generator, error) {
	rows := opts.Schedule
	if len(rows) == 0 {
		rows = ScheduleRows
	}
	schedule, err := stats.NewSchedule(rows)
	if err != nil {
		return nil, err
	}
	return &Generator{
		catalog:  cat,
		rater:    rater,
		schedule: schedule,
		src:      src,
		opts:     opts,
	}, nil
}

// Base returns the unmodified variant of the named template.
func (g *Generator) Base(name string) (Variant, error) {
	tpl, err := g.catalog.Monster(name)
	if err != nil {
		return Variant{}, err
	}
	return FromTemplate(g.catalog, tpl)
}

// Rate scores a variant.
func (g *Generator) Rate(v Variant) rating.CR {
	return g.rater.Rate(v.Profile(g.rater.Table()))
}

// Breakdown explains the rating of a variant.
func (g *Generator) Breakdown(v Variant) rating.Breakdown {
	return g.rater.Breakdown(v.Profile(g.rater.Table()))
}

// Variant searches for a variant of the named monster whose rating equals
// the rating of its base form.
func (g *Generator) Variant(ctx context.Context, name string) (Result, error) {
	base, err := g.Base(name)
	if err != nil {
		return Result{}, err
	}
	target := g.Rate(base)

	settings := stats.DefaultSettings()
	settings.Points = 0
	settings.Min = g.opts.MinScore
	settings.Max = g.opts.MaxScore
	settings.Start = base.Stats
	balancer, err := stats.NewBalancer(settings, g.schedule, g.src)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", name, err)
	}
	lowest := base.Stats[base.Stats.Lowest()]

	rejected := 0
	mutate := func(v Variant) (Variant, error) {
		v = v.Clone()
		if err := g.rebalance(balancer, &v, lowest); err != nil {
			return v, err
		}
		v.HitPoints = v.RollHitPoints(g.src)

		for _, err := range []error{g.varyWeapons(&v), g.varyArmor(&v)} {
			switch {
			case errors.Is(err, ErrIllegalEdit):
				rejected++
			case err != nil:
				return v, err
			}
		}
		return v, nil
	}

	res, err := search.Run(ctx, base, mutate, g.Rate, target, g.opts.Search)
	out := Result{
		Variant:    res.Candidate,
		Target:     target,
		Rating:     g.Rate(res.Candidate),
		Iterations: res.Iterations,
		Skipped:    res.Skipped,
		Rejected:   rejected,
		Outcome:    res.Outcome,
	}
	if err != nil {
		return out, fmt.Errorf("%s variant: %w", name, err)
	}

	slog.Debug("variant generated",
		"monster", name,
		"rating", out.Rating.String(),
		"rounds", out.Iterations,
		"rejected", rejected)
	return out, nil
}

// rebalance drops every score to the lowest base score, rolls and spends
// the points freed up.
func (g *Generator) rebalance(b *stats.Balancer, v *Variant, lowest int) error {
	if err := b.Load(v.Stats, v.Budget); err != nil {
		return err
	}
	if err := b.RevertTo(lowest); err != nil {
		return err
	}
	if _, err := b.RollBaseline(); err != nil {
		return err
	}
	if _, err := b.Balance(); err != nil {
		if errors.Is(err, stats.ErrBudgetUnreachable) {
			return fmt.Errorf("%w: %w", search.ErrSkip, err)
		}
		return err
	}
	v.Stats = b.Vector()
	v.Budget = b.RemainingBudget()
	return nil
}

func (g *Generator) varyWeapons(v *Variant) error {
	policy := g.catalog.Policy(catalog.CategoryWeapons)
	if !policy.Editable(v) {
		return nil
	}

	if dice.Chance(g.src, g.opts.RemoveChance) && len(v.Weapons) > 1 {
		v.RemoveWeapon(g.src.IntN(len(v.Weapons)))
		return nil
	}
	if len(v.Weapons) >= g.opts.MaxWeapons {
		return nil
	}
	w := dice.Choose(g.src, g.catalog.Weapons())
	return v.AddWeapon(policy, w, v.Template.Size.DamageScale())
}

func (g *Generator) varyArmor(v *Variant) error {
	policy := g.catalog.Policy(catalog.CategoryArmor)
	if !policy.Editable(v) {
		return nil
	}

	// a creature may end up wearing nothing
	if dice.Chance(g.src, g.opts.RemoveChance) {
		if len(v.Armors) > 0 {
			v.RemoveArmor(g.src.IntN(len(v.Armors)))
		}
		return nil
	}
	return v.AddArmor(policy, dice.Choose(g.src, g.catalog.Armors()), 0)
}

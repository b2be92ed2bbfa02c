package stats

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/statforge/internal/dice"
)

var (
	// ErrInvalidSettings is returned by NewBalancer for unusable settings.
	ErrInvalidSettings = errors.New("stats: invalid balancer settings")

	// ErrIllegalMove is returned when a displacement crosses a score that is
	// out of bounds or missing from the schedule.
	ErrIllegalMove = errors.New("stats: illegal move")

	// ErrBudgetUnreachable is returned by Balance when MaxSteps runs out
	// before the budget lands on zero.
	ErrBudgetUnreachable = errors.New("stats: budget did not reach zero")
)

// DefaultMaxSteps caps Balance when Settings.MaxSteps is zero.
const DefaultMaxSteps = 100_000

// Settings configures a Balancer.
type Settings struct {
	Points     int    // budget to spend on top of Start
	DiceSides  int    // faces per die
	DiceRolled int    // dice rolled per ability
	DiceKept   int    // highest dice kept per ability
	Min        int    // lowest legal score
	Max        int    // highest legal score
	Start      Vector // scores the budget is priced from
	MaxSteps   int    // Balance step cap; 0 means DefaultMaxSteps
}

// DefaultSettings: 27 points over all-8s, 4d6 drop lowest, scores 3..18.
func DefaultSettings() Settings {
	return Settings{
		Points:     27,
		DiceSides:  6,
		DiceRolled: 4,
		DiceKept:   3,
		Min:        3,
		Max:        18,
		Start:      Fill(8),
		MaxSteps:   DefaultMaxSteps,
	}
}

// Validate checks bounds and dice settings.
func (s Settings) Validate() error {
	switch {
	case s.Min > s.Max:
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidSettings, s.Min, s.Max)
	case s.DiceSides <= 0:
		return fmt.Errorf("%w: dice sides %d", ErrInvalidSettings, s.DiceSides)
	case s.DiceRolled <= 0:
		return fmt.Errorf("%w: dice rolled %d", ErrInvalidSettings, s.DiceRolled)
	case s.DiceKept <= 0 || s.DiceKept > s.DiceRolled:
		return fmt.Errorf("%w: keep %d of %d dice", ErrInvalidSettings, s.DiceKept, s.DiceRolled)
	case s.MaxSteps < 0:
		return fmt.Errorf("%w: max steps %d", ErrInvalidSettings, s.MaxSteps)
	}
	for i, v := range s.Start {
		if v < s.Min || v > s.Max {
			return fmt.Errorf("%w: start %s=%d outside [%d, %d]", ErrInvalidSettings, Ability(i), v, s.Min, s.Max)
		}
	}
	return nil
}

// Counters track Balance work. Skipped counts illegal steps that were drawn
// and discarded.
type Counters struct {
	Steps   int
	Skipped int
}

// Balancer owns an attribute vector and a running point budget. Raising a
// score spends budget, lowering it refunds budget, every single step priced
// by the schedule. A Balancer is not safe for concurrent use.
type Balancer struct {
	settings Settings
	schedule *Schedule
	src      dice.Source
	roll     dice.Dice

	vector   Vector
	budget   int
	counters Counters
}

// NewBalancer validates settings and returns a balancer positioned at
// settings.Start with settings.Points to spend.
func NewBalancer(settings Settings, schedule *Schedule, src dice.Source) (*Balancer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if schedule == nil || schedule.Len() == 0 {
		return nil, fmt.Errorf("%w: empty schedule", ErrInvalidSettings)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidSettings)
	}
	if settings.MaxSteps == 0 {
		settings.MaxSteps = DefaultMaxSteps
	}

	return &Balancer{
		settings: settings,
		schedule: schedule,
		src:      src,
		roll:     dice.New(settings.DiceRolled, settings.DiceSides),
		vector:   settings.Start,
		budget:   settings.Points,
	}, nil
}

// Settings returns the balancer settings.
func (b *Balancer) Settings() Settings { return b.settings }

// Vector returns a copy of the current scores.
func (b *Balancer) Vector() Vector { return b.vector }

// RemainingBudget returns the unspent points. Negative means overspent.
func (b *Balancer) RemainingBudget() int { return b.budget }

// Counters returns the step counters accumulated since construction.
func (b *Balancer) Counters() Counters { return b.counters }

// Load replaces the vector and budget, e.g. with a saved candidate state.
func (b *Balancer) Load(v Vector, budget int) error {
	for i, s := range v {
		if s < b.settings.Min || s > b.settings.Max {
			return fmt.Errorf("%w: %s=%d outside [%d, %d]", ErrIllegalMove, Ability(i), s, b.settings.Min, b.settings.Max)
		}
	}
	b.vector = v
	b.budget = budget
	return nil
}

// stepCost prices one step away from score v. The result is signed: positive
// when the step spends budget. ok is false when the step is illegal.
func (b *Balancer) stepCost(v int, up bool) (cost int, ok bool) {
	if up {
		if v+1 > b.settings.Max {
			return 0, false
		}
		c, err := b.schedule.Get(v + 1)
		if err != nil {
			return 0, false
		}
		return c, true
	}

	if v-1 < b.settings.Min {
		return 0, false
	}
	c, err := b.schedule.Get(v)
	if err != nil {
		return 0, false
	}
	return -c, true
}

// Price returns the budget consumed by moving one score from from to to,
// summing every single-step price on the way. Moving down yields a negative
// price (a refund).
func (b *Balancer) Price(from, to int) (int, error) {
	up := to > from
	step := 1
	if !up {
		step = -1
	}

	total := 0
	for v := from; v != to; v += step {
		c, ok := b.stepCost(v, up)
		if !ok {
			return 0, fmt.Errorf("%w: step %d→%d while moving %d→%d", ErrIllegalMove, v, v+step, from, to)
		}
		total += c
	}
	return total, nil
}

// RollBaseline rolls every ability (best DiceKept of DiceRolled dice, clamped
// to [Min, Max]) and charges the budget for moving the current scores to the
// rolled ones. On error nothing changes.
func (b *Balancer) RollBaseline() (Vector, error) {
	var rolled Vector
	for i := range rolled {
		rolled[i] = clamp(b.roll.KeepHighest(b.src, b.settings.DiceKept), b.settings.Min, b.settings.Max)
	}

	spent := 0
	for i := range rolled {
		c, err := b.Price(b.vector[i], rolled[i])
		if err != nil {
			return b.vector, fmt.Errorf("pricing %s: %w", Ability(i), err)
		}
		spent += c
	}

	b.vector = rolled
	b.budget -= spent
	return b.vector, nil
}

// Balance walks the budget to exactly zero. Each step picks a random
// ability and moves it one point up while budget remains or one point down
// while overspent; illegal steps are skipped. After MaxSteps steps it gives
// up with ErrBudgetUnreachable, leaving the partial state in place.
func (b *Balancer) Balance() (Vector, error) {
	steps := 0
	for b.budget != 0 {
		if steps >= b.settings.MaxSteps {
			return b.vector, fmt.Errorf("%w: %d left after %d steps", ErrBudgetUnreachable, b.budget, steps)
		}
		steps++
		b.counters.Steps++

		a := Ability(b.src.IntN(NumAbilities))
		up := b.budget > 0
		cost, ok := b.stepCost(b.vector[a], up)
		// free steps never move the budget, treat them as illegal
		if !ok || cost == 0 {
			b.counters.Skipped++
			continue
		}

		if up {
			b.vector[a]++
		} else {
			b.vector[a]--
		}
		b.budget -= cost
	}

	slog.Debug("budget balanced", "vector", b.vector.String(), "steps", steps)
	return b.vector, nil
}

// Revert moves every ability to target, crediting or debiting the budget
// by the same per-step pricing. Targets outside [Min, Max] are left alone.
// A target that cannot be priced fails the whole revert without changes.
func (b *Balancer) Revert(target Vector) error {
	next := b.vector
	budget := b.budget
	for i, want := range target {
		if want < b.settings.Min || want > b.settings.Max {
			b.counters.Skipped++
			continue
		}
		c, err := b.Price(b.vector[i], want)
		if err != nil {
			return fmt.Errorf("reverting %s: %w", Ability(i), err)
		}
		next[i] = want
		budget -= c
	}
	b.vector = next
	b.budget = budget
	return nil
}

// RevertTo reverts every ability to the same score.
func (b *Balancer) RevertTo(score int) error {
	return b.Revert(Fill(score))
}

// MeanSurplus rolls n unbalanced baselines from the start vector and returns
// the mean budget left over. The balancer is back at Start afterwards.
func (b *Balancer) MeanSurplus(n int) (float64, error) {
	if n <= 0 {
		return 0, nil
	}
	if err := b.Revert(b.settings.Start); err != nil {
		return 0, err
	}

	total := 0
	for range n {
		if _, err := b.RollBaseline(); err != nil {
			return 0, err
		}
		total += b.budget
		if err := b.Revert(b.settings.Start); err != nil {
			return 0, err
		}
	}
	return float64(total) / float64(n), nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

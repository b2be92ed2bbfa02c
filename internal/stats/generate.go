package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/udisondev/statforge/internal/search"
)

// Trial is one balanced-array attempt: the scores and the budget left after
// balancing.
type Trial struct {
	Vector Vector
	Budget int
}

// Clone implements search.Candidate.
func (t Trial) Clone() Trial { return t }

// Generate searches for a balanced array: every round reverts to Start, rolls
// a fresh baseline and balances it, until a round ends with a zero budget.
// Rounds where the budget cannot be balanced are skipped.
func (b *Balancer) Generate(ctx context.Context, opts search.Options) (Trial, error) {
	mutate := func(Trial) (Trial, error) {
		if err := b.Revert(b.settings.Start); err != nil {
			return Trial{}, err
		}
		if _, err := b.RollBaseline(); err != nil {
			return Trial{}, err
		}
		if _, err := b.Balance(); err != nil {
			if errors.Is(err, ErrBudgetUnreachable) {
				return Trial{}, fmt.Errorf("%w: %w", search.ErrSkip, err)
			}
			return Trial{}, err
		}
		return Trial{Vector: b.vector, Budget: b.budget}, nil
	}
	budget := func(t Trial) int { return t.Budget }

	initial := Trial{Vector: b.vector, Budget: b.budget}
	// a skipped round keeps the non-zero initial budget, so it never converges
	if initial.Budget == 0 {
		initial.Budget = 1
	}

	res, err := search.Run(ctx, initial, mutate, budget, 0, opts)
	if err != nil {
		return res.Candidate, fmt.Errorf("balanced array: %w", err)
	}
	return res.Candidate, nil
}

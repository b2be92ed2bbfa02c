// Package search runs a bounded mutate/score/check loop until a candidate's
// score matches a target.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrNotConverged is returned when the iteration cap or the context
	// ends the search before the target score was reached.
	ErrNotConverged = errors.New("search: did not converge")

	// ErrSkip marks a mutation that could not be applied. Run counts it
	// and scores the candidate as is.
	ErrSkip = errors.New("search: mutation skipped")
)

// DefaultMaxIterations is used when Options.MaxIterations is zero.
const DefaultMaxIterations = 10_000

// Candidate is anything that can hand out an independent copy of itself.
type Candidate[C any] interface {
	Clone() C
}

// Mutator perturbs a candidate and returns the perturbed version. Returning
// an error wrapping ErrSkip keeps the candidate and counts a skip; any other
// error aborts the search.
type Mutator[C any] func(C) (C, error)

// ScoreFunc maps a candidate onto a comparable score.
type ScoreFunc[C any, S comparable] func(C) S

// Options bounds a search.
type Options struct {
	// MinIterations is the first round that checks for convergence.
	// Rounds count from 1, so 0 and 1 both check every round. A loop that
	// counts from 0, increments after checking and checks while the count
	// exceeds N first checks on round N+2; pass N+2 to match it.
	MinIterations int
	// MaxIterations caps the number of rounds. 0 means DefaultMaxIterations.
	MaxIterations int
	// Timeout bounds the wall time of the search. 0 means no timeout.
	Timeout time.Duration
}

// Outcome is how a search terminated.
type Outcome int

const (
	Converged Outcome = iota
	Exhausted
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the last candidate a search produced together with its score.
// On a non-converged outcome Candidate holds the final attempt.
type Result[C any, S comparable] struct {
	Candidate  C
	Score      S
	Iterations int
	Skipped    int
	Outcome    Outcome
}

// Run clones initial, then on every round mutates the working candidate and,
// once the round reaches opts.MinIterations, compares its score with target.
// Rounds are numbered from 1.
func Run[C Candidate[C], S comparable](
	ctx context.Context,
	initial C,
	mutate Mutator[C],
	score ScoreFunc[C, S],
	target S,
	opts Options,
) (Result[C, S], error) {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	res := Result[C, S]{Candidate: initial.Clone()}

	for round := 1; round <= opts.MaxIterations; round++ {
		if err := ctx.Err(); err != nil {
			res.Outcome = Cancelled
			return res, fmt.Errorf("%w after %d rounds: %w", ErrNotConverged, res.Iterations, err)
		}
		res.Iterations = round

		next, err := mutate(res.Candidate)
		switch {
		case errors.Is(err, ErrSkip):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("round %d: %w", round, err)
		default:
			res.Candidate = next
		}

		if round < opts.MinIterations {
			continue
		}

		res.Score = score(res.Candidate)
		if res.Score == target {
			res.Outcome = Converged
			slog.Debug("search converged", "rounds", round, "skipped", res.Skipped)
			return res, nil
		}
	}

	res.Outcome = Exhausted
	slog.Debug("search exhausted", "rounds", res.Iterations, "skipped", res.Skipped)
	return res, fmt.Errorf("%w: %d rounds", ErrNotConverged, res.Iterations)
}

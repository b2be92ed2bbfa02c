package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n    int
	tags []string
}

func (c counter) Clone() counter {
	c.tags = append([]string(nil), c.tags...)
	return c
}

func inc(c counter) (counter, error) {
	c.n++
	return c, nil
}

func value(c counter) int { return c.n }

func TestRun_ConvergesOnTarget(t *testing.T) {
	res, err := Run(context.Background(), counter{}, inc, value, 5, Options{})
	require.NoError(t, err)
	assert.Equal(t, Converged, res.Outcome)
	assert.Equal(t, 5, res.Iterations)
	assert.Equal(t, 5, res.Score)
	assert.Equal(t, 5, res.Candidate.n)
}

func TestRun_MinIterationsGate(t *testing.T) {
	// mutation never changes the score, so the first checked round converges
	keep := func(c counter) (counter, error) { return c, nil }

	tests := []struct {
		name      string
		min       int
		wantRound int
	}{
		{name: "no gate", min: 0, wantRound: 1},
		{name: "gate of one", min: 1, wantRound: 1},
		{name: "gate of ten", min: 10, wantRound: 10},
		{name: "gate of ten counted from zero", min: 10 + 2, wantRound: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(context.Background(), counter{n: 3}, keep, value, 3, Options{MinIterations: tt.min})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRound, res.Iterations)
			assert.Equal(t, Converged, res.Outcome)
		})
	}

	t.Run("gate past the cap never checks", func(t *testing.T) {
		res, err := Run(context.Background(), counter{n: 3}, keep, value, 3, Options{MinIterations: 20, MaxIterations: 15})
		assert.ErrorIs(t, err, ErrNotConverged)
		assert.Equal(t, 15, res.Iterations)
		assert.Equal(t, Exhausted, res.Outcome)
	})
}

func TestRun_Exhausted(t *testing.T) {
	res, err := Run(context.Background(), counter{}, inc, value, -1, Options{MaxIterations: 50})
	require.ErrorIs(t, err, ErrNotConverged)
	assert.Equal(t, Exhausted, res.Outcome)
	assert.Equal(t, 50, res.Iterations)
	assert.Equal(t, 50, res.Candidate.n)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, counter{}, inc, value, 5, Options{})
	require.ErrorIs(t, err, ErrNotConverged)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Cancelled, res.Outcome)
}

func TestRun_Timeout(t *testing.T) {
	slow := func(c counter) (counter, error) {
		time.Sleep(time.Millisecond)
		return c, nil
	}

	res, err := Run(context.Background(), counter{}, slow, value, 1, Options{
		MaxIterations: 1_000_000,
		Timeout:       20 * time.Millisecond,
	})
	require.ErrorIs(t, err, ErrNotConverged)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Cancelled, res.Outcome)
}

func TestRun_SkipAndAbort(t *testing.T) {
	t.Run("skips are counted", func(t *testing.T) {
		round := 0
		mutate := func(c counter) (counter, error) {
			round++
			if round%2 == 0 {
				return c, ErrSkip
			}
			c.n++
			return c, nil
		}
		res, err := Run(context.Background(), counter{}, mutate, value, 3, Options{})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Iterations)
		assert.Equal(t, 2, res.Skipped)
	})

	t.Run("other errors abort", func(t *testing.T) {
		boom := errors.New("boom")
		fail := func(c counter) (counter, error) { return c, boom }
		_, err := Run(context.Background(), counter{}, fail, value, 3, Options{})
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotConverged)
	})
}

func TestRun_BaselineIsCloned(t *testing.T) {
	base := counter{tags: []string{"a"}}
	mutate := func(c counter) (counter, error) {
		c.tags[0] = "changed"
		c.n++
		return c, nil
	}

	_, err := Run(context.Background(), base, mutate, value, 1, Options{})
	require.NoError(t, err)
	assert.Equal(t, "a", base.tags[0])
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "converged", Converged.String())
	assert.Equal(t, "exhausted", Exhausted.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}

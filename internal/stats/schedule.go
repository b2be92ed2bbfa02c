package stats

import (
	"github.com/udisondev/statforge/internal/rangemap"
)

// Schedule maps a score to the price of the single step that reaches it
// from below. Raising v to v+1 costs schedule[v+1]; lowering v to v-1 refunds
// schedule[v]. Scores outside the schedule cannot be moved to or from.
type Schedule = rangemap.Map[int, int]

// DefaultScheduleRows is the 5e point-buy price list extended with 4e costs
// above 15 and a cost cliff from 19 up.
//
// The 19-30 tier is a soft ceiling: player arrays capped at 18 never reach it,
// while entities allowed up to 30 can still buy past 18 at a prohibitive price.
var DefaultScheduleRows = []rangemap.Row[int, int]{
	{Low: 4, High: 13, Value: 1},
	{Low: 14, High: 15, Value: 2},
	{Low: 16, High: 17, Value: 3},
	{Low: 18, High: 18, Value: 4},
	{Low: 19, High: 30, Value: 100},
}

// DefaultSchedule builds a fresh Schedule from DefaultScheduleRows.
func DefaultSchedule() *Schedule {
	return rangemap.MustFromRows(DefaultScheduleRows)
}

// NewSchedule builds a Schedule from rows; overlapping rows fail with
// rangemap.ErrOverlap.
func NewSchedule(rows []rangemap.Row[int, int]) (*Schedule, error) {
	return rangemap.FromRows(rows)
}

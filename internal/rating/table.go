// Package rating computes challenge ratings from defensive and offensive
// profiles using the per-rating benchmark table.
package rating

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/statforge/internal/rangemap"
)

var (
	// ErrUnknownRating is returned for a rating that has no row in the table.
	ErrUnknownRating = errors.New("rating: unknown challenge rating")

	// ErrInvalidTable is returned by NewTable for unusable rows.
	ErrInvalidTable = errors.New("rating: invalid table")
)

// CR is a challenge rating. Ratings below 1 are fractions.
type CR float64

// ParseCR accepts "1/8", "0.125", "3".
func ParseCR(s string) (CR, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.Atoi(num)
		d, err2 := strconv.Atoi(den)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, fmt.Errorf("%w: %q", ErrUnknownRating, s)
		}
		return CR(float64(n) / float64(d)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRating, s)
	}
	return CR(f), nil
}

func (c CR) String() string {
	switch c {
	case 0.125:
		return "1/8"
	case 0.25:
		return "1/4"
	case 0.5:
		return "1/2"
	}
	return strconv.FormatFloat(float64(c), 'g', -1, 64)
}

// MarshalText implements encoding.TextMarshaler.
func (c CR) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CR) UnmarshalText(b []byte) error {
	parsed, err := ParseCR(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Tier is one row of the benchmark table.
type Tier struct {
	Rating           CR
	ProficiencyBonus int
	ArmorClass       int
	HitPoints        rangemap.Range[int]
	AttackBonus      int
	DamagePerRound   rangemap.Range[int]
	SaveDC           int
	XP               int
}

// DefaultTiers is the monster statistics by challenge rating table.
// Hit points 806-807 fall between the last two rows.
var DefaultTiers = []Tier{
	{0, 2, 13, rangemap.Span(1, 6), 3, rangemap.Span(0, 1), 13, 10},
	{0.125, 2, 13, rangemap.Span(7, 25), 3, rangemap.Span(2, 3), 13, 25},
	{0.25, 2, 13, rangemap.Span(26, 49), 3, rangemap.Span(4, 5), 13, 50},
	{0.5, 2, 13, rangemap.Span(50, 70), 3, rangemap.Span(6, 8), 13, 100},
	{1, 2, 13, rangemap.Span(71, 85), 3, rangemap.Span(9, 14), 13, 200},
	{2, 2, 13, rangemap.Span(86, 100), 3, rangemap.Span(15, 20), 13, 450},
	{3, 2, 13, rangemap.Span(101, 115), 4, rangemap.Span(21, 26), 13, 700},
	{4, 2, 14, rangemap.Span(116, 130), 5, rangemap.Span(27, 32), 14, 1100},
	{5, 3, 15, rangemap.Span(131, 145), 6, rangemap.Span(33, 38), 15, 1800},
	{6, 3, 15, rangemap.Span(146, 160), 6, rangemap.Span(39, 44), 15, 2300},
	{7, 3, 15, rangemap.Span(161, 175), 6, rangemap.Span(45, 50), 15, 2900},
	{8, 3, 16, rangemap.Span(176, 190), 7, rangemap.Span(51, 56), 16, 3900},
	{9, 4, 16, rangemap.Span(191, 205), 7, rangemap.Span(57, 62), 16, 5000},
	{10, 4, 17, rangemap.Span(206, 220), 7, rangemap.Span(63, 68), 16, 5900},
	{11, 4, 17, rangemap.Span(221, 235), 8, rangemap.Span(69, 74), 17, 7200},
	{12, 4, 17, rangemap.Span(236, 250), 8, rangemap.Span(75, 80), 17, 8400},
	{13, 5, 18, rangemap.Span(251, 265), 8, rangemap.Span(81, 86), 18, 10000},
	{14, 5, 18, rangemap.Span(266, 280), 8, rangemap.Span(87, 92), 18, 11500},
	{15, 5, 18, rangemap.Span(281, 295), 8, rangemap.Span(93, 98), 18, 13000},
	{16, 5, 18, rangemap.Span(296, 310), 9, rangemap.Span(99, 104), 18, 15000},
	{17, 6, 19, rangemap.Span(311, 325), 10, rangemap.Span(105, 110), 19, 18000},
	{18, 6, 19, rangemap.Span(326, 340), 10, rangemap.Span(111, 116), 19, 20000},
	{19, 6, 19, rangemap.Span(341, 355), 10, rangemap.Span(117, 122), 19, 22000},
	{20, 6, 19, rangemap.Span(356, 400), 10, rangemap.Span(123, 140), 19, 25000},
	{21, 7, 19, rangemap.Span(401, 445), 11, rangemap.Span(141, 158), 20, 33000},
	{22, 7, 19, rangemap.Span(446, 490), 11, rangemap.Span(159, 176), 20, 41000},
	{23, 7, 19, rangemap.Span(491, 535), 11, rangemap.Span(177, 194), 20, 50000},
	{24, 7, 19, rangemap.Span(536, 580), 12, rangemap.Span(195, 212), 21, 62000},
	{25, 8, 19, rangemap.Span(581, 625), 12, rangemap.Span(213, 230), 21, 75000},
	{26, 8, 19, rangemap.Span(626, 670), 12, rangemap.Span(231, 248), 21, 90000},
	{27, 8, 19, rangemap.Span(671, 715), 13, rangemap.Span(249, 266), 22, 105000},
	{28, 8, 19, rangemap.Span(716, 760), 13, rangemap.Span(267, 284), 22, 120000},
	{29, 9, 19, rangemap.Span(761, 805), 13, rangemap.Span(285, 302), 22, 135000},
	{30, 9, 19, rangemap.Span(808, 850), 14, rangemap.Span(303, 320), 23, 155000},
}

// Table indexes tiers by hit points and damage per round.
type Table struct {
	tiers  []Tier
	hp     *rangemap.Map[int, int]
	dpr    *rangemap.Map[int, int]
	byRate map[CR]int
}

// NewTable builds a table from tiers ordered by rating. Overlapping hit
// point or damage ranges are rejected.
func NewTable(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}

	t := &Table{
		tiers:  tiers,
		hp:     rangemap.New[int, int](),
		dpr:    rangemap.New[int, int](),
		byRate: make(map[CR]int, len(tiers)),
	}
	for i, tier := range tiers {
		if i > 0 && tier.Rating <= tiers[i-1].Rating {
			return nil, fmt.Errorf("%w: rating %v out of order", ErrInvalidTable, tier.Rating)
		}
		if err := t.hp.Insert(tier.HitPoints, i); err != nil {
			return nil, fmt.Errorf("%w: rating %v hit points: %w", ErrInvalidTable, tier.Rating, err)
		}
		if err := t.dpr.Insert(tier.DamagePerRound, i); err != nil {
			return nil, fmt.Errorf("%w: rating %v damage: %w", ErrInvalidTable, tier.Rating, err)
		}
		t.byRate[tier.Rating] = i
	}
	return t, nil
}

// DefaultTable builds a table from DefaultTiers.
func DefaultTable() *Table {
	t, err := NewTable(DefaultTiers)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.tiers) }

// Tier returns the row at index row, clamped to the table.
func (t *Table) Tier(row int) Tier {
	return t.tiers[t.clampRow(row)]
}

// Row returns the row index of a rating.
func (t *Table) Row(cr CR) (int, error) {
	row, ok := t.byRate[cr]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownRating, cr)
	}
	return row, nil
}

// ForRating returns the tier of a rating.
func (t *Table) ForRating(cr CR) (Tier, error) {
	row, err := t.Row(cr)
	if err != nil {
		return Tier{}, err
	}
	return t.tiers[row], nil
}

// XP returns the experience award of a rating.
func (t *Table) XP(cr CR) (int, error) {
	tier, err := t.ForRating(cr)
	if err != nil {
		return 0, err
	}
	return tier.XP, nil
}

// DefenseRow returns the row matching hp, shifted one row per two points of
// armor class above or below that row's benchmark.
func (t *Table) DefenseRow(hp, ac int) int {
	row := lookupRow(t.hp, hp)
	return t.clampRow(row + (ac-t.tiers[row].ArmorClass)/2)
}

// OffenseRow returns the row matching dpr, shifted by the better of the
// attack bonus and save DC differences.
func (t *Table) OffenseRow(dpr, attackBonus, saveDC int) int {
	row := lookupRow(t.dpr, dpr)
	tier := t.tiers[row]
	byAttack := row + (attackBonus-tier.AttackBonus)/2
	bySave := row + (saveDC-tier.SaveDC)/2
	return t.clampRow(max(byAttack, bySave))
}

// lookupRow resolves v to a row. Values below the table map to the first
// row; values in a gap or above the table map to the nearest row below.
func lookupRow(m *rangemap.Map[int, int], v int) int {
	if row, err := m.Get(v); err == nil {
		return row
	}
	bounds, ok := m.Bounds()
	if !ok || v < bounds.Low {
		return 0
	}
	row := 0
	m.Ascend(func(r rangemap.Range[int], i int) bool {
		if r.High >= v {
			return false
		}
		row = i
		return true
	})
	return row
}

func (t *Table) clampRow(row int) int {
	return max(0, min(row, len(t.tiers)-1))
}

// Package dice provides dice expressions and the randomness source shared by
// the balancer, the search loop and the variant generator.
package dice

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidDice is returned when parsing a malformed dice expression.
var ErrInvalidDice = errors.New("dice: invalid expression")

// Dice is Count dice with Sides faces each, e.g. 4d6.
type Dice struct {
	Count int
	Sides int
}

// New returns count dice of sides faces.
func New(count, sides int) Dice {
	return Dice{Count: count, Sides: sides}
}

// Parse reads an "NdS" expression. A missing count ("d8") means one die.
func Parse(s string) (Dice, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	countStr, sidesStr, ok := strings.Cut(s, "d")
	if !ok {
		return Dice{}, fmt.Errorf("%w: %q", ErrInvalidDice, s)
	}

	count := 1
	if countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return Dice{}, fmt.Errorf("%w: %q: %v", ErrInvalidDice, s, err)
		}
		count = n
	}
	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return Dice{}, fmt.Errorf("%w: %q: %v", ErrInvalidDice, s, err)
	}

	d := Dice{Count: count, Sides: sides}
	if !d.Valid() {
		return Dice{}, fmt.Errorf("%w: %q", ErrInvalidDice, s)
	}
	return d, nil
}

// Valid reports whether the dice can be rolled.
func (d Dice) Valid() bool {
	return d.Count >= 0 && d.Sides > 0
}

func (d Dice) String() string {
	return fmt.Sprintf("%dd%d", d.Count, d.Sides)
}

// MarshalText implements encoding.TextMarshaler ("2d6").
func (d Dice) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dice) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Average returns the expected sum of a roll.
func (d Dice) Average() float64 {
	return float64(d.Count) * float64(d.Sides+1) / 2
}

// Max returns the highest possible sum.
func (d Dice) Max() int {
	return d.Count * d.Sides
}

// Roll rolls every die and returns the individual results.
func (d Dice) Roll(src Source) []int {
	out := make([]int, d.Count)
	for i := range out {
		out[i] = src.IntN(d.Sides) + 1
	}
	return out
}

// Sum rolls the dice and returns the total.
func (d Dice) Sum(src Source) int {
	total := 0
	for range d.Count {
		total += src.IntN(d.Sides) + 1
	}
	return total
}

// KeepHighest rolls the dice and sums the best keep results
// ("4d6 drop lowest" is New(4, 6).KeepHighest(src, 3)).
func (d Dice) KeepHighest(src Source, keep int) int {
	rolls := d.Roll(src)
	if keep >= len(rolls) {
		return sum(rolls)
	}
	if keep <= 0 {
		return 0
	}
	slices.Sort(rolls)
	return sum(rolls[len(rolls)-keep:])
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

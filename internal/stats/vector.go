// Package stats holds the six-ability attribute vector, the ability
// modifier rule and the point-buy budget balancer.
package stats

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrShortVector is returned when fewer than six ability scores are supplied.
var ErrShortVector = errors.New("stats: vector needs six abilities")

// Ability indexes a Vector.
type Ability int

const (
	Strength Ability = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma

	// NumAbilities is the length of a Vector.
	NumAbilities = 6
)

var abilityNames = [NumAbilities]string{"STR", "DEX", "CON", "INT", "WIS", "CHA"}

var abilityLong = [NumAbilities]string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

func (a Ability) String() string {
	if a < 0 || int(a) >= NumAbilities {
		return fmt.Sprintf("Ability(%d)", int(a))
	}
	return abilityNames[a]
}

// ParseAbility accepts short ("STR") or long ("strength") names in any case.
func ParseAbility(s string) (Ability, error) {
	s = strings.TrimSpace(s)
	for i := range NumAbilities {
		if strings.EqualFold(s, abilityNames[i]) || strings.EqualFold(s, abilityLong[i]) {
			return Ability(i), nil
		}
	}
	return 0, fmt.Errorf("stats: unknown ability %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Ability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Ability) UnmarshalText(b []byte) error {
	parsed, err := ParseAbility(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Vector is a value-typed set of six ability scores in STR, DEX, CON, INT,
// WIS, CHA order. Copying a Vector never aliases.
type Vector [NumAbilities]int

// Fill returns a vector with every ability set to v.
func Fill(v int) Vector {
	var out Vector
	for i := range out {
		out[i] = v
	}
	return out
}

// VectorFromSlice copies the first six values of scores.
func VectorFromSlice(scores []int) (Vector, error) {
	var v Vector
	if len(scores) < NumAbilities {
		return v, fmt.Errorf("%w: got %d", ErrShortVector, len(scores))
	}
	copy(v[:], scores)
	return v, nil
}

// Get returns the score of a.
func (v Vector) Get(a Ability) int {
	return v[a]
}

// With returns a copy of v with a set to score.
func (v Vector) With(a Ability, score int) Vector {
	v[a] = score
	return v
}

// Modifier returns the modifier of a's score.
func (v Vector) Modifier(a Ability) int {
	return Modifier(v[a])
}

// Lowest returns the ability with the lowest score; ties go to the first.
func (v Vector) Lowest() Ability {
	lowest := Strength
	for i := range v {
		if v[i] < v[lowest] {
			lowest = Ability(i)
		}
	}
	return lowest
}

// Sorted returns the scores from highest to lowest.
func (v Vector) Sorted() []int {
	out := slices.Clone(v[:])
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// Sum returns the total of all scores.
func (v Vector) Sum() int {
	total := 0
	for _, s := range v {
		total += s
	}
	return total
}

// String renders "STR 15 (+2) DEX 8 (-1) ...".
func (v Vector) String() string {
	var b strings.Builder
	for i, s := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s %d (%+d)", Ability(i), s, Modifier(s))
	}
	return b.String()
}

// MarshalYAML writes the vector as a plain sequence.
func (v Vector) MarshalYAML() (any, error) {
	return v[:], nil
}

// UnmarshalYAML reads a sequence of at least six scores.
func (v *Vector) UnmarshalYAML(value *yaml.Node) error {
	var scores []int
	if err := value.Decode(&scores); err != nil {
		return err
	}
	parsed, err := VectorFromSlice(scores)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*v = parsed
	return nil
}

// Modifier converts a raw ability score into its modifier:
// floor((score-10)/2), with 10 and 11 pinned to 0.
func Modifier(score int) int {
	if score == 10 || score == 11 {
		return 0
	}
	return floorDiv(score-10, 2)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

package rating

import (
	"maps"
	"math"
	"slices"
)

// Profile is everything the composite rating looks at.
type Profile struct {
	HitPoints      int
	ArmorClass     int
	DamagePerRound int
	AttackBonus    int
	SaveDC         int

	SavingThrows        int
	Resistances         []string
	Vulnerabilities     []string
	DamageImmunities    []string
	ConditionImmunities []string
	Movement            map[string]int // feet
	Senses              map[string]int // feet

	// Spell offense competes with the weapon numbers above; the better of
	// each pair is rated.
	SpellDamagePerRound int
	SpellAttackBonus    int
	SpellSaveDC         int

	TraitModifiers    []float64
	RechargeDice      []int // lowest recharge roll per recharging trait, 2..6
	InnateSpellLevels []int
	SpellLevel        int // highest spell slot level
}

// Offense returns the damage, attack bonus and save DC the offense row is
// read from.
func (p Profile) Offense() (dpr, attackBonus, saveDC int) {
	return max(p.DamagePerRound, p.SpellDamagePerRound),
		max(p.AttackBonus, p.SpellAttackBonus),
		max(p.SaveDC, p.SpellSaveDC)
}

// Adjustments weight the traits that nudge the composite rating.
// Movement and senses weights apply per 30 feet.
type Adjustments struct {
	SavingThrow         float64            `yaml:"saving_throw"`
	Resistances         map[string]float64 `yaml:"resistances"`
	DamageImmunities    map[string]float64 `yaml:"damage_immunities"`
	ConditionImmunities map[string]float64 `yaml:"condition_immunities"`
	Movement            map[string]float64 `yaml:"movement"`
	Senses              map[string]float64 `yaml:"senses"`

	// Traits scales each trait modifier.
	Traits float64 `yaml:"traits"`
	// Recharge applies per recharging trait, times (7 - die).
	Recharge float64 `yaml:"recharge"`
	// InnateCasting applies per innate spell level.
	InnateCasting float64 `yaml:"innate_casting"`
	// Spellcasting applies per level of the highest spell slot.
	Spellcasting float64 `yaml:"spellcasting"`
}

// DefaultAdjustments returns the stock weights. Vulnerabilities count as
// negative resistances.
func DefaultAdjustments() Adjustments {
	return Adjustments{
		SavingThrow: 0.25,
		Resistances: map[string]float64{
			"cold":   0.25,
			"fire":   0.25,
			"poison": 0.25,
		},
		DamageImmunities: map[string]float64{
			"cold":   0.5,
			"poison": 0.5,
		},
		ConditionImmunities: map[string]float64{
			"poisoned": 0.5,
		},
		Movement: map[string]float64{
			"fly":  0.2,
			"walk": 0.1,
		},
		Senses: map[string]float64{
			"blindsight": 0.25,
			"darkvision": 0.1,
		},
		Traits:        0.05,
		Recharge:      1.1,
		InnateCasting: 0.5,
		Spellcasting:  0.5,
	}
}

// Breakdown shows how a rating was reached.
type Breakdown struct {
	Defense int
	Offense int

	SavingThrows        float64
	Resistances         float64
	Vulnerabilities     float64
	DamageImmunities    float64
	ConditionImmunities float64
	Movement            float64
	Senses              float64
	Traits              float64
	Recharge            float64
	InnateCasting       float64
	Spellcasting        float64

	Row    int
	Rating CR
}

// Modifier is the sum of all trait adjustments.
func (b Breakdown) Modifier() float64 {
	return b.SavingThrows + b.Resistances + b.Vulnerabilities +
		b.DamageImmunities + b.ConditionImmunities + b.Movement + b.Senses +
		b.Traits + b.Recharge + b.InnateCasting + b.Spellcasting
}

// Rater scores profiles against a table. It is read-only after construction
// and safe for concurrent use.
type Rater struct {
	table *Table
	adj   Adjustments
}

// NewRater returns a rater over table with the given adjustment weights.
func NewRater(table *Table, adj Adjustments) *Rater {
	return &Rater{table: table, adj: adj}
}

// Table returns the underlying table.
func (r *Rater) Table() *Table { return r.table }

// Rate returns the composite challenge rating of p.
func (r *Rater) Rate(p Profile) CR {
	return r.Breakdown(p).Rating
}

// Breakdown computes the composite rating of p:
// floor(mean(defense, offense) + adjustments), clamped to the table.
// Traits without a weight count for nothing.
func (r *Rater) Breakdown(p Profile) Breakdown {
	b := Breakdown{
		Defense: r.table.DefenseRow(p.HitPoints, p.ArmorClass),
		Offense: r.table.OffenseRow(p.Offense()),
	}

	b.SavingThrows = float64(p.SavingThrows) * r.adj.SavingThrow
	b.Resistances = sumWeights(r.adj.Resistances, p.Resistances)
	b.Vulnerabilities = -sumWeights(r.adj.Resistances, p.Vulnerabilities)
	b.DamageImmunities = sumWeights(r.adj.DamageImmunities, p.DamageImmunities)
	b.ConditionImmunities = sumWeights(r.adj.ConditionImmunities, p.ConditionImmunities)
	b.Movement = perThirtyFeet(r.adj.Movement, p.Movement)
	b.Senses = perThirtyFeet(r.adj.Senses, p.Senses)

	for _, m := range p.TraitModifiers {
		b.Traits += m * r.adj.Traits
	}
	for _, die := range p.RechargeDice {
		b.Recharge += float64(7-die) * r.adj.Recharge
	}
	for _, lvl := range p.InnateSpellLevels {
		b.InnateCasting += float64(lvl) * r.adj.InnateCasting
	}
	b.Spellcasting = float64(p.SpellLevel) * r.adj.Spellcasting

	mean := float64(b.Defense+b.Offense) / 2
	b.Row = r.table.clampRow(int(math.Floor(mean + b.Modifier())))
	b.Rating = r.table.tiers[b.Row].Rating
	return b
}

func sumWeights(weights map[string]float64, keys []string) float64 {
	total := 0.0
	for _, k := range keys {
		total += weights[k]
	}
	return total
}

func perThirtyFeet(weights map[string]float64, feet map[string]int) float64 {
	total := 0.0
	// sorted so the float sum does not depend on map order
	for _, k := range slices.Sorted(maps.Keys(feet)) {
		total += weights[k] * float64(feet[k]) / 30
	}
	return total
}

package catalog

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/udisondev/statforge/internal/dice"
	"github.com/udisondev/statforge/internal/rangemap"
	"github.com/udisondev/statforge/internal/rating"
	"github.com/udisondev/statforge/internal/stats"
)

// Weapon and monster property tags used by the built-in rules.
const (
	TagFinesse = "finesse"
	TagRange   = "range"
	TagThrown  = "thrown"
	TagNoAdd   = "no_add"

	TagNoVariantWeapon = "no_variant_weapon"
	TagNoVariantArmor  = "no_variant_armor"
)

// Tags is a set of capability tags kept as a list.
type Tags []string

// Has reports whether tag is present.
func (t Tags) Has(tag string) bool {
	return slices.Contains(t, tag)
}

// Size is a creature size.
type Size string

const (
	Tiny       Size = "tiny"
	Small      Size = "small"
	Medium     Size = "medium"
	Large      Size = "large"
	Huge       Size = "huge"
	Gargantuan Size = "gargantuan"
)

var sizeHitDie = map[Size]int{
	Tiny: 4, Small: 6, Medium: 8, Large: 10, Huge: 12, Gargantuan: 20,
}

var sizeDamageScale = map[Size]int{
	Large: 1, Huge: 2, Gargantuan: 3,
}

// HitDie returns the hit die sides for the size, 0 if unknown.
func (s Size) HitDie() int { return sizeHitDie[s] }

// DamageScale is the weapon scale a creature of this size wields.
func (s Size) DamageScale() int { return sizeDamageScale[s] }

// Valid reports whether s is a known size.
func (s Size) Valid() bool {
	_, ok := sizeHitDie[s]
	return ok
}

// Requirement is a minimum ability score.
type Requirement struct {
	Ability stats.Ability `yaml:"ability"`
	Min     int           `yaml:"min"`
}

// Weapon is a weapon record. Damage maps a scale to damage dice.
type Weapon struct {
	Name       string                        `yaml:"name"`
	DamageType string                        `yaml:"damage_type"`
	Damage     *rangemap.Map[int, dice.Dice] `yaml:"damage"`
	Properties Tags                          `yaml:"properties,omitempty"`
	Requires   Tags                          `yaml:"requires,omitempty"`
	Range      string                        `yaml:"range,omitempty"`
}

// DiceAt returns the damage dice at scale.
func (w Weapon) DiceAt(scale int) (dice.Dice, error) {
	d, err := w.Damage.Get(scale)
	if err != nil {
		return dice.Dice{}, fmt.Errorf("%s scale %d: %w", w.Name, scale, err)
	}
	return d, nil
}

// Item returns the rule view of w.
func (w Weapon) Item() Item {
	return Item{Name: w.Name, Properties: w.Properties, Requires: w.Requires}
}

func (w Weapon) validate() error {
	if w.Name == "" {
		return fmt.Errorf("%w: weapon without name", ErrInvalidRecord)
	}
	if w.Damage == nil || w.Damage.Len() == 0 {
		return fmt.Errorf("%w: weapon %q has no damage table", ErrInvalidRecord, w.Name)
	}
	return nil
}

// Armor is an armor record. Bonus maps a scale to the armor class bonus.
type Armor struct {
	Name                string                  `yaml:"name"`
	Slot                string                  `yaml:"slot"`
	Bonus               *rangemap.Map[int, int] `yaml:"bonus"`
	DexterityCap        *int                    `yaml:"dexterity_cap,omitempty"`
	Requires            Tags                    `yaml:"requires,omitempty"`
	Prerequisite        *Requirement            `yaml:"prerequisite,omitempty"`
	StealthDisadvantage bool                    `yaml:"stealth_disadvantage,omitempty"`
}

// BonusAt returns the armor class bonus at scale.
func (a Armor) BonusAt(scale int) (int, error) {
	b, err := a.Bonus.Get(scale)
	if err != nil {
		return 0, fmt.Errorf("%s scale %d: %w", a.Name, scale, err)
	}
	return b, nil
}

// Item returns the rule view of a.
func (a Armor) Item() Item {
	return Item{Name: a.Name, Requires: a.Requires, Slot: a.Slot, Prerequisite: a.Prerequisite}
}

func (a Armor) validate() error {
	switch {
	case a.Name == "":
		return fmt.Errorf("%w: armor without name", ErrInvalidRecord)
	case a.Slot == "":
		return fmt.Errorf("%w: armor %q has no slot", ErrInvalidRecord, a.Name)
	case a.Bonus == nil || a.Bonus.Len() == 0:
		return fmt.Errorf("%w: armor %q has no bonus table", ErrInvalidRecord, a.Name)
	}
	return nil
}

// Monster is a monster template.
type Monster struct {
	Name            string          `yaml:"name"`
	Size            Size            `yaml:"size"`
	HitDiceCount    int             `yaml:"hit_dice"`
	ExpectedRating  rating.CR       `yaml:"expected_rating"`
	AttacksPerRound int             `yaml:"attacks_per_round"`
	Stats           stats.Vector    `yaml:"stats"`
	SavingThrows    []stats.Ability `yaml:"saving_throws,omitempty"`
	Properties      Tags            `yaml:"properties,omitempty"`
	Weapons         []string        `yaml:"weapons,omitempty"`
	Armors          []string        `yaml:"armors,omitempty"`

	Resistances         []string       `yaml:"resistances,omitempty"`
	Vulnerabilities     []string       `yaml:"vulnerabilities,omitempty"`
	DamageImmunities    []string       `yaml:"damage_immunities,omitempty"`
	ConditionImmunities []string       `yaml:"condition_immunities,omitempty"`
	Movement            map[string]int `yaml:"movement,omitempty"`
	Senses              map[string]int `yaml:"senses,omitempty"`

	Traits        []Trait  `yaml:"traits,omitempty"`
	Spellcasting  *Casting `yaml:"spellcasting,omitempty"`
	InnateCasting *Casting `yaml:"innate_casting,omitempty"`
}

// Trait is a special ability. Modifier is its weight in the rating;
// Recharge is the lowest d6 roll that recharges it, 0 if it never does.
type Trait struct {
	Name     string  `yaml:"name"`
	Modifier float64 `yaml:"cr_modifier,omitempty"`
	Recharge int     `yaml:"recharge,omitempty"`
}

// Spell is a known spell. Level 0 is a cantrip; only cantrips with
// damage count toward offense.
type Spell struct {
	Name   string     `yaml:"name"`
	Level  int        `yaml:"level"`
	Damage *dice.Dice `yaml:"damage,omitempty"`
}

// Casting is a spell list cast with one ability.
type Casting struct {
	Ability stats.Ability `yaml:"ability"`
	Spells  []Spell       `yaml:"spells"`
}

// MaxLevel returns the highest spell level in the list.
func (c Casting) MaxLevel() int {
	lvl := 0
	for _, s := range c.Spells {
		lvl = max(lvl, s.Level)
	}
	return lvl
}

// CantripDamage returns the best average damage of a damaging cantrip.
func (c Casting) CantripDamage() float64 {
	best := 0.0
	for _, s := range c.Spells {
		if s.Level == 0 && s.Damage != nil {
			best = max(best, s.Damage.Average())
		}
	}
	return best
}

func (c Casting) validate(monster string) error {
	for _, s := range c.Spells {
		switch {
		case s.Name == "":
			return fmt.Errorf("%w: monster %q has a spell without name", ErrInvalidRecord, monster)
		case s.Level < 0 || s.Level > 9:
			return fmt.Errorf("%w: monster %q spell %q has level %d", ErrInvalidRecord, monster, s.Name, s.Level)
		case s.Damage != nil && !s.Damage.Valid():
			return fmt.Errorf("%w: monster %q spell %q has bad damage", ErrInvalidRecord, monster, s.Name)
		}
	}
	return nil
}

// HitDice returns the hit dice implied by size and count.
func (m Monster) HitDice() dice.Dice {
	return dice.New(m.HitDiceCount, m.Size.HitDie())
}

func (m Monster) validate() error {
	switch {
	case m.Name == "":
		return fmt.Errorf("%w: monster without name", ErrInvalidRecord)
	case !m.Size.Valid():
		return fmt.Errorf("%w: monster %q has unknown size %q", ErrInvalidRecord, m.Name, m.Size)
	case m.HitDiceCount < 1:
		return fmt.Errorf("%w: monster %q needs at least one hit die", ErrInvalidRecord, m.Name)
	case m.AttacksPerRound < 1:
		return fmt.Errorf("%w: monster %q needs at least one attack", ErrInvalidRecord, m.Name)
	}

	for _, t := range m.Traits {
		if t.Name == "" {
			return fmt.Errorf("%w: monster %q has a trait without name", ErrInvalidRecord, m.Name)
		}
		if t.Recharge != 0 && (t.Recharge < 2 || t.Recharge > 6) {
			return fmt.Errorf("%w: monster %q trait %q recharges on %d", ErrInvalidRecord, m.Name, t.Name, t.Recharge)
		}
	}
	for _, c := range []*Casting{m.Spellcasting, m.InnateCasting} {
		if c == nil {
			continue
		}
		if err := c.validate(m.Name); err != nil {
			return err
		}
	}
	return nil
}

// ParseCompound splits "Name_Scale" into its parts. A missing scale is 0.
func ParseCompound(compound string) (name string, scale int, err error) {
	name, raw, ok := strings.Cut(compound, "_")
	if name == "" {
		return "", 0, fmt.Errorf("%w: empty name in %q", ErrInvalidRecord, compound)
	}
	if !ok || raw == "" {
		return name, 0, nil
	}
	scale, err = strconv.Atoi(raw)
	if err != nil || scale < 0 {
		return "", 0, fmt.Errorf("%w: bad scale in %q", ErrInvalidRecord, compound)
	}
	return name, scale, nil
}

// Compound joins a name and scale, leaving scale 0 implicit.
func Compound(name string, scale int) string {
	if scale == 0 {
		return name
	}
	return name + "_" + strconv.Itoa(scale)
}

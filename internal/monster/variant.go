// Package monster derives combat numbers from monster templates and
// generates equipment and attribute variants with the same challenge rating.
package monster

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/udisondev/statforge/internal/catalog"
	"github.com/udisondev/statforge/internal/dice"
	"github.com/udisondev/statforge/internal/rating"
	"github.com/udisondev/statforge/internal/search"
	"github.com/udisondev/statforge/internal/stats"
)

// ErrIllegalEdit is returned when an equipment change breaks a catalog rule.
// It wraps search.ErrSkip.
var ErrIllegalEdit = fmt.Errorf("monster: illegal equipment edit: %w", search.ErrSkip)

// BaseArmorClass is the armor class of an unarmored creature before
// its dexterity modifier.
const BaseArmorClass = 10

// SaveDC is the save DC without spellcasting; casters add their spell
// attack bonus to it.
const SaveDC = 8

// WeaponSlot is a wielded weapon at a damage scale.
type WeaponSlot struct {
	Weapon catalog.Weapon
	Scale  int
	Dice   dice.Dice
}

func (w WeaponSlot) String() string {
	return fmt.Sprintf("%s (%s)", catalog.Compound(w.Weapon.Name, w.Scale), w.Dice)
}

// ArmorPiece is worn armor at a scale.
type ArmorPiece struct {
	Armor catalog.Armor
	Scale int
	Bonus int
}

func (a ArmorPiece) String() string {
	return fmt.Sprintf("%s (+%d)", catalog.Compound(a.Armor.Name, a.Scale), a.Bonus)
}

// Variant is a monster template with its own scores, hit points and
// equipment. Copies must go through Clone.
type Variant struct {
	Template  catalog.Monster
	Stats     stats.Vector
	Budget    int
	HitPoints int
	Weapons   []WeaponSlot
	Armors    []ArmorPiece
}

// FromTemplate resolves the template equipment against cat. Template
// equipment is trusted and skips the legality rules.
func FromTemplate(cat *catalog.Catalog, tpl catalog.Monster) (Variant, error) {
	v := Variant{Template: tpl, Stats: tpl.Stats}

	for _, compound := range tpl.Weapons {
		name, scale, err := catalog.ParseCompound(compound)
		if err != nil {
			return Variant{}, err
		}
		w, err := cat.Weapon(name)
		if err != nil {
			return Variant{}, fmt.Errorf("%s: %w", tpl.Name, err)
		}
		slot, err := newWeaponSlot(w, scale)
		if err != nil {
			return Variant{}, fmt.Errorf("%s: %w", tpl.Name, err)
		}
		v.Weapons = append(v.Weapons, slot)
	}

	for _, compound := range tpl.Armors {
		name, scale, err := catalog.ParseCompound(compound)
		if err != nil {
			return Variant{}, err
		}
		a, err := cat.Armor(name)
		if err != nil {
			return Variant{}, fmt.Errorf("%s: %w", tpl.Name, err)
		}
		piece, err := newArmorPiece(a, scale)
		if err != nil {
			return Variant{}, fmt.Errorf("%s: %w", tpl.Name, err)
		}
		v.Armors = append(v.Armors, piece)
	}

	v.HitPoints = v.AverageHitPoints()
	return v, nil
}

func newWeaponSlot(w catalog.Weapon, scale int) (WeaponSlot, error) {
	d, err := w.DiceAt(scale)
	if err != nil {
		return WeaponSlot{}, err
	}
	return WeaponSlot{Weapon: w, Scale: scale, Dice: d}, nil
}

func newArmorPiece(a catalog.Armor, scale int) (ArmorPiece, error) {
	b, err := a.BonusAt(scale)
	if err != nil {
		return ArmorPiece{}, err
	}
	return ArmorPiece{Armor: a, Scale: scale, Bonus: b}, nil
}

// Clone implements search.Candidate.
func (v Variant) Clone() Variant {
	v.Weapons = slices.Clone(v.Weapons)
	v.Armors = slices.Clone(v.Armors)
	return v
}

// HasProperty implements catalog.Holder.
func (v Variant) HasProperty(tag string) bool {
	return v.Template.Properties.Has(tag)
}

// Score implements catalog.Holder.
func (v Variant) Score(a stats.Ability) int {
	return v.Stats[a]
}

// Equipped implements catalog.Holder.
func (v Variant) Equipped(c catalog.Category) []catalog.Item {
	var out []catalog.Item
	switch c {
	case catalog.CategoryWeapons:
		for _, w := range v.Weapons {
			out = append(out, w.Weapon.Item())
		}
	case catalog.CategoryArmor:
		for _, a := range v.Armors {
			out = append(out, a.Armor.Item())
		}
	}
	return out
}

// AddWeapon equips w at scale if policy allows it.
func (v *Variant) AddWeapon(policy catalog.Policy, w catalog.Weapon, scale int) error {
	if err := policy.Check(v, w.Item()); err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalEdit, err)
	}
	slot, err := newWeaponSlot(w, scale)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalEdit, err)
	}
	v.Weapons = append(v.Weapons, slot)
	return nil
}

// RemoveWeapon drops the weapon at index i.
func (v *Variant) RemoveWeapon(i int) {
	v.Weapons = slices.Delete(v.Weapons, i, i+1)
}

// AddArmor equips a at scale if policy allows it.
func (v *Variant) AddArmor(policy catalog.Policy, a catalog.Armor, scale int) error {
	if err := policy.Check(v, a.Item()); err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalEdit, err)
	}
	piece, err := newArmorPiece(a, scale)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalEdit, err)
	}
	v.Armors = append(v.Armors, piece)
	return nil
}

// RemoveArmor drops the armor at index i.
func (v *Variant) RemoveArmor(i int) {
	v.Armors = slices.Delete(v.Armors, i, i+1)
}

// hitPoints adds the constitution bonus per hit die; never below 1.
func (v Variant) hitPoints(base int) int {
	hp := base + v.Stats.Modifier(stats.Constitution)*v.Template.HitDiceCount
	return max(hp, 1)
}

// AverageHitPoints is the rounded-up hit dice average plus constitution.
func (v Variant) AverageHitPoints() int {
	return v.hitPoints(int(math.Ceil(v.Template.HitDice().Average())))
}

// RollHitPoints rolls the hit dice plus constitution.
func (v Variant) RollHitPoints(src dice.Source) int {
	return v.hitPoints(v.Template.HitDice().Sum(src))
}

// ArmorClass sums armor bonuses and the dexterity modifier, capped by the
// strictest armor.
func (v Variant) ArmorClass() int {
	ac := BaseArmorClass
	dex := v.Stats.Modifier(stats.Dexterity)
	for _, a := range v.Armors {
		ac += a.Bonus
		if limit := a.Armor.DexterityCap; limit != nil {
			dex = min(dex, *limit)
		}
	}
	return ac + dex
}

// AttackModifier is the ability modifier a weapon attacks with: the better
// of STR and DEX for finesse, DEX for ranged, STR otherwise.
func (v Variant) AttackModifier(w catalog.Weapon) int {
	str := v.Stats.Modifier(stats.Strength)
	dex := v.Stats.Modifier(stats.Dexterity)
	switch {
	case w.Properties.Has(catalog.TagFinesse):
		return max(str, dex)
	case w.Properties.Has(catalog.TagRange):
		return dex
	default:
		return str
	}
}

// DamagePerRound is the best weapon average times attacks per round,
// rounded down. Without weapons it is 0.
func (v Variant) DamagePerRound() int {
	best := 0.0
	for _, w := range v.Weapons {
		best = max(best, w.Dice.Average()+float64(v.AttackModifier(w.Weapon)))
	}
	return int(math.Floor(best * float64(v.Template.AttacksPerRound)))
}

// AttackBonus is the best weapon modifier (at least 0) plus proficiency.
func (v Variant) AttackBonus(proficiency int) int {
	best := 0
	for _, w := range v.Weapons {
		best = max(best, v.AttackModifier(w.Weapon))
	}
	return best + proficiency
}

// Profile builds the rating input. Defense uses average hit points so that
// rolled hit points do not move the rating.
func (v Variant) Profile(table *rating.Table) rating.Profile {
	proficiency := DefaultProficiency
	if tier, err := table.ForRating(v.Template.ExpectedRating); err == nil {
		proficiency = tier.ProficiencyBonus
	}

	tpl := v.Template
	p := rating.Profile{
		HitPoints:           v.AverageHitPoints(),
		ArmorClass:          v.ArmorClass(),
		DamagePerRound:      v.DamagePerRound(),
		AttackBonus:         v.AttackBonus(proficiency),
		SaveDC:              SaveDC,
		SavingThrows:        len(tpl.SavingThrows),
		Resistances:         tpl.Resistances,
		Vulnerabilities:     tpl.Vulnerabilities,
		DamageImmunities:    tpl.DamageImmunities,
		ConditionImmunities: tpl.ConditionImmunities,
		Movement:            tpl.Movement,
		Senses:              tpl.Senses,
	}

	for _, t := range tpl.Traits {
		p.TraitModifiers = append(p.TraitModifiers, t.Modifier)
		if t.Recharge > 0 {
			p.RechargeDice = append(p.RechargeDice, t.Recharge)
		}
	}
	for _, c := range []*catalog.Casting{tpl.Spellcasting, tpl.InnateCasting} {
		if c == nil {
			continue
		}
		toHit := proficiency + v.Stats.Modifier(c.Ability)
		p.SpellAttackBonus = max(p.SpellAttackBonus, toHit)
		p.SpellSaveDC = max(p.SpellSaveDC, SaveDC+toHit)
		p.SpellDamagePerRound = max(p.SpellDamagePerRound, int(math.Floor(c.CantripDamage())))
	}
	if c := tpl.Spellcasting; c != nil {
		p.SpellLevel = c.MaxLevel()
	}
	if c := tpl.InnateCasting; c != nil {
		for _, s := range c.Spells {
			p.InnateSpellLevels = append(p.InnateSpellLevels, s.Level)
		}
	}
	return p
}

// DefaultProficiency applies when the expected rating is not in the table.
const DefaultProficiency = 2

func (v Variant) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  HP %d  AC %d\n", v.Template.Name, v.HitPoints, v.ArmorClass())
	b.WriteString(v.Stats.String())

	weapons := make([]string, 0, len(v.Weapons))
	for _, w := range v.Weapons {
		weapons = append(weapons, w.String())
	}
	armors := make([]string, 0, len(v.Armors))
	for _, a := range v.Armors {
		armors = append(armors, a.String())
	}
	fmt.Fprintf(&b, "\nweapons: %s", strings.Join(weapons, ", "))
	if len(armors) > 0 {
		fmt.Fprintf(&b, "\narmor: %s", strings.Join(armors, ", "))
	}
	return b.String()
}

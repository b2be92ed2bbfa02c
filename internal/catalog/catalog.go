// Package catalog is the read-only name index of weapons, armor and monster
// templates together with the equipment legality rules.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	// ErrUnknownEntry is returned when a name is not in the catalog.
	ErrUnknownEntry = errors.New("catalog: unknown entry")

	// ErrInvalidRecord is returned for malformed or inconsistent records.
	ErrInvalidRecord = errors.New("catalog: invalid record")
)

// Catalog is immutable after New and safe for concurrent reads.
type Catalog struct {
	weapons  map[string]Weapon
	armors   map[string]Armor
	monsters map[string]Monster
	policies map[Category]Policy
}

// New validates the records and indexes them by name. Categories without a
// policy get the default one. Monster equipment must resolve.
func New(weapons []Weapon, armors []Armor, monsters []Monster, policies []Policy) (*Catalog, error) {
	c := &Catalog{
		weapons:  make(map[string]Weapon, len(weapons)),
		armors:   make(map[string]Armor, len(armors)),
		monsters: make(map[string]Monster, len(monsters)),
		policies: make(map[Category]Policy, 2),
	}

	for _, w := range weapons {
		if err := w.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.weapons[w.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate weapon %q", ErrInvalidRecord, w.Name)
		}
		c.weapons[w.Name] = w
	}

	for _, a := range armors {
		if err := a.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.armors[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate armor %q", ErrInvalidRecord, a.Name)
		}
		c.armors[a.Name] = a
	}

	for _, p := range DefaultPolicies() {
		c.policies[p.Category] = p
	}
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		c.policies[p.Category] = p
	}

	for _, m := range monsters {
		if err := m.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.monsters[m.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate monster %q", ErrInvalidRecord, m.Name)
		}
		if err := c.checkEquipment(m); err != nil {
			return nil, fmt.Errorf("%w: monster %q: %w", ErrInvalidRecord, m.Name, err)
		}
		c.monsters[m.Name] = m
	}

	return c, nil
}

func (c *Catalog) checkEquipment(m Monster) error {
	for _, compound := range m.Weapons {
		name, scale, err := ParseCompound(compound)
		if err != nil {
			return err
		}
		w, err := c.Weapon(name)
		if err != nil {
			return err
		}
		if _, err := w.DiceAt(scale); err != nil {
			return err
		}
	}
	for _, compound := range m.Armors {
		name, scale, err := ParseCompound(compound)
		if err != nil {
			return err
		}
		a, err := c.Armor(name)
		if err != nil {
			return err
		}
		if _, err := a.BonusAt(scale); err != nil {
			return err
		}
	}
	return nil
}

// Weapon returns the weapon called name.
func (c *Catalog) Weapon(name string) (Weapon, error) {
	w, ok := c.weapons[name]
	if !ok {
		return Weapon{}, unknown("weapon", name, c.weapons)
	}
	return w, nil
}

// Armor returns the armor called name.
func (c *Catalog) Armor(name string) (Armor, error) {
	a, ok := c.armors[name]
	if !ok {
		return Armor{}, unknown("armor", name, c.armors)
	}
	return a, nil
}

// Monster returns the monster template called name.
func (c *Catalog) Monster(name string) (Monster, error) {
	m, ok := c.monsters[name]
	if !ok {
		return Monster{}, unknown("monster", name, c.monsters)
	}
	return m, nil
}

// Weapons returns every weapon sorted by name.
func (c *Catalog) Weapons() []Weapon { return sortedValues(c.weapons) }

// Armors returns every armor sorted by name.
func (c *Catalog) Armors() []Armor { return sortedValues(c.armors) }

// Monsters returns every monster template sorted by name.
func (c *Catalog) Monsters() []Monster { return sortedValues(c.monsters) }

// Policy returns the rule set of a category. Unknown categories have none.
func (c *Catalog) Policy(cat Category) Policy {
	if p, ok := c.policies[cat]; ok {
		return p
	}
	return Policy{Category: cat}
}

func sortedValues[V any](m map[string]V) []V {
	out := make([]V, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[k])
	}
	return out
}

func unknown[V any](kind, name string, m map[string]V) error {
	if s := suggest(name, slices.Collect(maps.Keys(m))); s != "" {
		return fmt.Errorf("%w: %s %q (did you mean %q?)", ErrUnknownEntry, kind, name, s)
	}
	return fmt.Errorf("%w: %s %q", ErrUnknownEntry, kind, name)
}

// suggest returns the closest candidate within a third of the name's
// length, at least two edits.
func suggest(name string, candidates []string) string {
	limit := max(2, len(name)/3)
	best, bestDist := "", limit+1
	needle := strings.ToLower(name)
	slices.Sort(candidates)
	for _, cand := range candidates {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(cand))
		if d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}

package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/statforge/internal/dice"
	"github.com/udisondev/statforge/internal/rangemap"
	"github.com/udisondev/statforge/internal/rating"
	"github.com/udisondev/statforge/internal/stats"
)

// Catalog file formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

type document struct {
	Weapons  []Weapon  `yaml:"weapons"`
	Armors   []Armor   `yaml:"armors"`
	Monsters []Monster `yaml:"monsters"`
	Policies []Policy  `yaml:"policies"`
}

// LoadFile reads a catalog file. An empty format is taken from the file
// extension, defaulting to YAML.
func LoadFile(path, format string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	if format == "" {
		format = FormatYAML
		if strings.EqualFold(filepath.Ext(path), ".json") {
			format = FormatJSON
		}
	}

	var c *Catalog
	switch format {
	case FormatYAML:
		c, err = ParseYAML(data)
	case FormatJSON:
		c, err = ParseJSON(data)
	default:
		return nil, fmt.Errorf("catalog %s: unknown format %q", path, format)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	slog.Info("loaded catalog",
		"path", path,
		"format", format,
		"weapons", len(c.weapons),
		"armors", len(c.armors),
		"monsters", len(c.monsters))
	return c, nil
}

// ParseYAML builds a catalog from a YAML document with weapons, armors,
// monsters and policies sections.
func ParseYAML(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return New(doc.Weapons, doc.Armors, doc.Monsters, doc.Policies)
}

// ParseJSON builds a catalog from the JSON form of the same document.
func ParseJSON(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidRecord)
	}
	root := gjson.ParseBytes(data)

	var doc document
	var err error
	collect := func(path string, each func(gjson.Result) error) {
		if err != nil {
			return
		}
		for i, v := range root.Get(path).Array() {
			if e := each(v); e != nil {
				err = fmt.Errorf("%s[%d]: %w", path, i, e)
				return
			}
		}
	}

	collect("weapons", func(v gjson.Result) error {
		w, err := weaponFromJSON(v)
		doc.Weapons = append(doc.Weapons, w)
		return err
	})
	collect("armors", func(v gjson.Result) error {
		a, err := armorFromJSON(v)
		doc.Armors = append(doc.Armors, a)
		return err
	})
	collect("monsters", func(v gjson.Result) error {
		m, err := monsterFromJSON(v)
		doc.Monsters = append(doc.Monsters, m)
		return err
	})
	collect("policies", func(v gjson.Result) error {
		doc.Policies = append(doc.Policies, policyFromJSON(v))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return New(doc.Weapons, doc.Armors, doc.Monsters, doc.Policies)
}

func weaponFromJSON(v gjson.Result) (Weapon, error) {
	w := Weapon{
		Name:       v.Get("name").String(),
		DamageType: v.Get("damage_type").String(),
		Properties: tagsFromJSON(v.Get("properties")),
		Requires:   tagsFromJSON(v.Get("requires")),
		Range:      v.Get("range").String(),
	}

	var rows []rangemap.Row[int, dice.Dice]
	for _, row := range v.Get("damage").Array() {
		parts := row.Array()
		if len(parts) != 3 {
			return w, fmt.Errorf("%w: weapon %q damage row %s", ErrInvalidRecord, w.Name, row.Raw)
		}
		d, err := dice.Parse(parts[2].String())
		if err != nil {
			return w, fmt.Errorf("weapon %q: %w", w.Name, err)
		}
		rows = append(rows, rangemap.Row[int, dice.Dice]{Low: int(parts[0].Int()), High: int(parts[1].Int()), Value: d})
	}

	table, err := rangemap.FromRows(rows)
	if err != nil {
		return w, fmt.Errorf("%w: weapon %q damage: %w", ErrInvalidRecord, w.Name, err)
	}
	w.Damage = table
	return w, nil
}

func armorFromJSON(v gjson.Result) (Armor, error) {
	a := Armor{
		Name:                v.Get("name").String(),
		Slot:                v.Get("slot").String(),
		Requires:            tagsFromJSON(v.Get("requires")),
		StealthDisadvantage: v.Get("stealth_disadvantage").Bool(),
	}
	if dc := v.Get("dexterity_cap"); dc.Exists() {
		a.DexterityCap = capAt(int(dc.Int()))
	}
	if p := v.Get("prerequisite"); p.Exists() {
		ab, err := stats.ParseAbility(p.Get("ability").String())
		if err != nil {
			return a, fmt.Errorf("%w: armor %q: %w", ErrInvalidRecord, a.Name, err)
		}
		a.Prerequisite = &Requirement{Ability: ab, Min: int(p.Get("min").Int())}
	}

	var rows []rangemap.Row[int, int]
	for _, row := range v.Get("bonus").Array() {
		parts := row.Array()
		if len(parts) != 3 {
			return a, fmt.Errorf("%w: armor %q bonus row %s", ErrInvalidRecord, a.Name, row.Raw)
		}
		rows = append(rows, rangemap.Row[int, int]{Low: int(parts[0].Int()), High: int(parts[1].Int()), Value: int(parts[2].Int())})
	}
	table, err := rangemap.FromRows(rows)
	if err != nil {
		return a, fmt.Errorf("%w: armor %q bonus: %w", ErrInvalidRecord, a.Name, err)
	}
	a.Bonus = table
	return a, nil
}

func monsterFromJSON(v gjson.Result) (Monster, error) {
	m := Monster{
		Name:                v.Get("name").String(),
		Size:                Size(v.Get("size").String()),
		HitDiceCount:        int(v.Get("hit_dice").Int()),
		AttacksPerRound:     int(v.Get("attacks_per_round").Int()),
		Properties:          tagsFromJSON(v.Get("properties")),
		Weapons:             stringsFromJSON(v.Get("weapons")),
		Armors:              stringsFromJSON(v.Get("armors")),
		Resistances:         stringsFromJSON(v.Get("resistances")),
		Vulnerabilities:     stringsFromJSON(v.Get("vulnerabilities")),
		DamageImmunities:    stringsFromJSON(v.Get("damage_immunities")),
		ConditionImmunities: stringsFromJSON(v.Get("condition_immunities")),
		Movement:            feetFromJSON(v.Get("movement")),
		Senses:              feetFromJSON(v.Get("senses")),
	}

	var err error
	if cr := v.Get("expected_rating"); cr.Exists() {
		if m.ExpectedRating, err = rating.ParseCR(cr.String()); err != nil {
			return m, fmt.Errorf("%w: monster %q: %w", ErrInvalidRecord, m.Name, err)
		}
	}

	var scores []int
	for _, s := range v.Get("stats").Array() {
		scores = append(scores, int(s.Int()))
	}
	if m.Stats, err = stats.VectorFromSlice(scores); err != nil {
		return m, fmt.Errorf("%w: monster %q: %w", ErrInvalidRecord, m.Name, err)
	}

	for _, s := range v.Get("saving_throws").Array() {
		ab, err := stats.ParseAbility(s.String())
		if err != nil {
			return m, fmt.Errorf("%w: monster %q: %w", ErrInvalidRecord, m.Name, err)
		}
		m.SavingThrows = append(m.SavingThrows, ab)
	}

	for _, t := range v.Get("traits").Array() {
		m.Traits = append(m.Traits, Trait{
			Name:     t.Get("name").String(),
			Modifier: t.Get("cr_modifier").Float(),
			Recharge: int(t.Get("recharge").Int()),
		})
	}
	if m.Spellcasting, err = castingFromJSON(v.Get("spellcasting")); err != nil {
		return m, fmt.Errorf("%w: monster %q: %w", ErrInvalidRecord, m.Name, err)
	}
	if m.InnateCasting, err = castingFromJSON(v.Get("innate_casting")); err != nil {
		return m, fmt.Errorf("%w: monster %q: %w", ErrInvalidRecord, m.Name, err)
	}
	return m, nil
}

func castingFromJSON(v gjson.Result) (*Casting, error) {
	if !v.Exists() {
		return nil, nil
	}
	ab, err := stats.ParseAbility(v.Get("ability").String())
	if err != nil {
		return nil, err
	}
	c := &Casting{Ability: ab}
	for _, s := range v.Get("spells").Array() {
		spell := Spell{Name: s.Get("name").String(), Level: int(s.Get("level").Int())}
		if d := s.Get("damage"); d.Exists() {
			parsed, err := dice.Parse(d.String())
			if err != nil {
				return nil, fmt.Errorf("spell %q: %w", spell.Name, err)
			}
			spell.Damage = &parsed
		}
		c.Spells = append(c.Spells, spell)
	}
	return c, nil
}

func policyFromJSON(v gjson.Result) Policy {
	p := Policy{Category: Category(v.Get("category").String())}
	for _, r := range v.Get("rules").Array() {
		p.Rules = append(p.Rules, Rule{
			Kind: RuleKind(r.Get("kind").String()),
			Tag:  r.Get("tag").String(),
			Max:  int(r.Get("max").Int()),
		})
	}
	return p
}

func tagsFromJSON(v gjson.Result) Tags {
	return Tags(stringsFromJSON(v))
}

func stringsFromJSON(v gjson.Result) []string {
	var out []string
	for _, s := range v.Array() {
		out = append(out, s.String())
	}
	return out
}

func feetFromJSON(v gjson.Result) map[string]int {
	if !v.IsObject() {
		return nil
	}
	out := make(map[string]int)
	v.ForEach(func(k, ft gjson.Result) bool {
		out[k.String()] = int(ft.Int())
		return true
	})
	return out
}

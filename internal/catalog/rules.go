package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/statforge/internal/stats"
)

// ErrRuleViolated is returned when equipping an item breaks a rule.
var ErrRuleViolated = errors.New("catalog: rule violated")

// Category groups equipment that shares a policy.
type Category string

const (
	CategoryWeapons Category = "weapons"
	CategoryArmor   Category = "armor"
)

// RuleKind selects what a Rule checks. The set is closed; catalogs carry
// the kind and its parameters, never code.
type RuleKind string

const (
	// RuleRequiresTags: the holder has every tag in the item's Requires.
	RuleRequiresTags RuleKind = "requires_tags"
	// RuleForbidTag: items carrying Tag are never added.
	RuleForbidTag RuleKind = "forbid_tag"
	// RuleMaxCount: at most Max items of the category.
	RuleMaxCount RuleKind = "max_count"
	// RuleMaxWithTag: at most Max items carrying Tag.
	RuleMaxWithTag RuleKind = "max_with_tag"
	// RuleUnique: no item twice, unless it carries Tag.
	RuleUnique RuleKind = "unique"
	// RuleSlotExclusive: one item per slot.
	RuleSlotExclusive RuleKind = "slot_exclusive"
	// RuleAbilityMinimum: the holder meets the item's prerequisite.
	RuleAbilityMinimum RuleKind = "ability_minimum"
	// RuleNoVariant: a holder with Tag keeps its equipment in this category.
	RuleNoVariant RuleKind = "no_variant"
)

// Rule is one legality check with its parameters.
type Rule struct {
	Kind RuleKind `yaml:"kind"`
	Tag  string   `yaml:"tag,omitempty"`
	Max  int      `yaml:"max,omitempty"`
}

func (r Rule) String() string {
	var b strings.Builder
	b.WriteString(string(r.Kind))
	if r.Tag != "" {
		fmt.Fprintf(&b, " tag=%s", r.Tag)
	}
	if r.Max != 0 {
		fmt.Fprintf(&b, " max=%d", r.Max)
	}
	return b.String()
}

// Validate checks that the rule has the parameters its kind needs.
func (r Rule) Validate() error {
	switch r.Kind {
	case RuleRequiresTags, RuleSlotExclusive, RuleAbilityMinimum, RuleUnique:
		return nil
	case RuleForbidTag, RuleNoVariant:
		if r.Tag == "" {
			return fmt.Errorf("%w: rule %s needs a tag", ErrInvalidRecord, r.Kind)
		}
	case RuleMaxCount:
		if r.Max < 1 {
			return fmt.Errorf("%w: rule %s needs max >= 1", ErrInvalidRecord, r.Kind)
		}
	case RuleMaxWithTag:
		if r.Tag == "" || r.Max < 1 {
			return fmt.Errorf("%w: rule %s needs a tag and max >= 1", ErrInvalidRecord, r.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown rule kind %q", ErrInvalidRecord, r.Kind)
	}
	return nil
}

// Item is what the rules see of a weapon or armor piece.
type Item struct {
	Name         string
	Properties   Tags
	Requires     Tags
	Slot         string
	Prerequisite *Requirement
}

// Holder is the creature items are equipped on.
type Holder interface {
	HasProperty(tag string) bool
	Score(a stats.Ability) int
	Equipped(c Category) []Item
}

func (r Rule) check(h Holder, c Category, it Item) error {
	violated := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s %q: %s", ErrRuleViolated, r.Kind, it.Name, fmt.Sprintf(format, args...))
	}

	switch r.Kind {
	case RuleRequiresTags:
		for _, tag := range it.Requires {
			if !h.HasProperty(tag) {
				return violated("holder lacks %s", tag)
			}
		}

	case RuleForbidTag:
		if it.Properties.Has(r.Tag) {
			return violated("tagged %s", r.Tag)
		}

	case RuleMaxCount:
		if n := len(h.Equipped(c)); n >= r.Max {
			return violated("already %d of %d", n, r.Max)
		}

	case RuleMaxWithTag:
		if !it.Properties.Has(r.Tag) {
			return nil
		}
		n := 0
		for _, e := range h.Equipped(c) {
			if e.Properties.Has(r.Tag) {
				n++
			}
		}
		if n >= r.Max {
			return violated("already %d %s of %d", n, r.Tag, r.Max)
		}

	case RuleUnique:
		if r.Tag != "" && it.Properties.Has(r.Tag) {
			return nil
		}
		for _, e := range h.Equipped(c) {
			if e.Name == it.Name {
				return violated("already equipped")
			}
		}

	case RuleSlotExclusive:
		if it.Slot == "" {
			return nil
		}
		for _, e := range h.Equipped(c) {
			if e.Slot == it.Slot {
				return violated("slot %s taken by %q", it.Slot, e.Name)
			}
		}

	case RuleAbilityMinimum:
		if p := it.Prerequisite; p != nil && h.Score(p.Ability) < p.Min {
			return violated("needs %s %d", p.Ability, p.Min)
		}
	}
	return nil
}

// Policy is the rule set of one category.
type Policy struct {
	Category Category `yaml:"category"`
	Rules    []Rule   `yaml:"rules"`
}

// Validate checks every rule.
func (p Policy) Validate() error {
	for i, r := range p.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s rule %d: %w", p.Category, i, err)
		}
	}
	return nil
}

// Check returns the first rule it would break by equipping it on h.
func (p Policy) Check(h Holder, it Item) error {
	for _, r := range p.Rules {
		if r.Kind == RuleNoVariant {
			continue
		}
		if err := r.check(h, p.Category, it); err != nil {
			return err
		}
	}
	return nil
}

// Editable reports whether variants may change h's equipment in this
// category.
func (p Policy) Editable(h Holder) bool {
	for _, r := range p.Rules {
		if r.Kind == RuleNoVariant && h.HasProperty(r.Tag) {
			return false
		}
	}
	return true
}

// DefaultPolicies returns the stock weapon and armor rules.
func DefaultPolicies() []Policy {
	return []Policy{
		{
			Category: CategoryWeapons,
			Rules: []Rule{
				{Kind: RuleForbidTag, Tag: TagNoAdd},
				{Kind: RuleRequiresTags},
				{Kind: RuleMaxCount, Max: 3},
				{Kind: RuleMaxWithTag, Tag: TagRange, Max: 1},
				{Kind: RuleUnique, Tag: TagThrown},
				{Kind: RuleNoVariant, Tag: TagNoVariantWeapon},
			},
		},
		{
			Category: CategoryArmor,
			Rules: []Rule{
				{Kind: RuleUnique},
				{Kind: RuleRequiresTags},
				{Kind: RuleSlotExclusive},
				{Kind: RuleAbilityMinimum},
				{Kind: RuleNoVariant, Tag: TagNoVariantArmor},
			},
		},
	}
}

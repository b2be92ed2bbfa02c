package catalog

import (
	"log/slog"

	"github.com/udisondev/statforge/internal/dice"
	"github.com/udisondev/statforge/internal/rangemap"
	"github.com/udisondev/statforge/internal/stats"
)

// scaled builds a damage table where scale s rolls (s+1) times the base dice.
// Scales 0..3 cover medium through gargantuan wielders.
func scaled(count, sides int) *rangemap.Map[int, dice.Dice] {
	rows := make([]rangemap.Row[int, dice.Dice], 0, 4)
	for s := range 4 {
		rows = append(rows, rangemap.Row[int, dice.Dice]{Low: s, High: s, Value: dice.New(count*(s+1), sides)})
	}
	return rangemap.MustFromRows(rows)
}

func flat(bonus int) *rangemap.Map[int, int] {
	return rangemap.MustFromRows([]rangemap.Row[int, int]{{Low: 0, High: 0, Value: bonus}})
}

func capAt(n int) *int { return &n }

// builtinWeapons: SRD weapons plus natural attacks.
func builtinWeapons() []Weapon {
	return []Weapon{
		{Name: "Club", DamageType: "bludgeoning", Damage: scaled(1, 4), Properties: Tags{"light"}, Requires: Tags{"simple"}},
		{Name: "Dagger", DamageType: "piercing", Damage: scaled(1, 4), Properties: Tags{TagFinesse, "light", TagThrown}, Requires: Tags{"simple"}, Range: "20/60"},
		{Name: "Greatclub", DamageType: "bludgeoning", Damage: scaled(1, 8), Properties: Tags{"twohanded"}, Requires: Tags{"simple", "twohanded"}},
		{Name: "Handaxe", DamageType: "slashing", Damage: scaled(1, 6), Properties: Tags{"light", TagThrown}, Requires: Tags{"simple"}, Range: "20/60"},
		{Name: "Javelin", DamageType: "piercing", Damage: scaled(1, 6), Properties: Tags{TagThrown}, Requires: Tags{"simple"}, Range: "30/120"},
		{Name: "Mace", DamageType: "bludgeoning", Damage: scaled(1, 6), Requires: Tags{"simple"}},
		{Name: "Spear", DamageType: "piercing", Damage: scaled(1, 6), Properties: Tags{TagThrown}, Requires: Tags{"simple"}, Range: "20/60"},
		{Name: "Light Crossbow", DamageType: "piercing", Damage: scaled(1, 8), Properties: Tags{TagRange, "loading", "twohanded"}, Requires: Tags{"simple"}, Range: "80/320"},
		{Name: "Shortbow", DamageType: "piercing", Damage: scaled(1, 6), Properties: Tags{TagRange, "twohanded"}, Requires: Tags{"simple"}, Range: "80/320"},
		{Name: "Battleaxe", DamageType: "slashing", Damage: scaled(1, 8), Requires: Tags{"martial"}},
		{Name: "Greataxe", DamageType: "slashing", Damage: scaled(1, 12), Properties: Tags{"heavy", "twohanded"}, Requires: Tags{"martial", "twohanded"}},
		{Name: "Greatsword", DamageType: "slashing", Damage: scaled(2, 6), Properties: Tags{"heavy", "twohanded"}, Requires: Tags{"martial", "twohanded"}},
		{Name: "Longsword", DamageType: "slashing", Damage: scaled(1, 8), Requires: Tags{"martial"}},
		{Name: "Scimitar", DamageType: "slashing", Damage: scaled(1, 6), Properties: Tags{TagFinesse, "light"}, Requires: Tags{"martial"}},
		{Name: "Shortsword", DamageType: "piercing", Damage: scaled(1, 6), Properties: Tags{TagFinesse, "light"}, Requires: Tags{"martial"}},
		{Name: "Longbow", DamageType: "piercing", Damage: scaled(1, 8), Properties: Tags{TagRange, "heavy", "twohanded"}, Requires: Tags{"martial", "twohanded"}, Range: "150/600"},
		{Name: "Bite", DamageType: "piercing", Damage: scaled(1, 6), Properties: Tags{TagFinesse, TagNoAdd}, Requires: Tags{"natural_weapon"}},
		{Name: "Claw", DamageType: "slashing", Damage: scaled(1, 4), Properties: Tags{TagNoAdd}, Requires: Tags{"natural_weapon"}},
		{Name: "Wolf Bite", DamageType: "piercing", Damage: scaled(2, 4), Properties: Tags{TagFinesse, TagNoAdd}, Requires: Tags{"natural_weapon"}},
	}
}

func builtinArmors() []Armor {
	natural := rangemap.MustFromRows([]rangemap.Row[int, int]{
		{Low: 0, High: 0, Value: 1},
		{Low: 1, High: 1, Value: 2},
		{Low: 2, High: 2, Value: 3},
		{Low: 3, High: 4, Value: 4},
		{Low: 5, High: 9, Value: 5},
	})

	return []Armor{
		{Name: "Padded", Slot: "chest", Bonus: flat(1), StealthDisadvantage: true},
		{Name: "Leather", Slot: "chest", Bonus: flat(1)},
		{Name: "Studded Leather", Slot: "chest", Bonus: flat(2)},
		{Name: "Armor Scraps", Slot: "chest", Bonus: flat(1)},
		{Name: "Hide", Slot: "chest", Bonus: flat(2), DexterityCap: capAt(2), Requires: Tags{"simple"}},
		{Name: "Chain Shirt", Slot: "chest", Bonus: flat(3), DexterityCap: capAt(2), Requires: Tags{"martial"}},
		{Name: "Scale Mail", Slot: "chest", Bonus: flat(4), DexterityCap: capAt(2), Requires: Tags{"martial"}, StealthDisadvantage: true},
		{Name: "Breastplate", Slot: "chest", Bonus: flat(4), DexterityCap: capAt(2), Requires: Tags{"martial"}},
		{Name: "Half Plate", Slot: "chest", Bonus: flat(5), DexterityCap: capAt(2), Requires: Tags{"martial"}, StealthDisadvantage: true},
		{Name: "Ring Mail", Slot: "chest", Bonus: flat(4), DexterityCap: capAt(0), Requires: Tags{"martial"}, StealthDisadvantage: true},
		{
			Name: "Chain Mail", Slot: "chest", Bonus: flat(6), DexterityCap: capAt(0), Requires: Tags{"martial"},
			Prerequisite: &Requirement{Ability: stats.Strength, Min: 13}, StealthDisadvantage: true,
		},
		{
			Name: "Splint", Slot: "chest", Bonus: flat(7), DexterityCap: capAt(0), Requires: Tags{"martial"},
			Prerequisite: &Requirement{Ability: stats.Strength, Min: 15}, StealthDisadvantage: true,
		},
		{
			Name: "Plate", Slot: "chest", Bonus: flat(8), DexterityCap: capAt(0), Requires: Tags{"martial"},
			Prerequisite: &Requirement{Ability: stats.Strength, Min: 15}, StealthDisadvantage: true,
		},
		{Name: "Shield", Slot: "shield", Bonus: flat(2)},
		{Name: "Natural Armor", Slot: "natural", Bonus: natural, Requires: Tags{"natural_armor"}},
	}
}

func builtinMonsters() []Monster {
	return []Monster{
		{
			Name: "Bandit", Size: Medium, HitDiceCount: 2, ExpectedRating: 0.125, AttacksPerRound: 1,
			Stats:      stats.Vector{11, 12, 12, 10, 10, 10},
			Properties: Tags{"simple", "martial"},
			Weapons:    []string{"Scimitar", "Light Crossbow"},
			Armors:     []string{"Leather"},
			Movement:   map[string]int{"walk": 30},
		},
		{
			Name: "Goblin", Size: Small, HitDiceCount: 2, ExpectedRating: 0.25, AttacksPerRound: 1,
			Stats:      stats.Vector{8, 14, 10, 10, 8, 8},
			Properties: Tags{"simple", "martial"},
			Weapons:    []string{"Scimitar", "Shortbow"},
			Armors:     []string{"Leather", "Shield"},
			Movement:   map[string]int{"walk": 30},
			Senses:     map[string]int{"darkvision": 60},
		},
		{
			Name: "Skeleton", Size: Medium, HitDiceCount: 2, ExpectedRating: 0.25, AttacksPerRound: 1,
			Stats:               stats.Vector{10, 14, 15, 6, 8, 5},
			Properties:          Tags{"simple", "martial"},
			Weapons:             []string{"Shortsword", "Shortbow"},
			Armors:              []string{"Armor Scraps"},
			Vulnerabilities:     []string{"bludgeoning"},
			DamageImmunities:    []string{"poison"},
			ConditionImmunities: []string{"exhaustion", "poisoned"},
			Movement:            map[string]int{"walk": 30},
			Senses:              map[string]int{"darkvision": 60},
		},
		{
			Name: "Wolf", Size: Medium, HitDiceCount: 2, ExpectedRating: 0.25, AttacksPerRound: 1,
			Stats:      stats.Vector{12, 15, 12, 3, 12, 6},
			Properties: Tags{"natural_weapon", "natural_armor", TagNoVariantWeapon, TagNoVariantArmor},
			Weapons:    []string{"Wolf Bite"},
			Armors:     []string{"Natural Armor"},
			Movement:   map[string]int{"walk": 40},
		},
		{
			Name: "Orc", Size: Medium, HitDiceCount: 2, ExpectedRating: 0.5, AttacksPerRound: 1,
			Stats:      stats.Vector{16, 12, 16, 7, 11, 10},
			Properties: Tags{"simple", "martial", "twohanded"},
			Weapons:    []string{"Greataxe", "Javelin"},
			Armors:     []string{"Hide"},
			Movement:   map[string]int{"walk": 30},
			Senses:     map[string]int{"darkvision": 60},
		},
		{
			Name: "Brown Bear", Size: Large, HitDiceCount: 4, ExpectedRating: 1, AttacksPerRound: 2,
			Stats:      stats.Vector{19, 10, 16, 2, 13, 7},
			Properties: Tags{"natural_weapon", "natural_armor", TagNoVariantWeapon},
			Weapons:    []string{"Bite_1", "Claw_1"},
			Armors:     []string{"Natural Armor"},
			Movement:   map[string]int{"walk": 40, "climb": 30},
		},
		{
			Name: "Ogre", Size: Large, HitDiceCount: 7, ExpectedRating: 2, AttacksPerRound: 1,
			Stats:      stats.Vector{19, 8, 16, 5, 7, 7},
			Properties: Tags{"simple", "martial", "twohanded"},
			Weapons:    []string{"Greatclub_1", "Javelin_1"},
			Armors:     []string{"Hide"},
			Movement:   map[string]int{"walk": 40},
			Senses:     map[string]int{"darkvision": 60},
		},
		{
			Name: "Veteran", Size: Medium, HitDiceCount: 9, ExpectedRating: 3, AttacksPerRound: 2,
			Stats:        stats.Vector{16, 13, 14, 10, 11, 10},
			SavingThrows: []stats.Ability{stats.Strength, stats.Constitution},
			Properties:   Tags{"simple", "martial"},
			Weapons:      []string{"Longsword", "Shortsword", "Light Crossbow"},
			Armors:       []string{"Splint"},
			Movement:     map[string]int{"walk": 30},
		},
	}
}

// Builtin returns the catalog compiled from the Go-literal tables.
// It panics if the tables are inconsistent.
func Builtin() *Catalog {
	c, err := New(builtinWeapons(), builtinArmors(), builtinMonsters(), DefaultPolicies())
	if err != nil {
		panic(err)
	}
	slog.Info("loaded builtin catalog",
		"weapons", len(c.weapons),
		"armors", len(c.armors),
		"monsters", len(c.monsters))
	return c
}

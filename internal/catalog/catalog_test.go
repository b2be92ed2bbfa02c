package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statforge/internal/dice"
	"github.com/udisondev/statforge/internal/rangemap"
)

func TestBuiltin(t *testing.T) {
	c := Builtin()

	w, err := c.Weapon("Longsword")
	require.NoError(t, err)
	d, err := w.DiceAt(0)
	require.NoError(t, err)
	assert.Equal(t, dice.New(1, 8), d)
	d, err = w.DiceAt(2)
	require.NoError(t, err)
	assert.Equal(t, dice.New(3, 8), d)

	_, err = w.DiceAt(7)
	assert.ErrorIs(t, err, rangemap.ErrNotFound)

	a, err := c.Armor("Natural Armor")
	require.NoError(t, err)
	bonus, err := a.BonusAt(4)
	require.NoError(t, err)
	assert.Equal(t, 4, bonus)

	m, err := c.Monster("Goblin")
	require.NoError(t, err)
	assert.Equal(t, dice.New(2, 6), m.HitDice())

	names := make([]string, 0)
	for _, m := range c.Monsters() {
		names = append(names, m.Name)
	}
	assert.IsIncreasing(t, names)
	assert.NotEmpty(t, c.Weapons())
	assert.NotEmpty(t, c.Armors())
}

func TestCatalog_UnknownSuggests(t *testing.T) {
	c := Builtin()

	tests := []struct {
		name    string
		lookup  func() error
		suggest string
	}{
		{name: "weapon typo", lookup: func() error { _, err := c.Weapon("Longswrd"); return err }, suggest: `did you mean "Longsword"?`},
		{name: "armor case", lookup: func() error { _, err := c.Armor("shield"); return err }, suggest: `did you mean "Shield"?`},
		{name: "monster typo", lookup: func() error { _, err := c.Monster("Goblinn"); return err }, suggest: `did you mean "Goblin"?`},
		{name: "nothing close", lookup: func() error { _, err := c.Monster("Tarrasque"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lookup()
			require.ErrorIs(t, err, ErrUnknownEntry)
			if tt.suggest == "" {
				assert.NotContains(t, err.Error(), "did you mean")
				return
			}
			assert.Contains(t, err.Error(), tt.suggest)
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	club := Weapon{Name: "Club", Damage: scaled(1, 4)}
	leather := Armor{Name: "Leather", Slot: "chest", Bonus: flat(1)}

	tests := []struct {
		name     string
		weapons  []Weapon
		armors   []Armor
		monsters []Monster
		policies []Policy
	}{
		{name: "duplicate weapon", weapons: []Weapon{club, club}},
		{name: "weapon without damage", weapons: []Weapon{{Name: "Stick"}}},
		{name: "armor without slot", armors: []Armor{{Name: "Hat", Bonus: flat(1)}}},
		{name: "duplicate armor", armors: []Armor{leather, leather}},
		{name: "bad size", monsters: []Monster{{Name: "Blob", Size: "colossal", HitDiceCount: 1, AttacksPerRound: 1}}},
		{name: "no hit dice", monsters: []Monster{{Name: "Blob", Size: Medium, AttacksPerRound: 1}}},
		{
			name:     "unknown weapon ref",
			weapons:  []Weapon{club},
			monsters: []Monster{{Name: "Blob", Size: Medium, HitDiceCount: 1, AttacksPerRound: 1, Weapons: []string{"Mace"}}},
		},
		{
			name:     "weapon scale out of table",
			weapons:  []Weapon{club},
			monsters: []Monster{{Name: "Blob", Size: Medium, HitDiceCount: 1, AttacksPerRound: 1, Weapons: []string{"Club_9"}}},
		},
		{name: "bad rule", policies: []Policy{{Category: CategoryWeapons, Rules: []Rule{{Kind: RuleMaxCount}}}}},
		{name: "unknown rule", policies: []Policy{{Category: CategoryArmor, Rules: []Rule{{Kind: "teleport"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.weapons, tt.armors, tt.monsters, tt.policies)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestNew_DefaultPolicies(t *testing.T) {
	c, err := New(nil, nil, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Policy(CategoryWeapons).Rules)
	assert.NotEmpty(t, c.Policy(CategoryArmor).Rules)
	assert.Empty(t, c.Policy("spells").Rules)
}

func TestParseCompound(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		scale   int
		wantErr bool
	}{
		{in: "Longsword", name: "Longsword"},
		{in: "Bite_2", name: "Bite", scale: 2},
		{in: "Bite_", name: "Bite"},
		{in: "Natural Armor_3", name: "Natural Armor", scale: 3},
		{in: "_2", wantErr: true},
		{in: "Bite_x", wantErr: true},
		{in: "Bite_-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, scale, err := ParseCompound(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.scale, scale)
			if tt.scale != 0 {
				assert.Equal(t, tt.in, Compound(name, scale))
			}
		})
	}
}

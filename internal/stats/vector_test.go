package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestModifier(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{score: 1, want: -5},
		{score: 3, want: -4},
		{score: 8, want: -1},
		{score: 9, want: -1},
		{score: 10, want: 0},
		{score: 11, want: 0},
		{score: 12, want: 1},
		{score: 13, want: 1},
		{score: 18, want: 4},
		{score: 30, want: 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Modifier(tt.score), "score %d", tt.score)
	}
}

func TestVectorFromSlice(t *testing.T) {
	_, err := VectorFromSlice([]int{8, 8, 8, 8, 8})
	require.ErrorIs(t, err, ErrShortVector)

	v, err := VectorFromSlice([]int{15, 14, 13, 12, 10, 8, 99})
	require.NoError(t, err)
	assert.Equal(t, Vector{15, 14, 13, 12, 10, 8}, v)
}

func TestVector_Helpers(t *testing.T) {
	v := Vector{15, 8, 13, 8, 10, 12}

	assert.Equal(t, Dexterity, v.Lowest())
	assert.Equal(t, []int{15, 13, 12, 10, 8, 8}, v.Sorted())
	assert.Equal(t, 66, v.Sum())
	assert.Equal(t, 2, v.Modifier(Strength))

	w := v.With(Strength, 3)
	assert.Equal(t, 3, w.Get(Strength))
	assert.Equal(t, 15, v.Get(Strength), "With must not alias")

	assert.Equal(t, "STR 15 (+2) DEX 8 (-1) CON 13 (+1) INT 8 (-1) WIS 10 (+0) CHA 12 (+1)", v.String())
}

func TestParseAbility(t *testing.T) {
	for _, in := range []string{"DEX", "dex", "Dexterity", " dexterity "} {
		a, err := ParseAbility(in)
		require.NoError(t, err, in)
		assert.Equal(t, Dexterity, a)
	}

	_, err := ParseAbility("luck")
	assert.Error(t, err)
}

func TestVector_YAML(t *testing.T) {
	var doc struct {
		Stats Vector  `yaml:"stats"`
		Best  Ability `yaml:"best"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("stats: [10, 12, 14, 8, 9, 11]\nbest: con\n"), &doc))
	assert.Equal(t, Vector{10, 12, 14, 8, 9, 11}, doc.Stats)
	assert.Equal(t, Constitution, doc.Best)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "best: CON")

	err = yaml.Unmarshal([]byte("stats: [10, 12]\n"), &doc)
	assert.ErrorIs(t, err, ErrShortVector)
}

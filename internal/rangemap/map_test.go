package rangemap

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// checkTree verifies BST order, red-black colouring and parent links.
// Returns the black height.
func checkTree[K Number, V any](t *testing.T, n *node[K, V]) int {
	t.Helper()
	if n == nil {
		return 1
	}
	if n.left != nil {
		assert.Same(t, n, n.left.parent, "left parent link of %v", n.key)
		assert.Less(t, n.left.key.High, n.key.Low, "left child of %v out of order", n.key)
	}
	if n.right != nil {
		assert.Same(t, n, n.right.parent, "right parent link of %v", n.key)
		assert.Greater(t, n.right.key.Low, n.key.High, "right child of %v out of order", n.key)
	}
	if n.color == red {
		assert.False(t, isRed(n.left), "red node %v has red left child", n.key)
		assert.False(t, isRed(n.right), "red node %v has red right child", n.key)
	}
	lh := checkTree(t, n.left)
	rh := checkTree(t, n.right)
	assert.Equal(t, lh, rh, "black height mismatch under %v", n.key)
	if n.color == black {
		return lh + 1
	}
	return lh
}

func TestMap_GetByPoint(t *testing.T) {
	m := New[int, string]()
	require.NoError(t, m.Insert(Span(0, 4), "low"))
	require.NoError(t, m.Insert(Span(10, 19), "high"))
	require.NoError(t, m.Insert(Span(5, 9), "mid"))
	require.NoError(t, m.Insert(Point(30), "single"))

	tests := []struct {
		name  string
		point int
		want  string
		miss  bool
	}{
		{name: "lower bound", point: 0, want: "low"},
		{name: "upper bound", point: 4, want: "low"},
		{name: "adjacent lower", point: 5, want: "mid"},
		{name: "inside", point: 15, want: "high"},
		{name: "single point", point: 30, want: "single"},
		{name: "below all", point: -1, miss: true},
		{name: "gap", point: 25, miss: true},
		{name: "above all", point: 31, miss: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Get(tt.point)
			if tt.miss {
				assert.ErrorIs(t, err, ErrNotFound)
				assert.False(t, m.Contains(tt.point))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, m.Contains(tt.point))
		})
	}
}

func TestMap_InsertOverlap(t *testing.T) {
	tests := []struct {
		name string
		r    Range[int]
	}{
		{name: "exact duplicate", r: Span(10, 20)},
		{name: "shares lower endpoint", r: Span(5, 10)},
		{name: "shares upper endpoint", r: Span(20, 25)},
		{name: "partial low", r: Span(8, 12)},
		{name: "partial high", r: Span(18, 22)},
		{name: "contained", r: Span(12, 14)},
		{name: "covering", r: Span(0, 100)},
		{name: "point inside", r: Point(15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New[int, int]()
			require.NoError(t, m.Insert(Span(10, 20), 1))

			err := m.Insert(tt.r, 2)
			assert.ErrorIs(t, err, ErrOverlap)
			assert.Equal(t, 1, m.Len(), "failed insert must not change the map")
		})
	}
}

func TestMap_InsertAdjacent(t *testing.T) {
	m := New[int, int]()
	require.NoError(t, m.Insert(Span(1, 4), 1))
	require.NoError(t, m.Insert(Span(5, 8), 2))
	require.NoError(t, m.Insert(Point(0), 0))
	assert.Equal(t, 3, m.Len())
}

func TestMap_InsertInvalidRange(t *testing.T) {
	m := New[int, int]()
	err := m.Insert(Span(5, 1), 1)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Zero(t, m.Len())
}

func TestMap_GetRange(t *testing.T) {
	m := New[int, int]()
	require.NoError(t, m.Insert(Span(9, 13), 1))
	require.NoError(t, m.Insert(Span(14, 15), 2))

	v, err := m.GetRange(Span(14, 15))
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	// overlapping but not equal keys are misses
	_, err = m.GetRange(Span(9, 12))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetRange(Span(13, 14))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetRange(Span(20, 30))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMap_FloatKeys(t *testing.T) {
	m := New[float64, string]()
	require.NoError(t, m.Insert(Span(0.0, 0.5), "half"))
	require.NoError(t, m.Insert(Span(0.75, 1.0), "top"))

	v, err := m.Get(0.25)
	require.NoError(t, err)
	assert.Equal(t, "half", v)

	_, err = m.Get(0.6)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, m.Insert(Span(0.5, 0.7), "x"), ErrOverlap)
}

func TestMap_RedBlackInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	m := New[int, int]()

	starts := rng.Perm(500)
	for _, s := range starts {
		lo := s * 10
		require.NoError(t, m.Insert(Span(lo, lo+4), s))
	}

	require.Equal(t, 500, m.Len())
	assert.Equal(t, black, m.root.color)
	bh := checkTree(t, m.root)
	assert.Greater(t, bh, 1)

	for _, s := range starts {
		v, err := m.Get(s*10 + 2)
		require.NoError(t, err)
		assert.Equal(t, s, v)

		_, err = m.Get(s*10 + 7)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	// Random overlapping inserts must all fail and leave the tree intact.
	for i := 0; i < 200; i++ {
		lo := rng.IntN(5000)
		if lo%10 >= 5 {
			lo -= 5
		}
		assert.ErrorIs(t, m.Insert(Span(lo, lo+1), -1), ErrOverlap)
	}
	assert.Equal(t, 500, m.Len())
	checkTree(t, m.root)
}

func TestMap_AscendAndBounds(t *testing.T) {
	m := New[int, int]()
	_, ok := m.Bounds()
	assert.False(t, ok)

	for _, lo := range []int{40, 10, 30, 0, 20} {
		require.NoError(t, m.Insert(Span(lo, lo+5), lo))
	}

	var got []int
	m.Ascend(func(r Range[int], v int) bool {
		got = append(got, v)
		return true
	})
	assert.Equal(t, []int{0, 10, 20, 30, 40}, got)

	got = got[:0]
	m.Ascend(func(r Range[int], v int) bool {
		got = append(got, v)
		return len(got) < 2
	})
	assert.Equal(t, []int{0, 10}, got)

	b, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, Span(0, 45), b)
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([]Row[int, int]{
		{Low: 4, High: 13, Value: 1},
		{Low: 14, High: 15, Value: 2},
		{Low: 18, High: 18, Value: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	_, err = FromRows([]Row[int, int]{
		{Low: 4, High: 13, Value: 1},
		{Low: 13, High: 15, Value: 2},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverlap))
	assert.Contains(t, err.Error(), "row 1")

	assert.Panics(t, func() {
		MustFromRows([]Row[int, int]{{Low: 1, High: 2}, {Low: 2, High: 3}})
	})
}

func TestMap_YAML(t *testing.T) {
	type table struct {
		Cost *Map[int, int] `yaml:"cost"`
	}

	src := `
cost:
  - [4, 13, 1]
  - [14, 15, 2]
  - {low: 16, high: 17, value: 3}
`
	var tb table
	require.NoError(t, yaml.Unmarshal([]byte(src), &tb))
	require.NotNil(t, tb.Cost)
	assert.Equal(t, 3, tb.Cost.Len())

	v, err := tb.Cost.Get(17)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	out, err := yaml.Marshal(tb)
	require.NoError(t, err)
	assert.Contains(t, string(out), "- [4, 13, 1]")

	var back table
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, tb.Cost.Rows(), back.Cost.Rows())

	bad := `
cost:
  - [4, 13, 1]
  - [10, 15, 2]
`
	err = yaml.Unmarshal([]byte(bad), &tb)
	assert.ErrorIs(t, err, ErrOverlap)
}

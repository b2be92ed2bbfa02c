package rangemap

import "fmt"

type color bool

const (
	red   color = true
	black color = false
)

type node[K Number, V any] struct {
	key    Range[K]
	value  V
	color  color
	left   *node[K, V]
	right  *node[K, V]
	parent *node[K, V]
}

func isRed[K Number, V any](n *node[K, V]) bool {
	return n != nil && n.color == red
}

// Map maps disjoint closed ranges to values.
// The zero value is an empty map ready to use. A Map is not safe for
// concurrent mutation.
type Map[K Number, V any] struct {
	root *node[K, V]
	size int
}

// New returns an empty Map.
func New[K Number, V any]() *Map[K, V] {
	return &Map[K, V]{}
}

// Len returns the number of stored ranges.
func (m *Map[K, V]) Len() int {
	return m.size
}

// Insert stores v under r.
// Returns ErrInvalidRange if r.Low > r.High and ErrOverlap if r intersects
// any stored range (exact duplicates included).
func (m *Map[K, V]) Insert(r Range[K], v V) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidRange, r)
	}

	var parent *node[K, V]
	side := 0
	cur := m.root
	for cur != nil {
		parent = cur
		c, err := compareRanges(r, cur.key)
		if err != nil {
			return fmt.Errorf("%w: %v intersects %v", ErrOverlap, r, cur.key)
		}
		side = c
		if c < 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}

	n := &node[K, V]{key: r, value: v, color: red, parent: parent}
	switch {
	case parent == nil:
		m.root = n
	case side < 0:
		parent.left = n
	default:
		parent.right = n
	}
	m.size++
	m.fixInsert(n)
	return nil
}

// Get returns the value of the range containing point.
func (m *Map[K, V]) Get(point K) (V, error) {
	if n := m.findPoint(point); n != nil {
		return n.value, nil
	}
	var zero V
	return zero, fmt.Errorf("%w: %v", ErrNotFound, point)
}

// Contains reports whether any stored range contains point.
func (m *Map[K, V]) Contains(point K) bool {
	return m.findPoint(point) != nil
}

// GetRange returns the value stored under exactly r.
// A stored range that only overlaps r is a miss.
func (m *Map[K, V]) GetRange(r Range[K]) (V, error) {
	cur := m.root
	for cur != nil {
		c, err := compareRanges(r, cur.key)
		if err != nil {
			if cur.key == r {
				return cur.value, nil
			}
			break
		}
		if c < 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	var zero V
	return zero, fmt.Errorf("%w: %v", ErrNotFound, r)
}

// Ascend calls fn for every stored range in ascending order until fn
// returns false.
func (m *Map[K, V]) Ascend(fn func(r Range[K], v V) bool) {
	// iterative in-order walk, the tree height is O(log n)
	var stack []*node[K, V]
	cur := m.root
	for cur != nil || len(stack) > 0 {
		for cur != nil {
			stack = append(stack, cur)
			cur = cur.left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur.key, cur.value) {
			return
		}
		cur = cur.right
	}
}

// Rows returns the content of the map as ascending rows.
func (m *Map[K, V]) Rows() []Row[K, V] {
	rows := make([]Row[K, V], 0, m.size)
	m.Ascend(func(r Range[K], v V) bool {
		rows = append(rows, Row[K, V]{Low: r.Low, High: r.High, Value: v})
		return true
	})
	return rows
}

// Bounds returns the range from the lowest stored bound to the highest.
// ok is false for an empty map.
func (m *Map[K, V]) Bounds() (r Range[K], ok bool) {
	if m.root == nil {
		return r, false
	}
	lo, hi := m.root, m.root
	for lo.left != nil {
		lo = lo.left
	}
	for hi.right != nil {
		hi = hi.right
	}
	return Range[K]{Low: lo.key.Low, High: hi.key.High}, true
}

func (m *Map[K, V]) findPoint(p K) *node[K, V] {
	cur := m.root
	for cur != nil {
		if comparePoint(p, cur.key) < 0 {
			cur = cur.left
			continue
		}
		if cur.key.Contains(p) {
			return cur
		}
		cur = cur.right
	}
	return nil
}

func (m *Map[K, V]) fixInsert(n *node[K, V]) {
	for n != m.root && isRed(n.parent) {
		p := n.parent
		g := p.parent // p is red, so it is not the root
		if p == g.left {
			if u := g.right; isRed(u) {
				p.color, u.color, g.color = black, black, red
				n = g
				continue
			}
			if n == p.right {
				n = p
				m.rotateLeft(n)
				p = n.parent
			}
			p.color, g.color = black, red
			m.rotateRight(g)
		} else {
			if u := g.left; isRed(u) {
				p.color, u.color, g.color = black, black, red
				n = g
				continue
			}
			if n == p.left {
				n = p
				m.rotateRight(n)
				p = n.parent
			}
			p.color, g.color = black, red
			m.rotateLeft(g)
		}
	}
	m.root.color = black
}

func (m *Map[K, V]) rotateLeft(x *node[K, V]) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	m.replaceChild(x, y)
	y.left = x
	x.parent = y
}

func (m *Map[K, V]) rotateRight(x *node[K, V]) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	m.replaceChild(x, y)
	y.right = x
	x.parent = y
}

// replaceChild puts y where x hangs under x's parent.
func (m *Map[K, V]) replaceChild(x, y *node[K, V]) {
	y.parent = x.parent
	switch {
	case x.parent == nil:
		m.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
}

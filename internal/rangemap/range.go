// Package rangemap implements an ordered map keyed by closed numeric ranges.
//
// Ranges stored in one Map never overlap: Insert rejects a range that shares
// at least one point with a stored range. Touching ranges such as [1, 4] and
// [5, 8] are disjoint; [1, 5] and [5, 8] are not.
//
// The map is backed by a red-black tree, so Insert, Get and GetRange are
// O(log n).
package rangemap

import (
	"errors"
	"fmt"
)

var (
	// ErrOverlap is returned when an inserted range intersects a stored one.
	// Tables that hit it are misconfigured and must not be used.
	ErrOverlap = errors.New("rangemap: overlapping range")

	// ErrInvalidRange is returned for a range with Low > High.
	ErrInvalidRange = errors.New("rangemap: invalid range")

	// ErrNotFound is returned when no stored range matches the lookup key.
	ErrNotFound = errors.New("rangemap: not found")

	errOverlapFault = errors.New("ranges intersect")
)

// Number is the set of key types a Map can be ordered by.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Range is a closed interval [Low, High].
type Range[K Number] struct {
	Low  K
	High K
}

// Span returns the closed range [low, high].
func Span[K Number](low, high K) Range[K] {
	return Range[K]{Low: low, High: high}
}

// Point returns the single-value range [v, v].
func Point[K Number](v K) Range[K] {
	return Range[K]{Low: v, High: v}
}

// Valid reports whether Low <= High.
func (r Range[K]) Valid() bool {
	return r.Low <= r.High
}

// Contains reports whether p lies inside the range, bounds included.
func (r Range[K]) Contains(p K) bool {
	return p >= r.Low && p <= r.High
}

// Overlaps reports whether r and o share at least one point.
func (r Range[K]) Overlaps(o Range[K]) bool {
	return r.Low <= o.High && o.Low <= r.High
}

func (r Range[K]) String() string {
	if r.Low == r.High {
		return fmt.Sprintf("[%v]", r.Low)
	}
	return fmt.Sprintf("[%v, %v]", r.Low, r.High)
}

// compareRanges orders a relative to b. A range is less than another only if
// it ends before the other begins; if neither ordering holds the ranges
// intersect and errOverlapFault is returned.
func compareRanges[K Number](a, b Range[K]) (int, error) {
	switch {
	case a.High < b.Low:
		return -1, nil
	case a.Low > b.High:
		return 1, nil
	default:
		return 0, errOverlapFault
	}
}

// comparePoint orders a scalar against a range by its lower bound only.
// Whether p is actually inside r is decided by r.Contains.
func comparePoint[K Number](p K, r Range[K]) int {
	if p < r.Low {
		return -1
	}
	return 1
}

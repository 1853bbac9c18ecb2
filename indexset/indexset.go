// Package indexset provides a sorted set of non-negative offsets, held as a
// union of half-open contiguous ranges.
package indexset

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
)

// Range is a half-open span of offsets [Low,High).
type Range struct {
	Low  int
	High int
}

// Len returns the number of offsets in this Range.
func (r Range) Len() int {
	return r.High - r.Low
}

// IsEmpty returns whether this Range contains no offsets.
func (r Range) IsEmpty() bool {
	return r.High <= r.Low
}

// Contains returns whether the offset is within [Low,High).
func (r Range) Contains(o int) bool {
	return o >= r.Low && o < r.High
}

// Set is a set of non-negative offsets.
// The zero Set is empty and ready to use.
// Sets returned by operations share no state with their operands.
type Set struct {
	ranges []Range // sorted, disjoint, non-adjacent, non-empty
	prefix []int   // prefix[i] is the total offsets in ranges[:i]; len(ranges)+1 entries
}

// Of builds a Set from individual offsets.
func Of(offsets ...int) Set {
	var s Set
	for _, o := range offsets {
		s.Insert(o)
	}
	return s
}

// FromRange builds a Set covering [low,high).
func FromRange(low, high int) Set {
	var s Set
	s.InsertRange(low, high)
	return s
}

// rebuild recomputes the prefix counts after the ranges change.
func (s *Set) rebuild() {
	if cap(s.prefix) <= len(s.ranges) {
		s.prefix = make([]int, len(s.ranges)+1)
	} else {
		s.prefix = s.prefix[:len(s.ranges)+1]
	}
	s.prefix[0] = 0
	for i, r := range s.ranges {
		s.prefix[i+1] = s.prefix[i] + r.Len()
	}
}

// Insert adds a single offset.
func (s *Set) Insert(o int) {
	s.InsertRange(o, o+1)
}

// InsertRange adds every offset in [low,high).
func (s *Set) InsertRange(low, high int) {
	if low < 0 {
		panic("indexset: negative offset")
	}
	if high <= low {
		return
	}

	// find all ranges overlapping or adjacent to [low,high) and merge them
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].High >= low })
	j := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Low > high })
	if i < j {
		low = min(low, s.ranges[i].Low)
		high = max(high, s.ranges[j-1].High)
	}
	s.ranges = slices.Replace(s.ranges, i, j, Range{low, high})
	s.rebuild()
}

// Remove deletes a single offset, if present.
func (s *Set) Remove(o int) {
	s.RemoveRange(o, o+1)
}

// RemoveRange deletes every offset in [low,high).
func (s *Set) RemoveRange(low, high int) {
	if high <= low || len(s.ranges) == 0 {
		return
	}

	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].High > low })
	j := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Low >= high })
	if i >= j {
		return
	}

	keep := make([]Range, 0, 2)
	if s.ranges[i].Low < low {
		keep = append(keep, Range{s.ranges[i].Low, low})
	}
	if s.ranges[j-1].High > high {
		keep = append(keep, Range{high, s.ranges[j-1].High})
	}
	s.ranges = slices.Replace(s.ranges, i, j, keep...)
	s.rebuild()
}

// Union returns a new Set with the offsets of both sets.
func (s Set) Union(t Set) Set {
	out := s.Clone()
	for _, r := range t.ranges {
		out.InsertRange(r.Low, r.High)
	}
	return out
}

// Intersect returns a new Set with the offsets common to both sets.
func (s Set) Intersect(t Set) Set {
	var out Set
	i, j := 0, 0
	for i < len(s.ranges) && j < len(t.ranges) {
		a, b := s.ranges[i], t.ranges[j]
		low, high := max(a.Low, b.Low), min(a.High, b.High)
		if low < high {
			out.ranges = append(out.ranges, Range{low, high})
		}
		if a.High < b.High {
			i++
		} else {
			j++
		}
	}
	out.rebuild()
	return out
}

// Subtract returns a new Set with the offsets of s not in t.
func (s Set) Subtract(t Set) Set {
	out := s.Clone()
	for _, r := range t.ranges {
		out.RemoveRange(r.Low, r.High)
	}
	return out
}

// Clone returns an independent copy of this Set.
func (s Set) Clone() Set {
	out := Set{ranges: slices.Clone(s.ranges)}
	out.rebuild()
	return out
}

// Contains returns whether the offset is in the set.
func (s Set) Contains(o int) bool {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].High > o })
	return i < len(s.ranges) && s.ranges[i].Contains(o)
}

// Count returns the number of offsets in the set.
func (s Set) Count() int {
	if len(s.prefix) == 0 {
		return 0
	}
	return s.prefix[len(s.prefix)-1]
}

// IsEmpty returns whether the set has no offsets.
func (s Set) IsEmpty() bool {
	return len(s.ranges) == 0
}

// CountBefore returns the number of offsets in the set below o.
// This runs in O(log r) for r held ranges.
func (s Set) CountBefore(o int) int {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].High > o })
	var count int
	if i > 0 {
		count = s.prefix[i]
	}
	if i < len(s.ranges) && s.ranges[i].Low < o {
		count += o - s.ranges[i].Low
	}
	return count
}

// CountIn returns the number of offsets in the set within r.
func (s Set) CountIn(r Range) int {
	if r.IsEmpty() {
		return 0
	}
	return s.CountBefore(r.High) - s.CountBefore(r.Low)
}

// NthAbsent returns the k-th non-negative offset not contained in the set.
func (s Set) NthAbsent(k int) int {
	if k < 0 {
		panic("indexset: negative rank")
	}
	q := k
	for _, r := range s.ranges {
		if r.Low > q {
			break
		}
		q += r.Len()
	}
	return q
}

// Equal returns whether both sets hold exactly the same offsets.
func (s Set) Equal(t Set) bool {
	return slices.Equal(s.ranges, t.ranges)
}

// Ranges yields the disjoint half-open ranges of the set, ascending.
func (s Set) Ranges() iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for _, r := range s.ranges {
			if !yield(r) {
				return
			}
		}
	}
}

// ReversedRanges yields the disjoint half-open ranges of the set, descending.
func (s Set) ReversedRanges() iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for i := len(s.ranges) - 1; i >= 0; i-- {
			if !yield(s.ranges[i]) {
				return
			}
		}
	}
}

// Offsets yields every offset of the set, ascending.
func (s Set) Offsets() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, r := range s.ranges {
			for o := r.Low; o < r.High; o++ {
				if !yield(o) {
					return
				}
			}
		}
	}
}

func (s Set) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, r := range s.ranges {
		if i > 0 {
			b.WriteString(", ")
		}
		if r.Len() == 1 {
			fmt.Fprintf(&b, "%d", r.Low)
		} else {
			fmt.Fprintf(&b, "%d..%d", r.Low, r.High-1)
		}
	}
	b.WriteByte('}')
	return b.String()
}

package observable

import (
	"slices"

	"github.com/RACCommunity/ReactiveCollections/changeset"
	"github.com/RACCommunity/ReactiveCollections/indexset"
)

// View is the exclusively owned staging sequence handed to a Modify batch.
// Every edit except Reset funnels through Replace, which keeps three accumulators
// describing the net effect so far: inserts in the staging frame, removals
// and mutations in the original frame.
type View[T any] struct {
	items   []T
	prevLen int

	inserts   indexset.Set
	removals  indexset.Set
	mutations indexset.Set
}

func newView[T any](previous []T) *View[T] {
	items := make([]T, len(previous))
	copy(items, previous)
	return &View[T]{items: items, prevLen: len(previous)}
}

// Len returns the staged element count.
func (v *View[T]) Len() int {
	return len(v.items)
}

// Get returns the staged element at offset i.
func (v *View[T]) Get(i int) T {
	return v.items[i]
}

// originalOffset maps a staged position that holds a surviving original back
// to its offset in the previous frame, skipping committed inserts and
// already-removed originals. p must not be an uncommitted insert.
func (v *View[T]) originalOffset(p int) int {
	k := p - v.inserts.CountBefore(p)
	return v.removals.NthAbsent(k)
}

// finalPosition maps a surviving original offset to its staged position.
func (v *View[T]) finalPosition(o int) int {
	k := o - v.removals.CountBefore(o)
	return v.inserts.NthAbsent(k)
}

// Replace substitutes the staged elements in [low,high) with items.
// The range must be within [0,Len()]; anything else is a caller bug and
// panics.
func (v *View[T]) Replace(low, high int, items []T) {
	if low < 0 || high < low || high > len(v.items) {
		panic("observable: replace range out of bounds")
	}
	d := len(items) - (high - low)

	// overlap: positions that keep an element in place with a new value
	overlapHigh := high
	if d < 0 {
		overlapHigh = low + len(items)
	}
	for p := low; p < overlapHigh; p++ {
		if v.inserts.Contains(p) {
			continue // still an uncommitted insert; its new value rides along
		}
		v.mutations.Insert(v.originalOffset(p))
	}

	if d > 0 {
		// grow: [high, high+d) are new inserts in the staging frame, and
		// committed inserts at or after the insertion point shift outward
		v.inserts = shifted(v.inserts, high, d)
		v.inserts.InsertRange(high, high+d)
	} else if d < 0 {
		// shrink: [high+d, high) disappears from the staging frame
		cancelLow := high + d

		var gone []int
		for p := cancelLow; p < high; p++ {
			if v.inserts.Contains(p) {
				continue // an uncommitted insert the caller took back: net zero
			}
			gone = append(gone, v.originalOffset(p))
		}

		v.inserts.RemoveRange(cancelLow, high)
		v.inserts = shifted(v.inserts, high, d)

		for _, o := range gone {
			v.mutations.Remove(o)
			v.removals.Insert(o)
		}
	}

	v.items = slices.Replace(v.items, low, high, items...)
}

// Insert places item at offset i.
func (v *View[T]) Insert(i int, item T) {
	v.Replace(i, i, []T{item})
}

// InsertSlice places items starting at offset i.
func (v *View[T]) InsertSlice(i int, items []T) {
	v.Replace(i, i, items)
}

// Append adds item at the end.
func (v *View[T]) Append(item T) {
	v.Replace(len(v.items), len(v.items), []T{item})
}

// AppendSlice adds items at the end.
func (v *View[T]) AppendSlice(items []T) {
	v.Replace(len(v.items), len(v.items), items)
}

// Remove deletes the element at offset i.
func (v *View[T]) Remove(i int) {
	v.Replace(i, i+1, nil)
}

// RemoveRange deletes the elements in [low,high).
func (v *View[T]) RemoveRange(low, high int) {
	v.Replace(low, high, nil)
}

// RemoveFirst deletes the first n elements.
func (v *View[T]) RemoveFirst(n int) {
	v.Replace(0, n, nil)
}

// RemoveLast deletes the last n elements.
func (v *View[T]) RemoveLast(n int) {
	v.Replace(len(v.items)-n, len(v.items), nil)
}

// RemoveAll deletes every element, mutating the view in place.
func (v *View[T]) RemoveAll() {
	v.Replace(0, len(v.items), nil)
}

// Set overwrites the element at offset i.
func (v *View[T]) Set(i int, item T) {
	v.Replace(i, i+1, []T{item})
}

// Reset replaces the staging view wholesale: the commit behaves as a removal
// of everything previous followed by an insert of items. Edits staged before
// the reset are subsumed; edits staged after it accumulate normally.
func (v *View[T]) Reset(items []T) {
	v.items = make([]T, len(items))
	copy(v.items, items)

	v.inserts = indexset.FromRange(0, len(items))
	v.removals = indexset.FromRange(0, v.prevLen)
	v.mutations = indexset.Set{}
}

// changeset folds the accumulators into the published form. A recorded
// mutation whose element ended up displaced by surrounding edits cannot stay
// in the position-invariant mutations set; it becomes a mutated move.
func (v *View[T]) changeset() changeset.Changeset {
	cs := changeset.Changeset{
		Inserts:  v.inserts.Clone(),
		Removals: v.removals.Clone(),
	}
	for o := range v.mutations.Offsets() {
		q := v.finalPosition(o)
		if q == o {
			cs.Mutations.Insert(o)
			continue
		}
		cs.Moves = append(cs.Moves, changeset.Move{Source: o, Destination: q, IsMutated: true})
	}
	return cs
}

// shifted rebuilds the set with every offset at or after pivot shifted by d.
func shifted(s indexset.Set, pivot, d int) indexset.Set {
	var out indexset.Set
	for r := range s.Ranges() {
		switch {
		case r.High <= pivot:
			out.InsertRange(r.Low, r.High)
		case r.Low >= pivot:
			out.InsertRange(r.Low+d, r.High+d)
		default:
			out.InsertRange(r.Low, pivot)
			out.InsertRange(pivot+d, r.High+d)
		}
	}
	return out
}

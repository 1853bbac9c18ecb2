// Package diff computes a changeset between two versions of an ordered
// sequence, recognising elements through a caller-supplied identity.
package diff

import (
	"slices"

	"github.com/RACCommunity/ReactiveCollections/changeset"
	"github.com/RACCommunity/ReactiveCollections/indexset"
)

// symbol is the per-identity bookkeeping shared by both scan passes.
type symbol struct {
	occursInOld int
	occursInNew int
	// locationInOld is the offset of the latest previous-side occurrence.
	// Only meaningful for anchoring when occursInOld == 1.
	locationInOld int
}

// anchorPair links the unique previous-side and current-side occurrences of
// one identity.
type anchorPair struct {
	old     int
	new     int
	mutated bool
}

const unanchored = -1

// Diff computes the changeset turning previous into current.
//
// identify maps an element to a hashable key naming "the same element"
// across both sequences; equal decides whether an identified element changed
// value, and may be strictly finer than identify. Applying the result via
// [changeset.Apply] reproduces current under equal.
//
// Identities appearing more than once on either side are never matched up:
// each such occurrence degrades to a removal plus an insert. The symbol table
// passes are linear in the two lengths; the whole call is not, since every
// index-set insertion recomputes that set's prefix counts, and move
// resolution sorts the candidate moves and re-checks them until stable.
func Diff[T any, K comparable](previous, current []T, identify func(T) K, equal func(a, b T) bool) changeset.Changeset {
	table := make(map[K]*symbol, len(current))

	newRefs := make([]*symbol, len(current))

	// pass 1: scan current
	for i, e := range current {
		k := identify(e)
		sym := table[k]
		if sym == nil {
			sym = &symbol{locationInOld: unanchored}
			table[k] = sym
		}
		sym.occursInNew++
		newRefs[i] = sym
	}

	// pass 2: scan previous
	for o, e := range previous {
		k := identify(e)
		sym := table[k]
		if sym == nil {
			sym = &symbol{}
			table[k] = sym
		}
		sym.occursInOld++
		sym.locationInOld = o
	}

	// pass 3: anchor positions whose identity is unique on both sides
	oldAnchor := make([]int, len(previous))
	for o := range oldAnchor {
		oldAnchor[o] = unanchored
	}
	var pairs []anchorPair
	for i, sym := range newRefs {
		if sym.occursInNew != 1 || sym.occursInOld != 1 {
			continue
		}
		o := sym.locationInOld
		oldAnchor[o] = i
		pairs = append(pairs, anchorPair{old: o, new: i, mutated: !equal(previous[o], current[i])})
	}

	// pass 4: unanchored previous offsets are removals, unanchored current
	// offsets are inserts
	var cs changeset.Changeset
	for o, i := range oldAnchor {
		if i == unanchored {
			cs.Removals.Insert(o)
		}
	}
	for i, sym := range newRefs {
		if sym.occursInNew != 1 || sym.occursInOld != 1 {
			cs.Inserts.Insert(i)
		}
	}

	// pass 5: decide which anchored pairs need an explicit move
	resolveMoves(&cs, pairs)
	return cs
}

// Comparable diffs two sequences of comparable elements, using the element
// itself as both identity and equality.
func Comparable[T comparable](previous, current []T) changeset.Changeset {
	identity := func(e T) T { return e }
	return Diff(previous, current, identity, func(a, b T) bool { return a == b })
}

// lands reports whether a pair left implicit ends up at its current-side
// anchor once the given removals and inserts apply around it: survivors fill
// the gaps between inserts in their previous relative order.
func lands(removed, inserted indexset.Set, p anchorPair) bool {
	rep := p.old - removed.CountBefore(p.old) + inserted.CountBefore(p.new)
	return rep == p.new
}

// resolveMoves is pass 5. A pair whose displacement is fully explained by
// the surrounding removals, inserts and other moves needs no move of its
// own; every other pair is emitted. Mutated pairs at a stable position stay
// plain mutations, while a mutated pair that travels becomes a mutated move
// (eliding it would leave its stale value in place on apply).
func resolveMoves(cs *changeset.Changeset, pairs []anchorPair) {
	removed := cs.Removals.Clone()
	inserted := cs.Inserts.Clone()
	emitted := make([]bool, len(pairs))

	// first sweep, largest displacement first: one long hoist explains the
	// short counter-shifts it causes rather than the other way around
	order := make([]int, 0, len(pairs))
	for idx, p := range pairs {
		if p.old != p.new {
			order = append(order, idx)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ad, bd := displacement(pairs[a]), displacement(pairs[b])
		if ad != bd {
			return bd - ad
		}
		return pairs[a].old - pairs[b].old
	})
	for _, idx := range order {
		p := pairs[idx]
		if !p.mutated && lands(removed, inserted, p) {
			continue // provisionally implicit
		}
		emitted[idx] = true
		removed.Insert(p.old)
		inserted.Insert(p.new)
	}

	// each emission shifts the frame for everyone else, so re-check every
	// implicit pair (stationary ones included) until the set is stable
	for {
		flipped := false
		for idx, p := range pairs {
			if emitted[idx] || lands(removed, inserted, p) {
				continue
			}
			emitted[idx] = true
			removed.Insert(p.old)
			inserted.Insert(p.new)
			flipped = true
		}
		if !flipped {
			break
		}
	}

	for idx, p := range pairs {
		if emitted[idx] {
			cs.Moves = append(cs.Moves, changeset.Move{Source: p.old, Destination: p.new, IsMutated: p.mutated})
		} else if p.mutated {
			cs.Mutations.Insert(p.new)
		}
	}
	slices.SortFunc(cs.Moves, func(a, b changeset.Move) int { return a.Source - b.Source })
}

func displacement(p anchorPair) int {
	if p.new > p.old {
		return p.new - p.old
	}
	return p.old - p.new
}

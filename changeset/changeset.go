// Package changeset describes how one ordered sequence becomes another:
// inserts, removals, in-place mutations, and moves.
package changeset

import (
	"fmt"
	"slices"

	"github.com/RACCommunity/ReactiveCollections/indexset"
)

// Move records an element that occupies different positions across two
// versions of a sequence.
// Source is an offset in the previous frame, Destination in the current one.
// IsMutated records that the element also changed value.
type Move struct {
	Source      int  `json:"source"`
	Destination int  `json:"destination"`
	IsMutated   bool `json:"isMutated,omitempty"`
}

// Changeset describes the difference between two versions of a sequence.
//
// Insert offsets are expressed in the current frame, removal and mutation
// offsets in the previous frame; mutation offsets are position-invariant
// (the element holds the same offset in both frames). An element that both
// changed value and changed position appears in Moves with IsMutated set,
// never in Mutations.
type Changeset struct {
	Inserts   indexset.Set `json:"inserts"`
	Removals  indexset.Set `json:"removals"`
	Mutations indexset.Set `json:"mutations"`
	Moves     []Move       `json:"moves,omitempty"`
}

// AllInserts returns the changeset framing a collection of the given size as
// its own initial snapshot: every offset inserted, nothing else.
func AllInserts(count int) Changeset {
	return Changeset{Inserts: indexset.FromRange(0, count)}
}

// IsEmpty returns whether this changeset describes no difference at all.
func (c Changeset) IsEmpty() bool {
	return c.Inserts.IsEmpty() && c.Removals.IsEmpty() && c.Mutations.IsEmpty() && len(c.Moves) == 0
}

// Equal compares field-wise; the move lists are compared element-wise in
// order. Consumers that only care about the described transformation should
// compare via Apply instead, since distinct move lists can describe the same
// transformation.
func (c Changeset) Equal(o Changeset) bool {
	return c.Inserts.Equal(o.Inserts) &&
		c.Removals.Equal(o.Removals) &&
		c.Mutations.Equal(o.Mutations) &&
		slices.Equal(c.Moves, o.Moves)
}

func (c Changeset) String() string {
	return fmt.Sprintf("inserts=%v removals=%v mutations=%v moves=%+v",
		c.Inserts, c.Removals, c.Mutations, c.Moves)
}

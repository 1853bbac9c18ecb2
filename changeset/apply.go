package changeset

import (
	"slices"
)

// Apply is the canonical interpretation of a well-formed Changeset: it
// rebuilds current from previous. It copies mutated ranges from current,
// removes removal offsets and move sources in reverse range order, then
// inserts insert offsets and move destinations in forward range order,
// taking the inserted slices from current.
//
// Apply defines what a changeset means: every changeset surfaced by this
// module turns its previous sequence into its current one under this
// procedure. A hand-built changeset that violates the frame invariants gets
// no such guarantee.
func Apply[T any](previous, current []T, c Changeset) []T {
	values := slices.Clone(previous)

	for r := range c.Mutations.Ranges() {
		copy(values[r.Low:r.High], current[r.Low:r.High])
	}

	removals := c.Removals.Clone()
	inserts := c.Inserts.Clone()
	for _, m := range c.Moves {
		removals.Insert(m.Source)
		inserts.Insert(m.Destination)
	}

	for r := range removals.ReversedRanges() {
		values = slices.Delete(values, r.Low, r.High)
	}
	for r := range inserts.Ranges() {
		values = slices.Insert(values, r.Low, current[r.Low:r.High]...)
	}
	return values
}

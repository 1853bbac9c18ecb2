package diff

import (
	"reflect"
	"testing"

	"github.com/RACCommunity/ReactiveCollections/changeset"
	"github.com/RACCommunity/ReactiveCollections/indexset"
)

// reproduce asserts the defining law: applying the diff of previous and
// current to previous yields current.
func reproduce[T comparable](t *testing.T, previous, current []T) changeset.Changeset {
	t.Helper()

	cs := Comparable(previous, current)
	actual := changeset.Apply(previous, current, cs)
	if len(actual) == 0 && len(current) == 0 {
		return cs
	}
	if !reflect.DeepEqual(actual, current) {
		t.Errorf("apply mismatch: expected %v, was %v (changeset %v)", current, actual, cs)
	}

	checkWellFormed(t, cs)
	return cs
}

func checkWellFormed(t *testing.T, cs changeset.Changeset) {
	t.Helper()

	if !cs.Inserts.Intersect(cs.Mutations).IsEmpty() {
		t.Errorf("inserts overlap mutations: %v", cs)
	}
	if !cs.Removals.Intersect(cs.Mutations).IsEmpty() {
		t.Errorf("removals overlap mutations: %v", cs)
	}
	for _, m := range cs.Moves {
		if cs.Removals.Contains(m.Source) {
			t.Errorf("move source %d also removed: %v", m.Source, cs)
		}
		if cs.Inserts.Contains(m.Destination) {
			t.Errorf("move destination %d also inserted: %v", m.Destination, cs)
		}
	}
}

func TestPureInsertions(t *testing.T) {
	cs := reproduce(t, []int{0, 1, 2, 3}, []int{10, 0, 11, 1, 12, 2, 3})

	expected := changeset.Changeset{Inserts: indexset.Of(0, 2, 4)}
	if !cs.Equal(expected) {
		t.Errorf("expected %v, was: %v", expected, cs)
	}
}

func TestPureRemovals(t *testing.T) {
	cs := reproduce(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, []int{0, 3, 7})

	expected := changeset.Changeset{Removals: indexset.Of(1, 2, 4, 5, 6, 8)}
	if !cs.Equal(expected) {
		t.Errorf("expected %v, was: %v", expected, cs)
	}
}

type pair struct {
	key   string
	value string
}

func TestMutationsViaIdentity(t *testing.T) {
	previous := []pair{{"k1", "v1_old"}, {"k2", "v2"}, {"k3", "v3_old"}, {"k4", "v4"}}
	current := []pair{{"k1", "v1_new"}, {"k2", "v2"}, {"k3", "v3_new"}, {"k4", "v4"}}

	cs := Diff(previous, current,
		func(p pair) string { return p.key },
		func(a, b pair) bool { return a == b })

	expected := changeset.Changeset{Mutations: indexset.Of(0, 2)}
	if !cs.Equal(expected) {
		t.Errorf("expected %v, was: %v", expected, cs)
	}

	actual := changeset.Apply(previous, current, cs)
	if !reflect.DeepEqual(actual, current) {
		t.Errorf("apply mismatch: %v", actual)
	}
}

func TestForwardMove(t *testing.T) {
	cs := reproduce(t, []int{0, 1, 2, 3, 4}, []int{1, 2, 3, 0, 4})

	expected := changeset.Changeset{Moves: []changeset.Move{{Source: 0, Destination: 3}}}
	if !cs.Equal(expected) {
		t.Errorf("expected %v, was: %v", expected, cs)
	}
}

func TestBackwardMove(t *testing.T) {
	cs := reproduce(t, []int{0, 1, 2, 3, 4}, []int{4, 0, 1, 2, 3})

	expected := changeset.Changeset{Moves: []changeset.Move{{Source: 4, Destination: 0}}}
	if !cs.Equal(expected) {
		t.Errorf("expected %v, was: %v", expected, cs)
	}
}

func TestMoveWithRemoval(t *testing.T) {
	cs := reproduce(t, []int{0, 1, 2, 3, 4}, []int{2, 3, 0, 4})

	expected := changeset.Changeset{
		Removals: indexset.Of(1),
		Moves:    []changeset.Move{{Source: 0, Destination: 2}},
	}
	if !cs.Equal(expected) {
		t.Errorf("expected %v, was: %v", expected, cs)
	}
}

func TestMutatedMove(t *testing.T) {
	previous := []pair{{"a", "1"}, {"b", "2"}, {"c", "3"}}
	current := []pair{{"b", "2"}, {"c", "3"}, {"a", "one"}}

	cs := Diff(previous, current,
		func(p pair) string { return p.key },
		func(a, b pair) bool { return a == b })

	expected := changeset.Changeset{
		Moves: []changeset.Move{{Source: 0, Destination: 2, IsMutated: true}},
	}
	if !cs.Equal(expected) {
		t.Errorf("expected %v, was: %v", expected, cs)
	}

	actual := changeset.Apply(previous, current, cs)
	if !reflect.DeepEqual(actual, current) {
		t.Errorf("apply mismatch: %v", actual)
	}
}

func TestEmptyPrevious(t *testing.T) {
	cs := reproduce(t, nil, []int{1, 2, 3})

	if !cs.Equal(changeset.AllInserts(3)) {
		t.Errorf("expected all-inserts, was: %v", cs)
	}
}

func TestEmptyCurrent(t *testing.T) {
	cs := reproduce(t, []int{1, 2, 3}, nil)

	expected := changeset.Changeset{Removals: indexset.FromRange(0, 3)}
	if !cs.Equal(expected) {
		t.Errorf("expected all-removals, was: %v", cs)
	}
}

func TestIdenticalSequences(t *testing.T) {
	cs := reproduce(t, []int{1, 2, 3}, []int{1, 2, 3})

	if !cs.IsEmpty() {
		t.Errorf("expected empty changeset, was: %v", cs)
	}

	if !Comparable[int](nil, nil).IsEmpty() {
		t.Error("diff of nothing should be empty")
	}
}

func TestDuplicateIdentities(t *testing.T) {
	// duplicated identities are never anchored: each occurrence degrades to
	// a removal plus an insert
	previous := []int{1, 1, 2}
	current := []int{1, 2, 1}

	cs := reproduce(t, previous, current)
	if len(cs.Moves) != 0 {
		t.Errorf("duplicates should not move, was: %v", cs)
	}
	if !cs.Removals.Equal(indexset.Of(0, 1)) || !cs.Inserts.Equal(indexset.Of(0, 2)) {
		t.Errorf("unexpected duplicate handling: %v", cs)
	}
}

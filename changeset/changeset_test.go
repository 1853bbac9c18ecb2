package changeset

import (
	"testing"

	"github.com/RACCommunity/ReactiveCollections/indexset"
)

func TestAllInserts(t *testing.T) {
	c := AllInserts(4)

	if !c.Inserts.Equal(indexset.FromRange(0, 4)) {
		t.Errorf("unexpected inserts: %v", c.Inserts)
	}
	if !c.Removals.IsEmpty() || !c.Mutations.IsEmpty() || len(c.Moves) != 0 {
		t.Errorf("expected only inserts: %v", c)
	}
	if !AllInserts(0).IsEmpty() {
		t.Error("all-inserts of zero should be empty")
	}
}

func TestEqual(t *testing.T) {
	a := Changeset{
		Inserts: indexset.Of(1),
		Moves:   []Move{{Source: 0, Destination: 2}},
	}

	if !a.Equal(a) {
		t.Error("changeset should equal itself")
	}
	if a.Equal(Changeset{Inserts: indexset.Of(1)}) {
		t.Error("move lists differ, should not be equal")
	}
	if a.Equal(Changeset{Inserts: indexset.Of(2), Moves: a.Moves}) {
		t.Error("inserts differ, should not be equal")
	}

	b := Changeset{
		Inserts: indexset.Of(1),
		Moves:   []Move{{Source: 0, Destination: 2, IsMutated: true}},
	}
	if a.Equal(b) {
		t.Error("mutation flag differs, should not be equal")
	}
}

func TestIsEmpty(t *testing.T) {
	if !(Changeset{}).IsEmpty() {
		t.Error("zero changeset should be empty")
	}
	if (Changeset{Mutations: indexset.Of(0)}).IsEmpty() {
		t.Error("changeset with mutations should not be empty")
	}
}

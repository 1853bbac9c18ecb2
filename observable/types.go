package observable

import (
	"context"
	"iter"

	"github.com/RACCommunity/ReactiveCollections/bus"
	"github.com/RACCommunity/ReactiveCollections/changeset"
)

// Array is an observable, mutable ordered sequence.
// Edits happen in batches through Modify; each batch publishes one Snapshot
// describing its net effect to every observer.
type Array[T any] interface {
	// Len returns the number of elements.
	Len() int

	// Get returns the element at offset i.
	Get(i int) T

	// Items returns a copy of the current contents.
	Items() []T

	// All yields the current contents with their offsets.
	// The iteration walks the contents as of the first yield; a concurrent
	// Modify doesn't affect it.
	All() iter.Seq2[int, T]

	// Modify runs fn over an exclusively owned staging view of the contents
	// and commits its net effect as one published Snapshot.
	// Batches are serialised; fn must not re-enter this Array.
	Modify(fn func(v *View[T]))

	// Observe joins an observer. The listener synchronously holds an initial
	// Snapshot framing the current contents as all-inserts (nil Previous),
	// followed by every Snapshot published afterwards, in publish order.
	// Observing a closed Array still yields the initial Snapshot, then the
	// listener reports done.
	Observe(ctx context.Context) bus.Listener[Snapshot[T]]

	// Close completes every observer after it drains. Close is idempotent;
	// Modify after Close panics.
	Close()
}

// Snapshot is the value published when an observable sequence changes:
// the sequence before, the sequence after, and the changeset between them.
// Previous is nil only on the initial snapshot an observer receives.
type Snapshot[T any] struct {
	Previous  []T
	Current   []T
	Changeset changeset.Changeset
}

// IsInitial returns whether this is the first snapshot of a subscription,
// framing the whole collection as inserted.
func (s Snapshot[T]) IsInitial() bool {
	return s.Previous == nil
}

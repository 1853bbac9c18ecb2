// Package observable provides a mutable ordered container that publishes a
// changeset-carrying snapshot for every batch of edits applied to it.
package observable

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/RACCommunity/ReactiveCollections/bus"
	"github.com/RACCommunity/ReactiveCollections/changeset"
)

// New builds a new observable Array holding the given elements.
func New[T any](items ...T) Array[T] {
	storage := make([]T, len(items))
	copy(storage, items)

	return &arrayImpl[T]{
		storage: storage,
		b:       bus.New[Snapshot[T]](),
	}
}

type arrayImpl[T any] struct {
	// write serialises Modify/Observe/Close, so observers join and commits
	// publish in one global order.
	write  sync.Mutex
	closed bool

	// storage is replaced wholesale on commit and never mutated afterwards;
	// readers copy the slice header under the read lock and are then free.
	read    sync.RWMutex
	storage []T

	b bus.Bus[Snapshot[T]]
}

func (a *arrayImpl[T]) current() []T {
	a.read.RLock()
	defer a.read.RUnlock()
	return a.storage
}

func (a *arrayImpl[T]) Len() int {
	return len(a.current())
}

func (a *arrayImpl[T]) Get(i int) T {
	return a.current()[i]
}

func (a *arrayImpl[T]) Items() []T {
	return slices.Clone(a.current())
}

func (a *arrayImpl[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, e := range a.current() {
			if !yield(i, e) {
				return
			}
		}
	}
}

func (a *arrayImpl[T]) Modify(fn func(v *View[T])) {
	a.write.Lock()
	defer a.write.Unlock()

	if a.closed {
		panic("observable: modify after close")
	}

	previous := a.storage // safe: storage only swaps under write
	v := newView(previous)
	fn(v)

	snap := Snapshot[T]{
		Previous:  previous,
		Current:   v.items,
		Changeset: v.changeset(),
	}

	a.read.Lock()
	a.storage = snap.Current
	a.read.Unlock()

	// published inside the write lock: observers of consecutive snapshots
	// see previous == the prior snapshot's current
	a.b.Publish(snap)
}

func (a *arrayImpl[T]) Observe(ctx context.Context) bus.Listener[Snapshot[T]] {
	a.write.Lock()
	defer a.write.Unlock()

	initial := Snapshot[T]{
		Current:   a.storage,
		Changeset: changeset.AllInserts(len(a.storage)),
	}
	return a.b.JoinWith(ctx, initial)
}

func (a *arrayImpl[T]) Close() {
	a.write.Lock()
	defer a.write.Unlock()

	if a.closed {
		return
	}
	a.closed = true
	a.b.Close()
}

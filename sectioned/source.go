// Package sectioned composes an observable array of sections, each itself an
// observable array, into a single stream of section- and row-level events.
package sectioned

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/RACCommunity/ReactiveCollections/bus"
	"github.com/RACCommunity/ReactiveCollections/changeset"
	"github.com/RACCommunity/ReactiveCollections/indexset"
	"github.com/RACCommunity/ReactiveCollections/observable"
)

// Event is one update from a sectioned source.
// Either Sections describes section-level changes (Section is -1), or Rows
// describes row-level changes within the section at offset Section.
// Reload asks the consumer to rebuild everything instead.
type Event struct {
	Sections changeset.Changeset
	Section  int
	Rows     changeset.Changeset
	Reload   bool
}

// Source multiplexes an outer array of sections and every inner array into
// one ordered event stream.
type Source[T any] interface {
	// Observe joins an observer. The listener synchronously holds an initial
	// event framing the current sections as all-inserts, followed by every
	// event published afterwards.
	Observe(ctx context.Context) bus.Listener[Event]

	// Wait blocks until the source winds down: the outer array closed or the
	// construction context was cancelled.
	Wait() error
}

// New builds a Source over the given outer array and starts consuming it.
// The source runs until ctx is cancelled or outer closes.
func New[T any](ctx context.Context, outer observable.Array[observable.Array[T]]) Source[T] {
	g, gctx := errgroup.WithContext(ctx)
	s := &sourceImpl[T]{b: bus.New[Event](), g: g}

	l := outer.Observe(gctx)

	// the outer initial snapshot arrives synchronously; it only needs child
	// subscriptions, since observers get their own initial framing on join
	if snap, ok := l.Next(); ok {
		s.lock.Lock()
		s.sections = make([]*sectionState[T], len(snap.Current))
		for i, arr := range snap.Current {
			s.sections[i] = s.spawn(gctx, arr, i)
		}
		s.lock.Unlock()
	}

	g.Go(func() error {
		defer s.windDown()

		for {
			snap, ok := l.Next()
			if !ok {
				return nil
			}
			s.apply(gctx, snap)
		}
	})

	return s
}

type sourceImpl[T any] struct {
	b bus.Bus[Event]
	g *errgroup.Group

	lock     sync.Mutex
	sections []*sectionState[T]
}

type sectionState[T any] struct {
	arr    observable.Array[T]
	index  int // current outer offset, -1 once removed
	cancel context.CancelFunc
}

func (s *sourceImpl[T]) Observe(ctx context.Context) bus.Listener[Event] {
	s.lock.Lock()
	defer s.lock.Unlock()

	initial := Event{Section: -1, Sections: changeset.AllInserts(len(s.sections))}
	return s.b.JoinWith(ctx, initial)
}

func (s *sourceImpl[T]) Wait() error {
	return s.g.Wait()
}

func (s *sourceImpl[T]) windDown() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, st := range s.sections {
		st.index = -1
		st.cancel()
	}
	s.sections = nil
	s.b.Close()
}

// apply reconciles one outer snapshot: emits the section-level event and
// rebuilds the child subscriptions to match the new section order.
func (s *sourceImpl[T]) apply(ctx context.Context, snap observable.Snapshot[observable.Array[T]]) {
	s.lock.Lock()
	defer s.lock.Unlock()

	// going from or to empty collapses to a wholesale reload
	if len(snap.Previous) == 0 || len(snap.Current) == 0 {
		s.b.Publish(Event{Section: -1, Reload: true})
		for _, st := range s.sections {
			st.index = -1
			st.cancel()
		}
		s.sections = make([]*sectionState[T], len(snap.Current))
		for i, arr := range snap.Current {
			s.sections[i] = s.spawn(ctx, arr, i)
		}
		return
	}

	s.b.Publish(Event{Section: -1, Sections: snap.Changeset})

	cs := snap.Changeset
	next := make([]*sectionState[T], len(snap.Current))

	removed := cs.Removals.Clone()
	inserted := cs.Inserts.Clone()

	// moves carry their child across; a mutated move got a new array
	for _, m := range cs.Moves {
		st := s.sections[m.Source]
		removed.Insert(m.Source)
		inserted.Insert(m.Destination)

		if m.IsMutated {
			st.index = -1
			st.cancel()
			st = s.spawn(ctx, snap.Current[m.Destination], m.Destination)
		}
		next[m.Destination] = st
	}

	// survivors keep relative order: the k-th surviving old section lands at
	// the k-th position not taken by an insert or a move destination
	k := 0
	for oldIdx, st := range s.sections {
		if removed.Contains(oldIdx) {
			if cs.Removals.Contains(oldIdx) {
				st.index = -1
				st.cancel()
			}
			continue
		}

		pos := inserted.NthAbsent(k)
		k++

		if cs.Mutations.Contains(oldIdx) {
			// the section's array itself was swapped out
			st.index = -1
			st.cancel()
			st = s.spawn(ctx, snap.Current[pos], pos)
		}
		next[pos] = st
	}

	for pos := range cs.Inserts.Offsets() {
		next[pos] = s.spawn(ctx, snap.Current[pos], pos)
	}

	for i, st := range next {
		st.index = i
	}
	s.sections = next
}

// spawn must be called under lock.
func (s *sourceImpl[T]) spawn(ctx context.Context, arr observable.Array[T], index int) *sectionState[T] {
	childCtx, cancel := context.WithCancel(ctx)
	st := &sectionState[T]{arr: arr, index: index, cancel: cancel}

	s.g.Go(func() error {
		l := arr.Observe(childCtx)

		first := true
		for {
			snap, ok := l.Next()
			if !ok {
				return nil
			}
			if first {
				first = false
				continue // initial rows ride along with the section framing
			}
			s.forward(st, snap)
		}
	})

	return st
}

func (s *sourceImpl[T]) forward(st *sectionState[T], snap observable.Snapshot[T]) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if st.index < 0 {
		return // section already dropped
	}

	// an inner transition between empty and non-empty collapses to a reload
	// of just this section
	if (len(snap.Previous) == 0) != (len(snap.Current) == 0) {
		s.b.Publish(Event{
			Section:  -1,
			Sections: changeset.Changeset{Mutations: indexset.Of(st.index)},
		})
		return
	}

	s.b.Publish(Event{Section: st.index, Rows: snap.Changeset})
}

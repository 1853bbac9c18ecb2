// Package bus provides the broadcast channel that observable collections
// publish their snapshots over.
package bus

import (
	"context"
	"iter"
	"math/rand/v2"
	"sync"

	"github.com/taylorza/go-lfsr"
)

// New builds a new concurrent broadcast bus.
func New[X any]() Bus[X] {
	return &busImpl[X]{
		subs:   make(map[int]int),
		tokens: lfsr.NewLfsr32(rand.Uint32()),
		cond:   sync.NewCond(&sync.Mutex{}),
	}
}

type busImpl[X any] struct {
	head   int
	events []X
	subs   map[int]int   // listener token => cursor into the virtual event log
	tokens *lfsr.Lfsr32  // names listeners of this bus

	cond   *sync.Cond
	closed bool
}

// nextToken must be called under lock. The shift register cycles far beyond
// any plausible listener count, but handing out a live token would cross two
// listeners' cursors, so those are skipped regardless.
func (b *busImpl[X]) nextToken() int {
	for {
		t, _ := b.tokens.Next()
		who := int(t)
		if _, live := b.subs[who]; who != 0 && !live {
			return who
		}
	}
}

func (b *busImpl[X]) Publish(all ...X) (awoke bool) {
	if len(all) == 0 {
		return false // broadcast would be wasteful
	}

	b.cond.L.Lock()
	defer b.cond.L.Unlock()

	if b.closed {
		panic("bus: publish after close")
	}

	b.head += len(all)

	if len(b.subs) == 0 {
		b.events = nil
		return false // we can literally drop all, noone cares
	}

	b.events = append(b.events, all...)
	b.cond.Broadcast()

	// the lock is still held, so woken listeners haven't run yet: this only
	// trims what was consumed before this call
	return b.trimEvents()
}

func (b *busImpl[X]) Close() {
	b.cond.L.Lock()
	defer b.cond.L.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.cond.Broadcast()
}

func (b *busImpl[X]) Join(ctx context.Context) Listener[X] {
	return b.JoinWith(ctx)
}

func (b *busImpl[X]) JoinWith(ctx context.Context, seed ...X) Listener[X] {
	b.cond.L.Lock()
	defer b.cond.L.Unlock()

	l := &busListener[X]{ctx: ctx, b: b, who: b.nextToken()}
	if len(seed) != 0 {
		l.pending = append(l.pending, seed...)
	}

	if b.closed {
		return l // never registered: drains its seeds, then done
	}

	b.subs[l.who] = b.head

	go func() {
		<-ctx.Done()

		b.cond.L.Lock()
		defer b.cond.L.Unlock()

		delete(b.subs, l.who)
		b.trimEvents() // we can purge events

		// wake up everyone
		// TODO: bad for large numbers of listeners, they all have to check if they're evicted
		b.cond.Broadcast()
	}()

	return l
}

// trimEvents must be called under lock.
func (b *busImpl[X]) trimEvents() (trimmed bool) {
	m := b.head
	for _, cand := range b.subs {
		m = min(cand, m)
	}
	if m == b.head {
		if len(b.events) > 0 {
			b.events = nil
			return true // we always had at least one event, someone consumed it
		}
		return false
	}

	start := b.head - len(b.events)
	strip := m - start
	if strip > 0 {
		b.events = b.events[strip:]
		return true // someone consumed an event
	}
	return false
}

// wait blocks until events are available for who, passing them to handler,
// which returns how many to consume. Returns false once the listener is done.
func (b *busImpl[X]) wait(who int, handler func(avail []X) (consume int)) (ok bool) {
	b.cond.L.Lock()
	defer b.cond.L.Unlock()

	for {
		last, ok := b.subs[who]
		if !ok {
			// either wrong, OR we got done for
			return false
		}

		if last == b.head {
			if b.closed {
				return false // nothing buffered and nothing more coming
			}
			b.cond.Wait()
			continue
		}

		start := b.head - len(b.events)
		skip := last - start
		toSend := b.events[skip:]

		consumed := handler(toSend)
		if consumed < 0 {
			panic("must consume zero or +ve bus entries")
		}

		consumed = min(consumed, len(toSend))
		b.subs[who] = last + consumed // move past consumed
		return true
	}
}

type busListener[X any] struct {
	ctx     context.Context
	b       *busImpl[X]
	who     int
	pending []X // seeds, consumed ahead of the shared log
}

func (l *busListener[X]) Next() (out X, ok bool) {
	l.b.cond.L.Lock()
	if len(l.pending) > 0 {
		out = l.pending[0]
		l.pending = l.pending[1:]
		l.b.cond.L.Unlock()
		return out, true
	}
	l.b.cond.L.Unlock()

	l.b.wait(l.who, func(avail []X) (consume int) {
		out = avail[0]
		ok = true
		return 1
	})
	return out, ok
}

func (l *busListener[X]) Peek() (out X, ok bool) {
	b := l.b

	b.cond.L.Lock()
	defer b.cond.L.Unlock()

	if len(l.pending) > 0 {
		return l.pending[0], true
	}

	last, ok := b.subs[l.who]
	if !ok {
		return
	}

	ok = last < b.head
	if !ok {
		return
	}

	start := b.head - len(b.events)
	skip := last - start
	out = b.events[skip]
	return
}

func (l *busListener[X]) Batch() (out []X) {
	l.b.cond.L.Lock()
	if len(l.pending) > 0 {
		out = l.pending
		l.pending = nil
		l.b.cond.L.Unlock()
		return out
	}
	l.b.cond.L.Unlock()

	l.b.wait(l.who, func(avail []X) (consume int) {
		out = avail
		return len(avail)
	})
	return out
}

func (l *busListener[X]) Iter() (it iter.Seq[X]) {
	return func(yield func(X) bool) {
		for {
			next, ok := l.Next()
			if !ok {
				return
			}
			if !yield(next) {
				return
			}
		}
	}
}

func (l *busListener[X]) Context() (ctx context.Context) {
	return l.ctx
}

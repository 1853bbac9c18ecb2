package bus

import (
	"context"
	"iter"
)

// Bus is a multi-listener broadcast channel.
// Every listener sees published values in publish order; values published
// while no listener is joined are dropped.
type Bus[X any] interface {
	// Publish appends values for every live listener and wakes those that
	// are waiting; it does not wait for them to consume anything.
	// Returns true if values from earlier calls had been consumed by every
	// listener and were trimmed from the shared log.
	// Publish panics once the bus is closed.
	Publish(all ...X) bool

	// Join returns a listener receiving all values published after this call
	// completes. If the context is cancelled, the listener becomes invalid
	// and reports done.
	Join(ctx context.Context) Listener[X]

	// JoinWith is Join with the given values seeded ahead of any published
	// ones, visible only to the returned listener. Seeds are delivered even
	// if the bus is already closed.
	JoinWith(ctx context.Context, seed ...X) Listener[X]

	// Close completes the bus: listeners drain whatever is already buffered
	// for them and then report done. Close is idempotent.
	Close()
}

// Listener consumes values from a Bus.
type Listener[X any] interface {
	// Next waits for and returns the next value.
	// It returns the zero X and false once the listener is done: its context
	// was cancelled, or the bus closed and everything buffered was consumed.
	Next() (X, bool)

	// Peek returns the next value without consuming it, if one is ready.
	Peek() (X, bool)

	// Batch waits for and returns a slice of all available values.
	// A zero-length result means the listener is done.
	Batch() []X

	// Iter yields values until the listener is done.
	Iter() iter.Seq[X]

	// Context returns the context this listener was joined with.
	Context() context.Context
}

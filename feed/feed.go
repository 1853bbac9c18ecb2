// Package feed streams observable array snapshots to WebSocket clients as
// JSON frames, coalescing bursts by re-diffing against the last image each
// client saw.
package feed

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/time/rate"

	"github.com/RACCommunity/ReactiveCollections/changeset"
	"github.com/RACCommunity/ReactiveCollections/diff"
	"github.com/RACCommunity/ReactiveCollections/observable"
)

// Config controls a feed handler.
type Config[T any, K comparable] struct {
	// Identify and Equal recognise elements across frames when coalescing;
	// see the diff package.
	Identify func(T) K
	Equal    func(a, b T) bool

	// FrameRate caps how many frames per second one client receives.
	// Snapshots arriving faster than this coalesce into the next frame.
	// Zero sends every snapshot as its own frame.
	FrameRate rate.Limit

	// Accept configures the WebSocket upgrade.
	Accept *websocket.AcceptOptions
}

// limiter paces one client's frames. Burst stays at one: the frame in hand
// goes out immediately and everything arriving behind it coalesces.
func (c *Config[T, K]) limiter() *rate.Limiter {
	if c.FrameRate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(c.FrameRate, 1)
}

// Frame is one JSON message to a client. The first frame of a connection has
// Initial set and frames the whole collection as inserted; every later frame
// carries the changeset from the previously sent Current to this one.
type Frame[T any] struct {
	Initial   bool                `json:"initial,omitempty"`
	Current   []T                 `json:"current"`
	Changeset changeset.Changeset `json:"changeset"`
}

// Handler returns a http.HandlerFunc that streams arr to each connecting
// client until the client goes away or arr closes.
func Handler[T any, K comparable](arr observable.Array[T], config Config[T, K]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sock, err := websocket.Accept(w, r, config.Accept)
		if err != nil {
			log.Printf("feed: couldn't upgrade %s: %v", r.URL.Path, err)
			return
		}

		// the feed only writes; CloseRead keeps control frames serviced and
		// cancels the context once the client goes away
		ctx := sock.CloseRead(r.Context())

		switch err := stream(ctx, sock, arr, &config); {
		case err == nil:
			sock.Close(websocket.StatusNormalClosure, "")
		case errors.Is(err, context.Canceled):
			sock.CloseNow()
		default:
			sock.Close(websocket.StatusInternalError, "")
		}
	}
}

func stream[T any, K comparable](ctx context.Context, sock *websocket.Conn, arr observable.Array[T], config *Config[T, K]) error {
	limiter := config.limiter()
	l := arr.Observe(ctx)

	var lastSent []T
	sentAny := false

	for {
		snap, ok := l.Next()
		if !ok {
			return nil // array closed (or client went away)
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		// coalesce whatever piled up while the limiter held us back
		if config.FrameRate > 0 {
			for {
				if _, ok := l.Peek(); !ok {
					break
				}
				snap, _ = l.Next()
			}
		}

		var frame Frame[T]
		if !sentAny {
			frame = Frame[T]{
				Initial:   true,
				Current:   snap.Current,
				Changeset: changeset.AllInserts(len(snap.Current)),
			}
		} else {
			frame = Frame[T]{
				Current:   snap.Current,
				Changeset: diff.Diff(lastSent, snap.Current, config.Identify, config.Equal),
			}
		}

		if err := wsjson.Write(ctx, sock, frame); err != nil {
			return err
		}
		lastSent = snap.Current
		sentAny = true
	}
}

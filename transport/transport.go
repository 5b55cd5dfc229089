// Package transport abstracts how peers exchange frames: point-to-point send
// to a named peer's inbox and fleet-wide broadcast. Frames are opaque bytes;
// the client layer owns their encoding.
package transport

import "context"

// Handler consumes an inbound frame. Implementations invoke handlers from a
// delivery goroutine, never inline in the sender's call stack, so a slow
// handler cannot stall message intake on the sending side.
type Handler func(data []byte)

// Transport connects one peer to the fleet.
type Transport interface {
	// Send delivers a frame to the named peer's inbox.
	Send(ctx context.Context, peer string, data []byte) error

	// Broadcast delivers a frame to every peer on the broadcast stream,
	// including the sender.
	Broadcast(ctx context.Context, data []byte) error

	// Subscribe starts delivering inbound frames to registered handlers.
	Subscribe(ctx context.Context) error

	// OnMessage registers a handler for inbound frames. Handlers registered
	// after Subscribe also receive subsequent frames.
	OnMessage(h Handler)

	// Close stops delivery and releases resources.
	Close() error
}

// SendError wraps a failed send or broadcast. There is no retry; the caller
// owns retry policy.
type SendError struct {
	Peer string // empty for broadcasts
	Err  error
}

func (e *SendError) Error() string {
	if e.Peer == "" {
		return "transport: broadcast failed: " + e.Err.Error()
	}
	return "transport: send to " + e.Peer + " failed: " + e.Err.Error()
}

func (e *SendError) Unwrap() error {
	return e.Err
}

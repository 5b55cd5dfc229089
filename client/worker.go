package client

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/fleetcache/fleetcache/codec"
	"github.com/fleetcache/fleetcache/hasher"
	"github.com/fleetcache/fleetcache/protocol"
	"github.com/fleetcache/fleetcache/store"
	"github.com/fleetcache/fleetcache/transport"
)

// Worker issues cache operations as correlated request messages and awaits
// the coordinator's results. It holds no cache entries of its own, only
// pending correlations and its local view of the enabled gate, kept current
// from the fleet-wide event stream.
type Worker struct {
	opts Options
	tr   transport.Transport
	m    codec.Marshaller
	log  Logger

	enabled atomic.Bool
	closed  atomic.Bool

	pending *correlator
	flights singleflight.Group
	done    chan struct{}
}

type flightValue struct {
	value any
	found bool
}

func newWorker(opts Options) (*Worker, error) {
	w := &Worker{
		opts:    opts,
		tr:      opts.Transport,
		m:       opts.Marshaller,
		log:     opts.Logger,
		pending: newCorrelator(),
		done:    make(chan struct{}),
	}
	w.enabled.Store(opts.Enabled)

	w.tr.OnMessage(w.onMessage)

	ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
	defer cancel()
	if err := w.tr.Subscribe(ctx); err != nil {
		return nil, err
	}

	return w, nil
}

// Get retrieves the value cached under the key derived from payload.
func (w *Worker) Get(ctx context.Context, payload any) (any, bool, error) {
	if !w.opts.SingleFlight {
		return w.get(ctx, payload)
	}

	// Coalesce concurrent gets for the same key into one in-flight request.
	key, err := hasher.Sum(payload)
	if err != nil {
		return nil, false, err
	}

	v, err, _ := w.flights.Do("get:"+key, func() (any, error) {
		value, found, err := w.get(ctx, payload)
		if err != nil {
			return nil, err
		}
		return flightValue{value: value, found: found}, nil
	})
	if err != nil {
		return nil, false, err
	}

	fv := v.(flightValue)
	return fv.value, fv.found, nil
}

func (w *Worker) get(ctx context.Context, payload any) (any, bool, error) {
	req, err := payloadRequest(w.m, protocol.ActionGet, payload)
	if err != nil {
		return nil, false, err
	}
	res, err := w.call(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return w.decodeValue(res)
}

// Set caches value under the key derived from payload.
func (w *Worker) Set(ctx context.Context, payload any, value any) (bool, error) {
	req, err := payloadRequest(w.m, protocol.ActionSet, payload)
	if err != nil {
		return false, err
	}
	req.Value, err = w.m.Marshal(value)
	if err != nil {
		return false, err
	}
	res, err := w.call(ctx, req)
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

// Has reports whether a value is cached under the key derived from payload.
func (w *Worker) Has(ctx context.Context, payload any) (bool, error) {
	req, err := payloadRequest(w.m, protocol.ActionHas, payload)
	if err != nil {
		return false, err
	}
	res, err := w.call(ctx, req)
	if err != nil {
		return false, err
	}
	return res.Found, nil
}

// GetByHash retrieves the value cached under hash directly.
func (w *Worker) GetByHash(ctx context.Context, hash string) (any, bool, error) {
	res, err := w.call(ctx, protocol.Request{
		Action: protocol.ActionGetByHash,
		Hash:   hash,
	})
	if err != nil {
		return nil, false, err
	}
	return w.decodeValue(res)
}

// SetByHash caches value under hash directly.
func (w *Worker) SetByHash(ctx context.Context, hash string, value any) (bool, error) {
	raw, err := w.m.Marshal(value)
	if err != nil {
		return false, err
	}
	res, err := w.call(ctx, protocol.Request{
		Action: protocol.ActionSetByHash,
		Hash:   hash,
		Value:  raw,
	})
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

// HasByHash reports whether a value is cached under hash.
func (w *Worker) HasByHash(ctx context.Context, hash string) (bool, error) {
	res, err := w.call(ctx, protocol.Request{
		Action: protocol.ActionHasByHash,
		Hash:   hash,
	})
	if err != nil {
		return false, err
	}
	return res.Found, nil
}

// SetStatus asks the coordinator to flip the fleet-wide enabled gate. The
// worker's own gate updates when the coordinator's event arrives on the
// broadcast stream. SetStatus bypasses the local gate so a disabled service
// can be re-enabled.
func (w *Worker) SetStatus(ctx context.Context, enabled bool) error {
	_, err := w.call(ctx, protocol.Request{
		Action:  protocol.ActionSetStatus,
		Enabled: enabled,
	})
	return err
}

// Reset asks the coordinator to wipe the authoritative store.
func (w *Worker) Reset(ctx context.Context) error {
	_, err := w.call(ctx, protocol.Request{
		Action: protocol.ActionReset,
	})
	return err
}

// Enabled reports this worker's current view of the service gate.
func (w *Worker) Enabled() bool {
	return w.enabled.Load()
}

// Hash returns the cache key derived for payload. It agrees with the key the
// coordinator derives for the same payload.
func (w *Worker) Hash(payload any) (string, error) {
	return hasher.Sum(payload)
}

// Metrics returns the zero value: workers hold no entries.
func (w *Worker) Metrics() store.Metrics {
	return store.Metrics{}
}

// Close stops message handling. Calls pending at close time fail with
// ErrClosed.
func (w *Worker) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(w.done)
	return w.tr.Close()
}

// call sends one request to the coordinator and awaits the correlated result.
// Local gate errors short-circuit before anything is sent. A context without
// a deadline gets the configured request timeout; on expiry the pending
// correlation is deregistered and the call fails with ErrTimedOut.
func (w *Worker) call(ctx context.Context, req protocol.Request) (protocol.Result, error) {
	if w.closed.Load() {
		return protocol.Result{}, ErrClosed
	}
	if req.Action != protocol.ActionSetStatus && !w.enabled.Load() {
		return protocol.Result{}, ErrDisabled
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.RequestTimeout)
		defer cancel()
	}

	req.ID = uuid.NewString()
	req.Sender = w.opts.PeerID

	data, err := w.m.Marshal(protocol.NewRequestMessage(w.opts.ServiceName, req))
	if err != nil {
		return protocol.Result{}, err
	}

	// Register before sending so a fast result cannot beat the registration.
	ch := w.pending.register(req.ID)

	if w.opts.DebugMode {
		w.log.Debug("sending request", "id", req.ID, "action", req.Action)
	}

	if err := w.tr.Send(ctx, w.opts.CoordinatorPeer, data); err != nil {
		w.pending.drop(req.ID)
		return protocol.Result{}, err
	}

	select {
	case res := <-ch:
		if res.Error != "" {
			return res, remoteError(res.Error)
		}
		return res, nil
	case <-ctx.Done():
		w.pending.drop(req.ID)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return protocol.Result{}, ErrTimedOut
		}
		return protocol.Result{}, ctx.Err()
	case <-w.done:
		w.pending.drop(req.ID)
		return protocol.Result{}, ErrClosed
	}
}

// onMessage handles an inbound frame: results resolve pending calls, events
// update the local gate. Frames for other services and results nobody awaits
// are dropped silently.
func (w *Worker) onMessage(data []byte) {
	if w.closed.Load() {
		return
	}

	var msg protocol.Message
	if err := w.m.Unmarshal(data, &msg); err != nil {
		if w.opts.DebugMode {
			w.log.Debug("dropping undecodable frame", "error", err)
		}
		return
	}
	if err := msg.Validate(w.opts.ServiceName); err != nil {
		if w.opts.DebugMode {
			w.log.Debug("dropping frame", "error", err)
		}
		return
	}

	switch {
	case msg.Result != nil:
		if !w.pending.deliver(*msg.Result) && w.opts.DebugMode {
			w.log.Debug("no pending call for result", "id", msg.Result.ID)
		}
	case msg.Event != nil:
		w.applyEvent(*msg.Event)
	}
}

func (w *Worker) applyEvent(ev protocol.Event) {
	switch ev.Action {
	case protocol.ActionSetStatus:
		w.enabled.Store(ev.Enabled)
		if w.opts.DebugMode {
			w.log.Debug("service status changed", "enabled", ev.Enabled, "sender", ev.Sender)
		}
	case protocol.ActionReset:
		// Workers hold no entries; nothing to clear.
		if w.opts.DebugMode {
			w.log.Debug("cache reset observed", "sender", ev.Sender)
		}
	}
}

func (w *Worker) decodeValue(res protocol.Result) (any, bool, error) {
	if !res.Found {
		return nil, false, nil
	}
	var value any
	if err := w.m.Unmarshal(res.Value, &value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fleetcache/fleetcache/codec"
	"github.com/fleetcache/fleetcache/hasher"
	"github.com/fleetcache/fleetcache/protocol"
	"github.com/fleetcache/fleetcache/store"
	"github.com/fleetcache/fleetcache/transport"
)

const taskQueueSize = 256

// task is one unit of work for the dispatch loop. Local facade calls carry a
// reply channel; remote requests reply over the transport to the sender.
type task struct {
	req   protocol.Request
	reply chan protocol.Result
}

// Coordinator owns the authoritative store and serves the whole fleet. All
// store access happens on the single dispatch goroutine, so requests for the
// same key are serialized by construction, without locks.
type Coordinator struct {
	opts  Options
	store store.Store
	tr    transport.Transport
	m     codec.Marshaller
	log   Logger

	enabled atomic.Bool
	closed  atomic.Bool

	tasks chan task
	done  chan struct{}
	wg    sync.WaitGroup
}

func newCoordinator(opts Options) (*Coordinator, error) {
	st, err := opts.StoreFactory.Create()
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		opts:  opts,
		store: st,
		tr:    opts.Transport,
		m:     opts.Marshaller,
		log:   opts.Logger,
		tasks: make(chan task, taskQueueSize),
		done:  make(chan struct{}),
	}
	c.enabled.Store(opts.Enabled)

	c.tr.OnMessage(c.onMessage)

	ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
	defer cancel()
	if err := c.tr.Subscribe(ctx); err != nil {
		st.Close()
		return nil, err
	}

	c.wg.Add(1)
	go c.run()

	return c, nil
}

// Get retrieves the value cached under the key derived from payload.
func (c *Coordinator) Get(ctx context.Context, payload any) (any, bool, error) {
	req, err := c.localRequest(protocol.ActionGet, payload)
	if err != nil {
		return nil, false, err
	}
	res, err := c.submit(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return c.decodeValue(res)
}

// Set caches value under the key derived from payload.
func (c *Coordinator) Set(ctx context.Context, payload any, value any) (bool, error) {
	req, err := c.localRequest(protocol.ActionSet, payload)
	if err != nil {
		return false, err
	}
	req.Value, err = c.m.Marshal(value)
	if err != nil {
		return false, err
	}
	res, err := c.submit(ctx, req)
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

// Has reports whether a value is cached under the key derived from payload.
func (c *Coordinator) Has(ctx context.Context, payload any) (bool, error) {
	req, err := c.localRequest(protocol.ActionHas, payload)
	if err != nil {
		return false, err
	}
	res, err := c.submit(ctx, req)
	if err != nil {
		return false, err
	}
	return res.Found, nil
}

func (c *Coordinator) localRequest(action protocol.Action, payload any) (protocol.Request, error) {
	req, err := payloadRequest(c.m, action, payload)
	if err != nil {
		return protocol.Request{}, err
	}
	req.ID = uuid.NewString()
	req.Sender = c.opts.PeerID
	return req, nil
}

// GetByHash retrieves the value cached under hash directly.
func (c *Coordinator) GetByHash(ctx context.Context, hash string) (any, bool, error) {
	res, err := c.submit(ctx, protocol.Request{
		ID:     uuid.NewString(),
		Action: protocol.ActionGetByHash,
		Sender: c.opts.PeerID,
		Hash:   hash,
	})
	if err != nil {
		return nil, false, err
	}
	return c.decodeValue(res)
}

// SetByHash caches value under hash directly.
func (c *Coordinator) SetByHash(ctx context.Context, hash string, value any) (bool, error) {
	raw, err := c.m.Marshal(value)
	if err != nil {
		return false, err
	}
	res, err := c.submit(ctx, protocol.Request{
		ID:     uuid.NewString(),
		Action: protocol.ActionSetByHash,
		Sender: c.opts.PeerID,
		Hash:   hash,
		Value:  raw,
	})
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

// HasByHash reports whether a value is cached under hash.
func (c *Coordinator) HasByHash(ctx context.Context, hash string) (bool, error) {
	res, err := c.submit(ctx, protocol.Request{
		ID:     uuid.NewString(),
		Action: protocol.ActionHasByHash,
		Sender: c.opts.PeerID,
		Hash:   hash,
	})
	if err != nil {
		return false, err
	}
	return res.Found, nil
}

// SetStatus flips the fleet-wide enabled gate. The coordinator's own gate is
// updated by the dispatch loop before the event goes out on the broadcast
// stream, so it never depends on its own broadcast round-tripping.
func (c *Coordinator) SetStatus(ctx context.Context, enabled bool) error {
	_, err := c.submit(ctx, protocol.Request{
		ID:      uuid.NewString(),
		Action:  protocol.ActionSetStatus,
		Sender:  c.opts.PeerID,
		Enabled: enabled,
	})
	return err
}

// Reset wipes every entry from the store and announces it fleet-wide.
func (c *Coordinator) Reset(ctx context.Context) error {
	_, err := c.submit(ctx, protocol.Request{
		ID:     uuid.NewString(),
		Action: protocol.ActionReset,
		Sender: c.opts.PeerID,
	})
	return err
}

// Enabled reports the coordinator's current gate state.
func (c *Coordinator) Enabled() bool {
	return c.enabled.Load()
}

// Hash returns the cache key derived for payload.
func (c *Coordinator) Hash(payload any) (string, error) {
	return hasher.Sum(payload)
}

// Metrics returns the store's counters.
func (c *Coordinator) Metrics() store.Metrics {
	if c.store == nil {
		return store.Metrics{}
	}
	return c.store.Metrics()
}

// Close stops the dispatch loop, the transport and the store.
func (c *Coordinator) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(c.done)
	c.wg.Wait()

	err := c.tr.Close()
	c.store.Close()
	return err
}

// submit runs req through the dispatch loop and awaits its result, applying
// the default timeout when ctx carries no deadline. Gate errors short-circuit
// before the request is enqueued.
func (c *Coordinator) submit(ctx context.Context, req protocol.Request) (protocol.Result, error) {
	if c.closed.Load() {
		return protocol.Result{}, ErrClosed
	}
	if req.Action != protocol.ActionSetStatus {
		if !c.enabled.Load() {
			return protocol.Result{}, ErrDisabled
		}
		if c.store == nil {
			return protocol.Result{}, ErrNotInitialized
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()
	}

	t := task{req: req, reply: make(chan protocol.Result, 1)}

	select {
	case c.tasks <- t:
	case <-ctx.Done():
		return protocol.Result{}, c.ctxError(ctx)
	case <-c.done:
		return protocol.Result{}, ErrClosed
	}

	select {
	case res := <-t.reply:
		if res.Error != "" {
			return res, remoteError(res.Error)
		}
		return res, nil
	case <-ctx.Done():
		return protocol.Result{}, c.ctxError(ctx)
	case <-c.done:
		return protocol.Result{}, ErrClosed
	}
}

func (c *Coordinator) ctxError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimedOut
	}
	return ctx.Err()
}

// onMessage handles an inbound frame from the transport. It only enqueues;
// execution happens on the dispatch goroutine so a slow store operation can
// never stall message intake.
func (c *Coordinator) onMessage(data []byte) {
	if c.closed.Load() {
		return
	}

	var msg protocol.Message
	if err := c.m.Unmarshal(data, &msg); err != nil {
		if c.opts.DebugMode {
			c.log.Debug("dropping undecodable frame", "error", err)
		}
		return
	}
	if err := msg.Validate(c.opts.ServiceName); err != nil {
		if c.opts.DebugMode {
			c.log.Debug("dropping frame", "error", err)
		}
		return
	}

	// The coordinator consumes requests only. Its own events come back on
	// the broadcast stream; they are already applied.
	if msg.Request == nil {
		return
	}

	select {
	case c.tasks <- task{req: *msg.Request}:
	default:
		c.log.Warn("request queue full, dropping request",
			"id", msg.Request.ID, "sender", msg.Request.Sender)
		c.fail(fmt.Errorf("request queue full, dropped request %s", msg.Request.ID))
	}
}

func (c *Coordinator) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case t := <-c.tasks:
			res := c.execute(t.req)

			if t.reply != nil {
				t.reply <- res
			} else {
				c.respond(t.req.Sender, res)
			}

			if t.req.Action.FleetWide() && res.Error == "" {
				c.publishEvent(t.req.Action)
			}
		}
	}
}

// execute runs one request against the store. It is only ever called from the
// dispatch goroutine; that is the single-mutator guarantee.
func (c *Coordinator) execute(req protocol.Request) protocol.Result {
	res := protocol.Result{ID: req.ID, Action: req.Action}

	if c.opts.DebugMode {
		c.log.Debug("executing request", "id", req.ID, "action", req.Action, "sender", req.Sender)
	}

	if req.Action == protocol.ActionSetStatus {
		c.enabled.Store(req.Enabled)
		res.OK = true
		return res
	}

	if !c.enabled.Load() {
		res.Error = ErrDisabled.Error()
		return res
	}
	if c.store == nil {
		res.Error = ErrNotInitialized.Error()
		return res
	}

	if req.Action == protocol.ActionReset {
		c.store.Reset()
		res.OK = true
		return res
	}

	key, err := c.resolveKey(req)
	if err != nil {
		// A hashing failure aborts this request only, never the dispatcher.
		c.fail(err)
		if c.opts.DebugMode {
			c.log.Debug("request aborted", "id", req.ID, "error", err)
		}
		res.Error = err.Error()
		return res
	}

	switch req.Action {
	case protocol.ActionGet, protocol.ActionGetByHash:
		value, found := c.store.Get(key)
		res.Found = found
		res.Value = value
		res.OK = true
	case protocol.ActionHas, protocol.ActionHasByHash:
		res.Found = c.store.Has(key)
		res.OK = true
	case protocol.ActionSet, protocol.ActionSetByHash:
		res.OK = c.store.Set(key, req.Value)
	default:
		res.Error = "unsupported action: " + string(req.Action)
	}

	return res
}

// resolveKey returns the effective cache key: the request's hash when the
// caller supplied one, otherwise the hash derived from its payload. Callers
// built by this package always supply the hash; the payload path serves
// requests from other protocol clients.
func (c *Coordinator) resolveKey(req protocol.Request) (string, error) {
	if req.Hash != "" {
		return req.Hash, nil
	}
	if req.Action.HashAddressed() {
		return "", protocol.ErrMalformed
	}

	var payload any
	if err := c.m.Unmarshal(req.Payload, &payload); err != nil {
		return "", &hasher.Error{Err: err}
	}
	return hasher.Sum(payload)
}

// respond sends a result to the originating peer's inbox.
func (c *Coordinator) respond(peer string, res protocol.Result) {
	data, err := c.m.Marshal(protocol.NewResultMessage(c.opts.ServiceName, res))
	if err != nil {
		c.fail(err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.RequestTimeout)
	defer cancel()

	if err := c.tr.Send(ctx, peer, data); err != nil {
		c.log.Warn("failed to send result", "peer", peer, "id", res.ID, "error", err)
		c.fail(err)
	}
}

// publishEvent announces a fleet-wide state change on the broadcast stream,
// independent of the point-to-point reply to the originator.
func (c *Coordinator) publishEvent(action protocol.Action) {
	ev := protocol.Event{
		Action:  action,
		Enabled: c.enabled.Load(),
		Sender:  c.opts.PeerID,
	}

	data, err := c.m.Marshal(protocol.NewEventMessage(c.opts.ServiceName, ev))
	if err != nil {
		c.fail(err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.RequestTimeout)
	defer cancel()

	if err := c.tr.Broadcast(ctx, data); err != nil {
		c.log.Warn("failed to publish event", "action", action, "error", err)
		c.fail(err)
	}
}

func (c *Coordinator) decodeValue(res protocol.Result) (any, bool, error) {
	if !res.Found {
		return nil, false, nil
	}
	var value any
	if err := c.m.Unmarshal(res.Value, &value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *Coordinator) fail(err error) {
	if c.opts.OnError != nil {
		c.opts.OnError(err)
	}
}

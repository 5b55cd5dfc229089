package client

import (
	"sync"

	"github.com/fleetcache/fleetcache/protocol"
)

// correlator matches outbound request ids to the goroutines awaiting their
// results. The table is keyed by id, not by action, so any number of calls
// can be outstanding at once and resolve in whatever order results arrive.
type correlator struct {
	mu      sync.Mutex
	pending map[string]chan protocol.Result
}

func newCorrelator() *correlator {
	return &correlator{pending: make(map[string]chan protocol.Result)}
}

// register inserts a one-shot completion handle for id. It must be called
// before the request is sent so a fast result cannot race the registration.
func (c *correlator) register(id string) <-chan protocol.Result {
	ch := make(chan protocol.Result, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	return ch
}

// deliver resolves the pending call for res.ID, firing it exactly once.
// Results with no matching registration are not ours to handle; the caller
// ignores them.
func (c *correlator) deliver(res protocol.Result) bool {
	c.mu.Lock()
	ch, ok := c.pending[res.ID]
	if ok {
		delete(c.pending, res.ID)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}

	ch <- res
	return true
}

// drop removes the registration for id without firing it. Used on send
// failure, deadline expiry and shutdown.
func (c *correlator) drop(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// size returns the number of outstanding registrations.
func (c *correlator) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

package transport

import (
	"context"
	"errors"
	"sync"
)

// ErrUnknownPeer is returned when sending to a peer that never joined the bus.
var ErrUnknownPeer = errors.New("unknown peer")

// ErrTransportClosed is returned when operating on a closed transport.
var ErrTransportClosed = errors.New("transport is closed")

const inboxSize = 256

// Bus is an in-process message bus connecting peers living in one process.
// It exists for single-process deployments and tests; the semantics match the
// Redis transport, including delivery on a goroutine per peer.
type Bus struct {
	mu    sync.RWMutex
	peers map[string]*MemoryTransport
}

// NewBus creates a new in-process bus.
func NewBus() *Bus {
	return &Bus{peers: make(map[string]*MemoryTransport)}
}

// Join registers a peer on the bus and returns its transport endpoint.
// Joining an already-known peer id replaces the previous endpoint.
func (b *Bus) Join(peerID string) *MemoryTransport {
	t := &MemoryTransport{
		bus:    b,
		peerID: peerID,
		inbox:  make(chan []byte, inboxSize),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	b.peers[peerID] = t
	b.mu.Unlock()

	return t
}

func (b *Bus) lookup(peerID string) (*MemoryTransport, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.peers[peerID]
	return t, ok
}

func (b *Bus) all() []*MemoryTransport {
	b.mu.RLock()
	defer b.mu.RUnlock()
	peers := make([]*MemoryTransport, 0, len(b.peers))
	for _, t := range b.peers {
		peers = append(peers, t)
	}
	return peers
}

func (b *Bus) leave(peerID string) {
	b.mu.Lock()
	delete(b.peers, peerID)
	b.mu.Unlock()
}

// MemoryTransport is one peer's endpoint on a Bus.
type MemoryTransport struct {
	bus    *Bus
	peerID string

	inbox chan []byte
	done  chan struct{}
	wg    sync.WaitGroup

	handlersMu sync.RWMutex
	handlers   []Handler

	closeOnce sync.Once
}

// PeerID returns the id this endpoint joined the bus with.
func (t *MemoryTransport) PeerID() string {
	return t.peerID
}

// Send delivers a frame to the named peer's inbox.
func (t *MemoryTransport) Send(ctx context.Context, peer string, data []byte) error {
	target, ok := t.bus.lookup(peer)
	if !ok {
		return &SendError{Peer: peer, Err: ErrUnknownPeer}
	}
	return target.enqueue(ctx, peer, data)
}

// Broadcast delivers a frame to every peer on the bus, including the sender.
func (t *MemoryTransport) Broadcast(ctx context.Context, data []byte) error {
	for _, peer := range t.bus.all() {
		if err := peer.enqueue(ctx, "", data); err != nil {
			return err
		}
	}
	return nil
}

func (t *MemoryTransport) enqueue(ctx context.Context, peer string, data []byte) error {
	select {
	case <-t.done:
		return &SendError{Peer: peer, Err: ErrTransportClosed}
	case <-ctx.Done():
		return &SendError{Peer: peer, Err: ctx.Err()}
	case t.inbox <- data:
		return nil
	}
}

// Subscribe starts the delivery goroutine draining this peer's inbox.
func (t *MemoryTransport) Subscribe(ctx context.Context) error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}

	t.wg.Add(1)
	go t.deliver()
	return nil
}

// OnMessage registers a handler for inbound frames.
func (t *MemoryTransport) OnMessage(h Handler) {
	t.handlersMu.Lock()
	defer t.handlersMu.Unlock()
	t.handlers = append(t.handlers, h)
}

// Close leaves the bus and stops delivery.
func (t *MemoryTransport) Close() error {
	t.closeOnce.Do(func() {
		t.bus.leave(t.peerID)
		close(t.done)
		t.wg.Wait()
	})
	return nil
}

func (t *MemoryTransport) deliver() {
	defer t.wg.Done()

	for {
		select {
		case <-t.done:
			return
		case data := <-t.inbox:
			t.handlersMu.RLock()
			handlers := t.handlers
			t.handlersMu.RUnlock()

			for _, h := range handlers {
				h(data)
			}
		}
	}
}

// Package client implements the cache coordination protocol: a coordinator
// that executes operations against the one authoritative store, and workers
// that issue the same operations as correlated request messages over a shared
// transport.
package client

import (
	"context"

	"github.com/fleetcache/fleetcache/codec"
	"github.com/fleetcache/fleetcache/hasher"
	"github.com/fleetcache/fleetcache/protocol"
	"github.com/fleetcache/fleetcache/store"
)

// Client is the operation surface shared by both roles. A caller invokes it
// identically whether the process is the coordinator or a worker; the
// implementation is selected once at construction from Options.Role.
type Client interface {
	// Get retrieves the value cached under the key derived from payload.
	Get(ctx context.Context, payload any) (any, bool, error)

	// Set caches value under the key derived from payload. The returned bool
	// reports whether the store accepted the write.
	Set(ctx context.Context, payload any, value any) (bool, error)

	// Has reports whether a value is cached under the key derived from payload.
	Has(ctx context.Context, payload any) (bool, error)

	// GetByHash retrieves the value cached under hash directly.
	GetByHash(ctx context.Context, hash string) (any, bool, error)

	// SetByHash caches value under hash directly.
	SetByHash(ctx context.Context, hash string, value any) (bool, error)

	// HasByHash reports whether a value is cached under hash.
	HasByHash(ctx context.Context, hash string) (bool, error)

	// SetStatus enables or disables the service fleet-wide. It bypasses the
	// enabled gate so a disabled service can be re-enabled.
	SetStatus(ctx context.Context, enabled bool) error

	// Reset wipes every entry from the authoritative store.
	Reset(ctx context.Context) error

	// Enabled reports this peer's current view of the service gate.
	Enabled() bool

	// Hash returns the cache key this client derives for payload. It agrees
	// with the key the coordinator derives for the same payload.
	Hash(payload any) (string, error)

	// Metrics returns store counters. Workers, which hold no entries,
	// return the zero value.
	Metrics() store.Metrics

	// Close stops message handling and releases resources. Pending worker
	// calls fail with ErrClosed.
	Close() error
}

// payloadRequest builds a payload-addressed request. The cache key is derived
// from the payload before it is serialized, so the key never depends on how
// the wire codec renders field names or map keys on the other side.
func payloadRequest(m codec.Marshaller, action protocol.Action, payload any) (protocol.Request, error) {
	key, err := hasher.Sum(payload)
	if err != nil {
		return protocol.Request{}, err
	}
	data, err := m.Marshal(payload)
	if err != nil {
		return protocol.Request{}, err
	}
	return protocol.Request{Action: action, Hash: key, Payload: data}, nil
}

// New creates a client for the role fixed in opts. Optional fields are
// defaulted the same way DefaultOptions fills them.
func New(opts Options) (Client, error) {
	opts = withDefaults(opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch opts.Role {
	case RoleCoordinator:
		return newCoordinator(opts)
	case RoleWorker:
		return newWorker(opts)
	default:
		return nil, ErrRoleUndefined
	}
}

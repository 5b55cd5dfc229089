package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetcache/fleetcache/codec"
	"github.com/fleetcache/fleetcache/store"
	"github.com/fleetcache/fleetcache/transport"
)

// Role identifies which side of the protocol a client runs.
type Role int

const (
	// RoleUnknown is the zero value; constructing a client with it fails.
	RoleUnknown Role = iota

	// RoleCoordinator owns the authoritative store and serves requests.
	RoleCoordinator

	// RoleWorker issues requests over the transport and awaits results.
	RoleWorker
)

// DefaultServiceName is used when Options.ServiceName is empty.
const DefaultServiceName = "fleetcache"

// DefaultCoordinatorPeer is the conventional peer id of the coordinator.
const DefaultCoordinatorPeer = "coordinator"

// Options configures a cache client.
type Options struct {
	// ServiceName isolates this cache instance from others sharing the same
	// transport. Stamped into every message; mismatching messages are dropped.
	ServiceName string

	// Role selects the coordinator or worker implementation. Fixed for the
	// lifetime of the process.
	Role Role

	// PeerID is the unique identifier of this peer on the transport. It must
	// match the id the transport endpoint was created with, or results sent
	// to this peer's inbox will never arrive. If empty, a random id is
	// generated.
	PeerID string

	// CoordinatorPeer is the peer id workers send requests to.
	CoordinatorPeer string

	// Enabled is the initial state of the service gate.
	Enabled bool

	// Transport carries messages between peers.
	Transport transport.Transport

	// StoreFactory builds the coordinator's store. Ignored for workers.
	// If nil, an LRU store with default configuration is used.
	StoreFactory store.Factory

	// Marshaller serializes messages and values.
	// If nil, defaults to JSON.
	Marshaller codec.Marshaller

	// Logger is the logger for debug logging.
	// If nil, defaults to no-op logger.
	Logger Logger

	// RequestTimeout is applied to remote calls whose context carries no
	// deadline. On expiry the pending correlation is dropped and the call
	// fails with ErrTimedOut.
	RequestTimeout time.Duration

	// SingleFlight coalesces concurrent worker gets for the same key into
	// one in-flight request.
	SingleFlight bool

	// DebugMode enables debug logging.
	DebugMode bool

	// OnError is called when an error occurs in background operations.
	OnError func(error)
}

// DefaultOptions returns default client options.
func DefaultOptions() Options {
	return Options{
		ServiceName:     DefaultServiceName,
		CoordinatorPeer: DefaultCoordinatorPeer,
		Enabled:         true,
		RequestTimeout:  5 * time.Second,
	}
}

// withDefaults fills optional fields the way DefaultOptions would.
func withDefaults(o Options) Options {
	if o.ServiceName == "" {
		o.ServiceName = DefaultServiceName
	}
	if o.CoordinatorPeer == "" {
		o.CoordinatorPeer = DefaultCoordinatorPeer
	}
	if o.PeerID == "" {
		o.PeerID = uuid.NewString()
	}
	if o.Marshaller == nil {
		o.Marshaller = codec.NewJSONMarshaller()
	}
	if o.Logger == nil {
		o.Logger = NewNoOpLogger()
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 5 * time.Second
	}
	if o.Role == RoleCoordinator && o.StoreFactory == nil {
		o.StoreFactory = store.NewLRUFactory(store.DefaultConfig())
	}
	return o
}

// Validate validates the options.
func (o *Options) Validate() error {
	if o.Role == RoleUnknown {
		return ErrRoleUndefined
	}
	if o.Role != RoleCoordinator && o.Role != RoleWorker {
		return ErrRoleUndefined
	}
	if o.Transport == nil {
		return ErrInvalidConfig
	}
	if o.ServiceName == "" || o.PeerID == "" || o.CoordinatorPeer == "" {
		return ErrInvalidConfig
	}
	if o.Role == RoleCoordinator && o.StoreFactory == nil {
		return ErrInvalidConfig
	}
	return nil
}

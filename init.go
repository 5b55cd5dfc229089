package fleetcache

import (
	"time"

	"github.com/fleetcache/fleetcache/client"
	"github.com/fleetcache/fleetcache/codec"
	"github.com/fleetcache/fleetcache/store"
	"github.com/fleetcache/fleetcache/transport"
)

// Config configures a fleetcache instance.
type Config struct {
	// Enabled is the initial state of the service gate.
	Enabled bool

	// ServiceName isolates this cache instance from others sharing the same
	// transport. If empty, defaults to "fleetcache".
	ServiceName string

	// Coordinator marks this process as the coordinator that owns the
	// authoritative store. All other processes are workers.
	Coordinator bool

	// PeerID is the unique identifier of this peer on the transport. It must
	// match the id the transport endpoint was created with. If empty, workers
	// get a random id and the coordinator gets the well-known coordinator
	// peer id.
	PeerID string

	// CoordinatorPeer is the peer id workers send requests to.
	// If empty, defaults to "coordinator".
	CoordinatorPeer string

	// Transport carries messages between peers.
	Transport transport.Transport

	// MaxEntries bounds the coordinator's store; entries beyond it are
	// evicted least-recently-used first.
	MaxEntries int

	// MaxAge bounds an entry's lifetime in the coordinator's store; zero
	// means no age limit.
	MaxAge time.Duration

	// StoreFactory overrides the store backend. If nil, an LRU store bounded
	// by MaxEntries/MaxAge is used.
	StoreFactory store.Factory

	// SerializationFormat specifies how messages and values are serialized
	// ("json", "msgpack" or "cbor"). Ignored when Marshaller is set.
	SerializationFormat string

	// Marshaller is the marshaller for serialization.
	// If nil, built from SerializationFormat.
	Marshaller codec.Marshaller

	// Logger is the logger for debug logging.
	// If nil, defaults to no-op logger.
	Logger client.Logger

	// RequestTimeout bounds remote calls whose context has no deadline.
	RequestTimeout time.Duration

	// SingleFlight coalesces concurrent worker gets for the same key.
	SingleFlight bool

	// DebugMode enables debug logging.
	DebugMode bool

	// OnError is called when an error occurs in background operations.
	OnError func(error)
}

// New creates a new fleetcache client for the role fixed in cfg.
// This is the root-level initialization function that allows users to import
// from the root package.
func New(cfg Config) (Client, error) {
	marshaller := cfg.Marshaller
	if marshaller == nil {
		format := cfg.SerializationFormat
		if format == "" {
			format = "json"
		}
		m, err := codec.Get(format)
		if err != nil {
			return nil, err
		}
		marshaller = m
	}

	factory := cfg.StoreFactory
	if factory == nil && cfg.Coordinator {
		storeCfg := store.DefaultConfig()
		if cfg.MaxEntries > 0 {
			storeCfg.MaxEntries = cfg.MaxEntries
		}
		storeCfg.MaxAge = cfg.MaxAge
		factory = store.NewLRUFactory(storeCfg)
	}

	role := client.RoleWorker
	if cfg.Coordinator {
		role = client.RoleCoordinator
	}

	peerID := cfg.PeerID
	if peerID == "" && cfg.Coordinator {
		peerID = client.DefaultCoordinatorPeer
	}

	return client.New(client.Options{
		ServiceName:     cfg.ServiceName,
		Role:            role,
		PeerID:          peerID,
		CoordinatorPeer: cfg.CoordinatorPeer,
		Enabled:         cfg.Enabled,
		Transport:       cfg.Transport,
		StoreFactory:    factory,
		Marshaller:      marshaller,
		Logger:          cfg.Logger,
		RequestTimeout:  cfg.RequestTimeout,
		SingleFlight:    cfg.SingleFlight,
		DebugMode:       cfg.DebugMode,
		OnError:         cfg.OnError,
	})
}

// DefaultConfig returns default fleetcache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		ServiceName:         client.DefaultServiceName,
		CoordinatorPeer:     client.DefaultCoordinatorPeer,
		MaxEntries:          10000,
		SerializationFormat: "json",
		RequestTimeout:      5 * time.Second,
	}
}

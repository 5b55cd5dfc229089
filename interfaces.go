package fleetcache

import (
	"github.com/fleetcache/fleetcache/client"
	"github.com/fleetcache/fleetcache/codec"
	"github.com/fleetcache/fleetcache/store"
	"github.com/fleetcache/fleetcache/transport"
)

// Client is an alias for client.Client.
type Client = client.Client

// Logger is an alias for client.Logger.
type Logger = client.Logger

// Marshaller is an alias for codec.Marshaller.
type Marshaller = codec.Marshaller

// Store is an alias for store.Store.
type Store = store.Store

// StoreFactory is an alias for store.Factory.
type StoreFactory = store.Factory

// StoreConfig is an alias for store.Config.
type StoreConfig = store.Config

// StoreMetrics is an alias for store.Metrics.
type StoreMetrics = store.Metrics

// Transport is an alias for transport.Transport.
type Transport = transport.Transport

// DefaultStoreConfig returns default store configuration for the LRU backend.
func DefaultStoreConfig() StoreConfig {
	return store.DefaultConfig()
}

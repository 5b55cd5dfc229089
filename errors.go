package fleetcache

import "github.com/fleetcache/fleetcache/client"

// ErrDisabled is returned for any operation issued while the service is
// disabled.
var ErrDisabled = client.ErrDisabled

// ErrNotInitialized is returned when the coordinator is used before its store
// exists.
var ErrNotInitialized = client.ErrNotInitialized

// ErrRoleUndefined is returned when a client is constructed without a role.
var ErrRoleUndefined = client.ErrRoleUndefined

// ErrTimedOut is returned when a remote call's deadline expires before the
// coordinator's result arrives.
var ErrTimedOut = client.ErrTimedOut

// ErrClosed is returned when operations are performed on a closed client.
var ErrClosed = client.ErrClosed

// ErrInvalidConfig is returned when the configuration is invalid.
var ErrInvalidConfig = client.ErrInvalidConfig

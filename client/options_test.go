package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcache/fleetcache/transport"
)

func TestOptionsValidateRoleUndefined(t *testing.T) {
	opts := DefaultOptions()
	opts.Transport = transport.NewBus().Join("peer")
	opts.PeerID = "peer"

	err := opts.Validate()
	assert.ErrorIs(t, err, ErrRoleUndefined)
}

func TestOptionsValidateMissingTransport(t *testing.T) {
	opts := DefaultOptions()
	opts.Role = RoleWorker
	opts.PeerID = "peer"

	err := opts.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestOptionsValidateCoordinatorNeedsStore(t *testing.T) {
	opts := DefaultOptions()
	opts.Role = RoleCoordinator
	opts.PeerID = "coordinator"
	opts.Transport = transport.NewBus().Join("coordinator")

	err := opts.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(Options{Role: RoleCoordinator})

	assert.Equal(t, DefaultServiceName, opts.ServiceName)
	assert.Equal(t, DefaultCoordinatorPeer, opts.CoordinatorPeer)
	assert.NotEmpty(t, opts.PeerID)
	assert.NotNil(t, opts.Marshaller)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.StoreFactory)
	assert.Equal(t, 5*time.Second, opts.RequestTimeout)
}

func TestNewRoleUndefined(t *testing.T) {
	opts := DefaultOptions()
	opts.Transport = transport.NewBus().Join("peer")

	_, err := New(opts)
	require.ErrorIs(t, err, ErrRoleUndefined)
}

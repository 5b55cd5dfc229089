package client

import "errors"

// ErrDisabled is returned for any operation issued while the service is
// disabled. SetStatus bypasses the gate so the service can be re-enabled.
var ErrDisabled = errors.New("cache service is disabled")

// ErrNotInitialized is returned when the coordinator is used before its store
// exists.
var ErrNotInitialized = errors.New("cache service is not initialized")

// ErrRoleUndefined is returned when a client is constructed without a role.
var ErrRoleUndefined = errors.New("service role is undefined")

// ErrTimedOut is returned when a remote call's deadline expires before the
// coordinator's result arrives. The pending correlation is dropped; there is
// no retry.
var ErrTimedOut = errors.New("remote call timed out")

// ErrClosed is returned when operations are performed on a closed client.
var ErrClosed = errors.New("cache client is closed")

// ErrInvalidConfig is returned when the client options are invalid.
var ErrInvalidConfig = errors.New("invalid client configuration")

// RemoteError reports a failure that happened inside the coordinator while
// executing a request, carried back in the result frame.
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string {
	return "coordinator: " + e.Msg
}

// remoteError maps a result error string back to a local error. Known gate
// errors map to their sentinels so callers can test with errors.Is.
func remoteError(msg string) error {
	switch msg {
	case ErrDisabled.Error():
		return ErrDisabled
	case ErrNotInitialized.Error():
		return ErrNotInitialized
	default:
		return &RemoteError{Msg: msg}
	}
}

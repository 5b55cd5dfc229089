package protocol

import "errors"

// ErrServiceMismatch is returned when a message belongs to a different service
// sharing the same transport. Such messages are dropped, never dispatched.
var ErrServiceMismatch = errors.New("message addressed to a different service")

// ErrMalformed is returned when a message does not carry exactly one of
// request, result or event.
var ErrMalformed = errors.New("malformed message")

// Request asks the coordinator to run one cache operation.
type Request struct {
	// ID correlates the eventual Result with the caller that issued the
	// request. It is unique per outstanding call and is not a cache key.
	ID     string `json:"id"`
	Action Action `json:"action"`

	// Sender is the peer id of the worker that issued the request; the
	// coordinator replies to this peer's inbox.
	Sender string `json:"sender"`

	// Hash is the cache key. Callers derive it from the payload before
	// serialization so the key never depends on the wire codec; it is
	// mandatory for hash-addressed actions.
	Hash string `json:"hash,omitempty"`

	// Payload is the marshalled payload for payload-addressed actions; the
	// coordinator derives the cache key from it when Hash is absent.
	Payload []byte `json:"payload,omitempty"`

	// Value is the marshalled value for set operations.
	Value []byte `json:"value,omitempty"`

	// Enabled is the requested state for set_status.
	Enabled bool `json:"enabled,omitempty"`
}

// Result answers exactly one Request. ID equals the triggering Request's ID.
type Result struct {
	ID     string `json:"id"`
	Action Action `json:"action"`

	// Found answers get/has: whether the key was present.
	Found bool `json:"found,omitempty"`

	// OK reports operation-level success for set, set_status and reset.
	OK bool `json:"ok,omitempty"`

	// Value is the marshalled cached value for get operations.
	Value []byte `json:"value,omitempty"`

	// Error is set when the coordinator could not execute the request; the
	// worker's pending call fails with it instead of hanging.
	Error string `json:"error,omitempty"`
}

// Event is a fleet-wide state change published on the broadcast stream,
// independent of any pending request.
type Event struct {
	Action  Action `json:"action"` // set_status or reset
	Enabled bool   `json:"enabled,omitempty"`
	Sender  string `json:"sender"`
}

// Message is the envelope every frame on the transport decodes to. Exactly one
// of Request, Result or Event is set; Service names the cache instance the
// frame belongs to so independent services can share one transport.
type Message struct {
	Service string   `json:"service"`
	Request *Request `json:"request,omitempty"`
	Result  *Result  `json:"result,omitempty"`
	Event   *Event   `json:"event,omitempty"`
}

// NewRequestMessage wraps req in an envelope stamped with the local service
// name. Callers cannot forge messages for another service.
func NewRequestMessage(service string, req Request) Message {
	return Message{Service: service, Request: &req}
}

// NewResultMessage wraps res in an envelope stamped with the local service name.
func NewResultMessage(service string, res Result) Message {
	return Message{Service: service, Result: &res}
}

// NewEventMessage wraps ev in an envelope stamped with the local service name.
func NewEventMessage(service string, ev Event) Message {
	return Message{Service: service, Event: &ev}
}

// Validate is the single gate before any dispatch: the envelope must be for
// the given service and must carry exactly one well-formed section.
func (m *Message) Validate(service string) error {
	if m.Service != service {
		return ErrServiceMismatch
	}

	sections := 0
	if m.Request != nil {
		sections++
	}
	if m.Result != nil {
		sections++
	}
	if m.Event != nil {
		sections++
	}
	if sections != 1 {
		return ErrMalformed
	}

	switch {
	case m.Request != nil:
		if m.Request.ID == "" || m.Request.Sender == "" || !m.Request.Action.Valid() {
			return ErrMalformed
		}
	case m.Result != nil:
		if m.Result.ID == "" {
			return ErrMalformed
		}
	case m.Event != nil:
		if !m.Event.Action.FleetWide() {
			return ErrMalformed
		}
	}

	return nil
}

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionValid(t *testing.T) {
	valid := []Action{
		ActionGet, ActionHas, ActionSet,
		ActionGetByHash, ActionHasByHash, ActionSetByHash,
		ActionSetStatus, ActionReset,
	}
	for _, a := range valid {
		assert.True(t, a.Valid(), "action %q should be valid", a)
	}

	assert.False(t, Action("delete").Valid())
	assert.False(t, Action("").Valid())
}

func TestActionHashAddressed(t *testing.T) {
	assert.True(t, ActionGetByHash.HashAddressed())
	assert.True(t, ActionHasByHash.HashAddressed())
	assert.True(t, ActionSetByHash.HashAddressed())

	assert.False(t, ActionGet.HashAddressed())
	assert.False(t, ActionReset.HashAddressed())
}

func TestActionFleetWide(t *testing.T) {
	assert.True(t, ActionSetStatus.FleetWide())
	assert.True(t, ActionReset.FleetWide())
	assert.False(t, ActionSet.FleetWide())
}

func TestConstructorsStampService(t *testing.T) {
	req := NewRequestMessage("svc", Request{ID: "1", Action: ActionGet, Sender: "w1"})
	assert.Equal(t, "svc", req.Service)
	require.NotNil(t, req.Request)

	res := NewResultMessage("svc", Result{ID: "1"})
	assert.Equal(t, "svc", res.Service)
	require.NotNil(t, res.Result)

	ev := NewEventMessage("svc", Event{Action: ActionReset, Sender: "c"})
	assert.Equal(t, "svc", ev.Service)
	require.NotNil(t, ev.Event)
}

func TestValidateServiceMismatch(t *testing.T) {
	msg := NewRequestMessage("svc-x", Request{ID: "1", Action: ActionGet, Sender: "w1"})

	assert.NoError(t, msg.Validate("svc-x"))
	assert.ErrorIs(t, msg.Validate("svc-y"), ErrServiceMismatch)
}

func TestValidateMalformed(t *testing.T) {
	cases := map[string]Message{
		"empty envelope": {Service: "svc"},
		"two sections": {
			Service: "svc",
			Request: &Request{ID: "1", Action: ActionGet, Sender: "w1"},
			Result:  &Result{ID: "1"},
		},
		"request without id": {
			Service: "svc",
			Request: &Request{Action: ActionGet, Sender: "w1"},
		},
		"request without sender": {
			Service: "svc",
			Request: &Request{ID: "1", Action: ActionGet},
		},
		"request with unknown action": {
			Service: "svc",
			Request: &Request{ID: "1", Action: "evict", Sender: "w1"},
		},
		"result without id": {
			Service: "svc",
			Result:  &Result{},
		},
		"event with non-fleet action": {
			Service: "svc",
			Event:   &Event{Action: ActionGet, Sender: "c"},
		},
	}

	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, msg.Validate("svc"), ErrMalformed)
		})
	}
}

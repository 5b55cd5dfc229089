package hasher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumDeterministic(t *testing.T) {
	payload := map[string]any{"id": 1, "name": "alice", "tags": []string{"a", "b"}}

	first, err := Sum(payload)
	require.NoError(t, err)
	second, err := Sum(payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestSumEqualPayloads(t *testing.T) {
	// Same entries, different insertion order.
	a := map[string]any{}
	a["x"] = 1
	a["y"] = "two"
	a["z"] = true

	b := map[string]any{}
	b["z"] = true
	b["y"] = "two"
	b["x"] = 1

	ha, err := Sum(a)
	require.NoError(t, err)
	hb, err := Sum(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
}

func TestSumStructAndMapAgree(t *testing.T) {
	type payload struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	hs, err := Sum(payload{ID: 7, Name: "bob"})
	require.NoError(t, err)
	hm, err := Sum(map[string]any{"id": 7, "name": "bob"})
	require.NoError(t, err)

	assert.Equal(t, hs, hm)
}

func TestSumDistinctPayloads(t *testing.T) {
	ha, err := Sum(map[string]any{"id": 1})
	require.NoError(t, err)
	hb, err := Sum(map[string]any{"id": 2})
	require.NoError(t, err)

	assert.NotEqual(t, ha, hb)
}

func TestSumUnsupportedPayload(t *testing.T) {
	_, err := Sum(func() {})
	require.Error(t, err)

	var hashErr *Error
	assert.ErrorAs(t, err, &hashErr)
}

func TestSumContextAgrees(t *testing.T) {
	payload := map[string]any{"id": 42}

	sync, err := Sum(payload)
	require.NoError(t, err)

	async, err := SumContext(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, sync, async)
}

func TestSumContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SumContext(ctx, map[string]any{"id": 1})
	assert.ErrorIs(t, err, context.Canceled)
}

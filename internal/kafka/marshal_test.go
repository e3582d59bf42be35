package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		Ref string `json:"ref"`
		Qty int    `json:"qty"`
	}

	raw := json.RawMessage(MustMarshal(payload{Ref: "SO-0007", Qty: 3}))
	got, err := UnwrapPayload[payload](raw)
	require.NoError(t, err)
	assert.Equal(t, payload{Ref: "SO-0007", Qty: 3}, got)

	_, err = UnwrapPayload[payload](json.RawMessage(`{"qty":"three"}`))
	assert.Error(t, err)
}

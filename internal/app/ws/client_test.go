package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/presence"
)

// Deliver and Close operate purely on the send queue, so these tests run
// without an underlying network connection.

func TestDeliverEnqueuesMarshaledEvent(t *testing.T) {
	c := NewClient(nil, "alice", nil, nil)

	ev := presence.Event{Name: presence.EventMessage, Payload: map[string]any{"content": "hi"}}
	require.NoError(t, c.Deliver(ev))

	raw := <-c.send
	var decoded struct {
		Event   string         `json:"event"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, presence.EventMessage, decoded.Event)
	assert.Equal(t, "hi", decoded.Payload["content"])
}

func TestDeliverReportsFullQueue(t *testing.T) {
	c := NewClient(nil, "alice", nil, nil)

	ev := presence.Event{Name: presence.EventMessage}
	for i := 0; i < sendQueueSize; i++ {
		require.NoError(t, c.Deliver(ev))
	}

	err := c.Deliver(ev)
	assert.Error(t, err)
}

func TestDeliverAfterClose(t *testing.T) {
	c := NewClient(nil, "alice", nil, nil)

	c.Close()
	// Closing again is safe.
	c.Close()

	err := c.Deliver(presence.Event{Name: presence.EventMessage})
	assert.Error(t, err)
}

/*
Package ws adapts a gorilla/websocket connection into a presence channel.

It manages the connection lifecycle, the read/write pumps with heartbeat
deadlines, and the inbound socket message path (sending a chat message over the
socket instead of REST). On disconnect the client deterministically removes
itself from the presence registry.
*/
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pairchat/internal/app/message"
	"pairchat/internal/app/presence"
	"pairchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// sendQueueSize is the per-connection outbound buffer. A connection that
	// cannot drain this many events is treated as dead by the delivery router.
	sendQueueSize = 256

	// inboundTimeout bounds the durable append triggered by an inbound socket message.
	inboundTimeout = 10 * time.Second
)

// Client represents one live WebSocket connection belonging to a user.
// It implements presence.Channel.
type Client struct {
	conn *websocket.Conn

	// userID is the authenticated owner of this connection.
	userID string

	// send is the buffered outbound queue drained by WritePump.
	send chan []byte

	registry *presence.Registry
	messages *message.Service

	closeOnce sync.Once

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(conn *websocket.Conn, userID string, registry *presence.Registry, messages *message.Service) *Client {
	return &Client{
		conn:     conn,
		userID:   userID,
		send:     make(chan []byte, sendQueueSize),
		registry: registry,
		messages: messages,
		logger: logx.Logger().With().
			Str("component", "WsClient").
			Str("user_id", userID).
			Logger(),
	}
}

// Deliver implements presence.Channel. It marshals the event and enqueues it
// without blocking; a full or closed queue is reported as an error so the
// router can evict the channel.
func (c *Client) Deliver(ev presence.Event) (err error) {
	payload, merr := json.Marshal(ev)
	if merr != nil {
		return merr
	}

	// Enqueueing on a closed channel panics; the recover turns a racing
	// disconnect into a normal delivery error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel closed")
		}
	}()

	select {
	case c.send <- payload:
		return nil
	default:
		return fmt.Errorf("send queue full (%d events)", sendQueueSize)
	}
}

// Close implements presence.Channel. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump reads inbound frames until the connection drops, handling heartbeats
// and the inbound chat:message path. It must run on a dedicated goroutine.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInbound(frame)
	}
}

// cleanupOnDisconnect removes the channel from the registry and closes the
// underlying connection. After this returns no registry entry for the
// connection remains.
func (c *Client) cleanupOnDisconnect() {
	c.registry.Leave(c)
	c.Close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error during cleanup")
	}

	c.logger.Info().Msg("Client connection cleaned up.")
}

// inboundMessagePayload is the body of an inbound chat:message frame.
type inboundMessagePayload struct {
	To      string       `json:"to"`
	Content string       `json:"content"`
	Type    message.Type `json:"type,omitempty"`
}

// processInbound handles one raw frame received from the client.
func (c *Client) processInbound(frame []byte) {
	var inbound struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(frame, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Event {
	case presence.EventMessage:
		c.handleChatMessage(inbound.Payload)

	default:
		c.logger.Warn().Str("event", inbound.Event).Msg("Client sent unsupported event")
	}
}

// handleChatMessage appends a message on behalf of the connection's owner.
// The durable append (and its echo push to both participants, this connection
// included) happens inside the message service.
func (c *Client) handleChatMessage(payload json.RawMessage) {
	var body inboundMessagePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid chat:message payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), inboundTimeout)
	defer cancel()

	if _, customErr := c.messages.Append(ctx, c.userID, body.To, body.Content, body.Type); customErr != nil {
		c.sendError(customErr.Code, customErr.Message)
	}
}

// sendError pushes a chat:error event back to this connection only.
func (c *Client) sendError(code int, msg string) {
	ev := presence.Event{
		Name: presence.EventError,
		Payload: map[string]any{
			"code":    code,
			"message": msg,
		},
	}

	if err := c.Deliver(ev); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue chat:error event")
	}
}

// WritePump drains the send queue onto the connection and keeps the heartbeat
// alive. It must run on a dedicated goroutine; it exits when the queue closes
// or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

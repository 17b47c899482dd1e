// internal/websocket/client.go
package websocket

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrClientBufferFull is returned when a client cannot keep up with the
// event stream; the frame is dropped rather than blocking the emitter.
var ErrClientBufferFull = errors.New("websocket: client send buffer full")

// Client is one connected front end. Writes go through a buffered channel
// drained by a single write pump, so emitters never block on a slow peer.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

func (c *Client) sendEnvelope(envelope *Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientBufferFull
	}
}

// SendEvent pushes one event frame to the client.
func (c *Client) SendEvent(eventType string, payload interface{}) error {
	return c.sendEnvelope(&Envelope{
		Kind:  "event",
		Event: &Event{Type: eventType, Payload: payload},
	})
}

// SendResponse answers an RPC request.
func (c *Client) SendResponse(id string, result interface{}, errMsg string) error {
	resp := &RPCResponse{ID: id}
	if errMsg != "" {
		resp.Error = errMsg
	} else {
		resp.Result = result
	}
	return c.sendEnvelope(&Envelope{Kind: "rpc_response", Response: resp})
}

// writePump drains the send channel into the connection. It exits when the
// channel is closed or a write fails.
func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// Close shuts down the write pump.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

package stream

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/particles/internal/strategy"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 4096
)

// Client represents a connected websocket viewer.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      string
	send    chan []byte
	dropped atomic.Uint64
}

// queue is called with the hub lock held, so send is still open.
func (c *Client) queue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.dropped.Add(1)
	}
}

// writePump writes messages to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Printf("[STREAM] write error for %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads control messages until the connection fails.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Printf("[STREAM] read error for %s: %v", c.id, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg WSMessage) {
	ctl := c.hub.control
	if ctl == nil {
		c.sendError("read-only stream")
		return
	}

	switch msg.Type {
	case "pause":
		ctl.SetActive(false)
	case "resume":
		ctl.SetActive(true)

	case "strategy":
		var data StrategyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid strategy data")
			return
		}
		kind, err := strategy.ParseKind(data.Kind)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		if err := ctl.SetStrategy(kind); err != nil {
			c.sendError(err.Error())
		}

	case "time_step":
		var data TimeStepData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.Value <= 0 {
			c.sendError("invalid time step")
			return
		}
		ctl.SetTimeStep(data.Value)

	default:
		c.sendError("unknown message type")
	}
}

// sendError replies to this client only. The hub lock keeps send open.
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(ErrorMessage{Type: "error", Message: message})
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.hub.clients[c] {
		c.queue(data)
	}
}

// WebSocket client connection: read/write pumps, keepalive, and the
// subscribe/unsubscribe control protocol.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum control-message size allowed from peer.
	maxMessageSize = 1024

	// Outbound buffer per client; Publish drops the client when it fills.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API already enforces bearer-token auth before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// command is the control frame clients send to manage subscriptions.
type command struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Topic  string `json:"topic"`
}

// Client is one WebSocket connection attached to the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// canSubscribe authorizes topic access for this connection's identity
	// (own chat for end-users, everything for operators).
	canSubscribe func(topic string) bool

	// onSubscribe, when set, is invoked after a successful subscription so
	// the caller can push an initial snapshot.
	onSubscribe func(topic string)

	closeOnce sync.Once
}

// ServeClient upgrades the request and runs the connection until either
// side closes it. canSubscribe gates topics; onSubscribe seeds snapshots.
func ServeClient(hub *Hub, w http.ResponseWriter, r *http.Request, canSubscribe func(topic string) bool, onSubscribe func(topic string)) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		canSubscribe: canSubscribe,
		onSubscribe:  onSubscribe,
	}
	hub.add(c)

	go c.writePump()
	go c.readPump()
	return nil
}

// close shuts the outbound channel exactly once; the write pump then
// closes the underlying connection.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump consumes control frames until the connection drops, then
// releases every subscription the client held.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			continue
		}
		switch cmd.Action {
		case "subscribe":
			if cmd.Topic == "" || (c.canSubscribe != nil && !c.canSubscribe(cmd.Topic)) {
				continue
			}
			c.hub.subscribe(c, cmd.Topic)
			if c.onSubscribe != nil {
				c.onSubscribe(cmd.Topic)
			}
		case "unsubscribe":
			c.hub.unsubscribe(c, cmd.Topic)
		}
	}
}

// writePump drains the send channel to the peer and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

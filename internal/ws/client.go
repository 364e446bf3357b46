// internal/ws/client.go
package ws

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pricepulse/pricepulse-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin checks are handled by the CORS middleware on the rest of
	// the API; browser clients connect from the configured frontend origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the server-to-client frame.
type Message struct {
	Type         string                   `json:"type"`
	ProductID    uint                     `json:"product_id,omitempty"`
	ConnectionID string                   `json:"connection_id,omitempty"`
	Event        *models.PriceChangeEvent `json:"event,omitempty"`
	Error        string                   `json:"error,omitempty"`
	Timestamp    time.Time                `json:"timestamp"`
}

// clientRequest is the client-to-server frame.
type clientRequest struct {
	Action    string `json:"action"`
	ProductID uint   `json:"product_id"`
}

type Client struct {
	ConnectionID string

	hub           *Hub
	conn          *websocket.Conn
	sendCh        chan Message
	subscriptions map[uint]bool
}

// ServeWS upgrades the HTTP request and runs the connection until it closes.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		ConnectionID:  uuid.NewString(),
		hub:           hub,
		conn:          conn,
		sendCh:        make(chan Message, sendBufferSize),
		subscriptions: make(map[uint]bool),
	}

	hub.register(client)

	go client.writePump()
	go client.readPump()

	return nil
}

// send enqueues a message without blocking; reports false when the client's
// buffer is full.
func (c *Client) send(msg Message) bool {
	defer func() {
		// The send channel is closed during unregister; a racing broadcast
		// must not take the process down.
		recover()
	}()

	select {
	case c.sendCh <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var req clientRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("connection_id", c.ConnectionID).
					Debug("WebSocket closed unexpectedly")
			}
			return
		}

		switch req.Action {
		case "subscribe":
			if req.ProductID == 0 {
				c.send(Message{Type: "error", Error: "product_id is required", Timestamp: time.Now().UTC()})
				continue
			}
			c.hub.subscribe(c, req.ProductID)
		case "unsubscribe":
			c.hub.unsubscribe(c, req.ProductID)
		default:
			c.send(Message{Type: "error", Error: "unknown action", Timestamp: time.Now().UTC()})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
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

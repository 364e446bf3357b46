// internal/ws/hub_test.go
package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepulse/pricepulse-backend/internal/models"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func waitForSubscribers(t *testing.T, hub *Hub, productID uint, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount(productID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d subscribers for product %d, got %d", want, productID, hub.SubscriberCount(productID))
}

func TestConnectionEstablished(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub)

	msg := readMessage(t, conn)
	assert.Equal(t, "connection_established", msg.Type)
	assert.NotEmpty(t, msg.ConnectionID)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestSubscribeAndReceivePriceChange(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub)
	readMessage(t, conn) // connection_established

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"action":     "subscribe",
		"product_id": 42,
	}))

	msg := readMessage(t, conn)
	assert.Equal(t, "subscription_confirmed", msg.Type)
	assert.Equal(t, uint(42), msg.ProductID)
	waitForSubscribers(t, hub, 42, 1)

	hub.BroadcastPriceChange(&models.PriceChangeEvent{
		ProductID:   42,
		ProductName: "Espresso Machine",
		OldPrice:    199.99,
		NewPrice:    149.99,
		PriceChange: -50.00,
		Currency:    "USD",
		Timestamp:   time.Now().UTC(),
	})

	msg = readMessage(t, conn)
	assert.Equal(t, "price_change", msg.Type)
	assert.Equal(t, uint(42), msg.ProductID)
	require.NotNil(t, msg.Event)
	assert.Equal(t, 149.99, msg.Event.NewPrice)
}

func TestBroadcastOnlyReachesSubscribers(t *testing.T) {
	hub := NewHub()

	subscribed := dialTestHub(t, hub)
	readMessage(t, subscribed)
	other := dialTestHub(t, hub)
	readMessage(t, other)

	require.NoError(t, subscribed.WriteJSON(map[string]interface{}{
		"action":     "subscribe",
		"product_id": 7,
	}))
	readMessage(t, subscribed)
	waitForSubscribers(t, hub, 7, 1)

	hub.BroadcastPriceChange(&models.PriceChangeEvent{ProductID: 7, NewPrice: 1.00, Timestamp: time.Now().UTC()})

	msg := readMessage(t, subscribed)
	assert.Equal(t, "price_change", msg.Type)

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var unexpected Message
	err := other.ReadJSON(&unexpected)
	assert.Error(t, err, "unsubscribed client should not receive the event")
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "subscribe", "product_id": 9}))
	readMessage(t, conn)
	waitForSubscribers(t, hub, 9, 1)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "unsubscribe", "product_id": 9}))
	msg := readMessage(t, conn)
	assert.Equal(t, "subscription_removed", msg.Type)
	waitForSubscribers(t, hub, 9, 0)
}

func TestUnknownActionReturnsError(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "dance"}))

	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "unknown action", msg.Error)
}

func TestSubscribeRequiresProductID(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": "subscribe"}))

	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "product_id is required", msg.Error)
}

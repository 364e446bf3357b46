// internal/ws/hub.go
package ws

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pricepulse/pricepulse-backend/internal/models"
)

// Hub tracks connected clients and their per-product subscriptions and fans
// price-change events out to the subscribers of the affected product.
type Hub struct {
	mtx sync.RWMutex

	clients map[*Client]bool

	// product ID -> subscribed clients
	subscribers map[uint]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		subscribers: make(map[uint]map[*Client]bool),
	}
}

func (h *Hub) register(client *Client) {
	h.mtx.Lock()
	h.clients[client] = true
	h.mtx.Unlock()

	client.send(Message{
		Type:         "connection_established",
		ConnectionID: client.ConnectionID,
		Timestamp:    time.Now().UTC(),
	})
}

func (h *Hub) unregister(client *Client) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	for productID := range client.subscriptions {
		if subs, ok := h.subscribers[productID]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscribers, productID)
			}
		}
	}
	close(client.sendCh)
}

func (h *Hub) subscribe(client *Client, productID uint) {
	h.mtx.Lock()
	if h.subscribers[productID] == nil {
		h.subscribers[productID] = make(map[*Client]bool)
	}
	h.subscribers[productID][client] = true
	client.subscriptions[productID] = true
	h.mtx.Unlock()

	client.send(Message{
		Type:      "subscription_confirmed",
		ProductID: productID,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Hub) unsubscribe(client *Client, productID uint) {
	h.mtx.Lock()
	if subs, ok := h.subscribers[productID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscribers, productID)
		}
	}
	delete(client.subscriptions, productID)
	h.mtx.Unlock()

	client.send(Message{
		Type:      "subscription_removed",
		ProductID: productID,
		Timestamp: time.Now().UTC(),
	})
}

// BroadcastPriceChange delivers an event to every subscriber of the product.
// Slow clients are skipped rather than blocking the caller.
func (h *Hub) BroadcastPriceChange(event *models.PriceChangeEvent) {
	msg := Message{
		Type:      "price_change",
		ProductID: event.ProductID,
		Event:     event,
		Timestamp: time.Now().UTC(),
	}

	h.mtx.RLock()
	subs := make([]*Client, 0, len(h.subscribers[event.ProductID]))
	for client := range h.subscribers[event.ProductID] {
		subs = append(subs, client)
	}
	h.mtx.RUnlock()

	for _, client := range subs {
		if !client.send(msg) {
			logrus.WithFields(logrus.Fields{
				"connection_id": client.ConnectionID,
				"product_id":    event.ProductID,
			}).Warn("Dropping price event for slow WebSocket client")
		}
	}
}

// SubscriberCount reports how many clients watch a product.
func (h *Hub) SubscriberCount(productID uint) int {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return len(h.subscribers[productID])
}

// ClientCount reports the number of open connections.
func (h *Hub) ClientCount() int {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return len(h.clients)
}

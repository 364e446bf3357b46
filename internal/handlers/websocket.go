// internal/handlers/websocket.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pricepulse/pricepulse-backend/internal/ws"
)

type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// GET /ws
func (h *WebSocketHandler) Connect(c *gin.Context) {
	if err := ws.ServeWS(h.hub, c.Writer, c.Request); err != nil {
		// The upgrader already wrote an error response.
		logrus.WithError(err).Warn("WebSocket upgrade failed")
	}
}

// internal/ws/hub.go
package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub fans delivery activity out to dashboard websocket clients. Each
// client is registered under its merchant ID so broadcasts stay scoped
// to the merchant that owns the data.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.merchantID] == nil {
		h.clients[c.merchantID] = make(map[*Client]struct{})
	}
	h.clients[c.merchantID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[c.merchantID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.merchantID)
		}
	}
}

// Broadcast sends a message to every client of a merchant. Slow clients
// are dropped rather than allowed to block the dispatcher.
func (h *Hub) Broadcast(merchantID string, msgType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": msgType,
		"data": payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal ws message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[merchantID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow ws client", zap.String("merchant_id", merchantID))
			go c.Close()
		}
	}
}

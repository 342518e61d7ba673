package websocket

import (
	"sync"

	"github.com/ikkim/shoplive-catalog/pkg/logger"
)

// Hub tracks live connections per product so catalog writes can reach
// every open live session of that product.
type Hub struct {
	mu       sync.RWMutex
	products map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		products: make(map[uint]map[*Client]struct{}),
	}
}

// Register 클라이언트 등록
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	clients, ok := h.products[client.ProductID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.products[client.ProductID] = clients
	}
	clients[client] = struct{}{}
	total := len(clients)
	h.mu.Unlock()

	logger.Info("Live variant client registered", logger.Fields{
		"client_id":     client.ID,
		"product_id":    client.ProductID,
		"product_total": total,
	})
}

// Unregister 클라이언트 등록 해제
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if clients, ok := h.products[client.ProductID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.products, client.ProductID)
		}
	}
	h.mu.Unlock()

	logger.Info("Live variant client unregistered", logger.Fields{
		"client_id":  client.ID,
		"product_id": client.ProductID,
	})
}

// Invalidate asks every live session of productID to rebuild against the
// current catalog.
func (h *Hub) Invalidate(productID uint) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.products[productID]
	for client := range clients {
		client.notifyRefresh()
	}
	if len(clients) > 0 {
		logger.Debug("Live variant sessions notified", logger.Fields{
			"product_id": productID,
			"clients":    len(clients),
		})
	}
}

// Count returns the number of live connections for productID.
func (h *Hub) Count(productID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.products[productID])
}

// CloseAll disconnects every client, e.g. on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.products {
		for client := range clients {
			client.Close()
		}
	}
}

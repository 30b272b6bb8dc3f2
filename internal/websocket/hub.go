package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"ai-docqa-be/internal/dto"
	"ai-docqa-be/internal/pkg/logger"
)

// Hub fans workflow progress events out to the clients watching a run.
// Registered clients map: RunID -> List of Clients (multi-tab).
type Hub struct {
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.RunID] = append(h.clients[client.RunID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"run_id": client.RunID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.RunID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.RunID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.RunID]) == 0 {
					delete(h.clients, client.RunID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"run_id": client.RunID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Emit implements the workflow progress sink. Slow or dead clients are
// dropped rather than allowed to stall the run.
func (h *Hub) Emit(runID string, stage string, details map[string]interface{}) {
	event := dto.ProgressEventDTO{
		RunId:     runID,
		Stage:     stage,
		Details:   details,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(map[string]interface{}{
		"type": "progress",
		"data": event,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	clients, ok := h.clients[runID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"run_id": runID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

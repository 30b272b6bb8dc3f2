package handler

import (
	"ai-docqa-be/internal/pkg/logger"
	internalWS "ai-docqa-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ProgressHandler exposes the workflow progress stream over websocket.
type ProgressHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewProgressHandler(hub *internalWS.Hub, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *ProgressHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/chat/v1")
	g.Get("ws/:run_id", h.ServeWs)
}

// ServeWs upgrades the connection and attaches it to the run's stream.
func (h *ProgressHandler) ServeWs(c *fiber.Ctx) error {
	runID := c.Params("run_id")
	if _, err := uuid.Parse(runID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "run_id must be a UUID"})
	}

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ProgressHandler", "Starting WebSocket session", map[string]interface{}{"run_id": runID})
			internalWS.ServeWs(h.hub, conn, runID)
			h.logger.Info("ProgressHandler", "WebSocket session ended", map[string]interface{}{"run_id": runID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

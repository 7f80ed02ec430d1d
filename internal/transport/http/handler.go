package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/session"
	"github.com/is0383kk/claude-multi-agent-api-server/internal/transport/ws"
)

// Handler handles HTTP requests.
type Handler struct {
	manager       *session.Manager
	hub           *ws.Hub
	log           *slog.Logger
	defaultMaxAge time.Duration
}

// NewHandler creates a new handler. The hub may be nil when streaming
// is disabled.
func NewHandler(manager *session.Manager, hub *ws.Hub, log *slog.Logger, defaultMaxAge time.Duration) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if defaultMaxAge <= 0 {
		defaultMaxAge = 24 * time.Hour
	}
	return &Handler{
		manager:       manager,
		hub:           hub,
		log:           log,
		defaultMaxAge: defaultMaxAge,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Session API
	e.POST("/execute", h.Execute)
	e.GET("/status/:session_id", h.Status)
	e.POST("/cancel/:session_id", h.Cancel)
	e.GET("/sessions", h.ListSessions)
	e.POST("/sessions/cleanup", h.Cleanup)

	// Streaming
	e.GET("/ws/:session_id", h.Watch)

	// Misc
	e.GET("/", h.Root)
	e.GET("/ui", h.UI)
	e.GET("/health", h.Health)
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is CORS-open; the websocket endpoint matches.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Watch upgrades the connection and streams live events for a session.
// GET /ws/:session_id
func (h *Handler) Watch(c echo.Context) error {
	if h.hub == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "streaming is disabled"})
	}

	sessionID := c.Param("session_id")
	if _, err := h.manager.Status(sessionID); err != nil {
		return h.errorResponse(c, err, "failed to get session")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "session_id", sessionID, "error", err)
		return nil
	}

	sub := h.hub.NewConnection(conn, sessionID)
	h.hub.Register(sub)

	go sub.WritePump()
	sub.ReadPump()
	return nil
}

package http

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed web/index.html
var indexHTML []byte

// Root describes the API.
// GET /
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service": "claude-multi-agent-api-server",
		"version": "0.1.0",
		"endpoints": map[string]string{
			"execute": "POST /execute",
			"status":  "GET /status/{session_id}",
			"cancel":  "POST /cancel/{session_id}",
			"list":    "GET /sessions",
			"cleanup": "POST /sessions/cleanup",
			"watch":   "GET /ws/{session_id}",
			"health":  "GET /health",
		},
	})
}

// UI serves a minimal browser page for manual testing.
// GET /ui
func (h *Handler) UI(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

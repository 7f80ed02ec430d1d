package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// Execute starts a new agent session and returns immediately.
// POST /execute
func (h *Handler) Execute(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ExecuteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.ResumeSessionID != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "resume_session_id is not supported; start a new session"})
	}

	sess, err := h.manager.Start(ctx, req.Prompt, req.Options())
	if err != nil {
		return h.errorResponse(c, err, "failed to start session")
	}

	return c.JSON(http.StatusOK, domain.ExecuteResponse{
		SessionID: sess.ID,
		Status:    sess.Status,
		Message:   "Session started. Use /status/" + sess.ID + " to check progress.",
	})
}

// Status returns the full snapshot of a session.
// GET /status/:session_id
func (h *Handler) Status(c echo.Context) error {
	sess, err := h.manager.Status(c.Param("session_id"))
	if err != nil {
		return h.errorResponse(c, err, "failed to get session")
	}
	return c.JSON(http.StatusOK, domain.NewStatusResponse(sess))
}

// Cancel requests cooperative cancellation of a running session.
// POST /cancel/:session_id
func (h *Handler) Cancel(c echo.Context) error {
	sess, err := h.manager.Cancel(c.Param("session_id"))
	if err != nil {
		return h.errorResponse(c, err, "failed to cancel session")
	}

	msg := "Cancellation requested."
	if sess.Status.Terminal() {
		msg = "Session already finished with status " + string(sess.Status) + "."
	}
	return c.JSON(http.StatusOK, domain.CancelResponse{
		SessionID: sess.ID,
		Status:    sess.Status,
		Message:   msg,
	})
}

// ListSessions lists summaries of all known sessions.
// GET /sessions
func (h *Handler) ListSessions(c echo.Context) error {
	summaries := h.manager.Sessions()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": summaries,
		"count":    len(summaries),
	})
}

// CleanupRequest is the optional body of POST /sessions/cleanup.
type CleanupRequest struct {
	MaxAgeHours float64 `json:"max_age_hours"`
}

// Cleanup removes old finished sessions. The age threshold may be set
// via the max_age_hours query parameter or the request body.
// POST /sessions/cleanup
func (h *Handler) Cleanup(c echo.Context) error {
	maxAge := h.defaultMaxAge

	if q := c.QueryParam("max_age_hours"); q != "" {
		hours, err := strconv.ParseFloat(q, 64)
		if err != nil || hours < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid max_age_hours"})
		}
		maxAge = time.Duration(hours * float64(time.Hour))
	} else {
		var req CleanupRequest
		if err := c.Bind(&req); err == nil && req.MaxAgeHours > 0 {
			maxAge = time.Duration(req.MaxAgeHours * float64(time.Hour))
		}
	}

	removed := h.manager.Cleanup(maxAge)
	return c.JSON(http.StatusOK, domain.CleanupResponse{
		Removed: removed,
		Message: "Cleanup complete.",
	})
}

func (h *Handler) errorResponse(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.log.Error(fallback, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fallback})
	}
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// Watch subscribes to the live event stream of a session and invokes fn
// for each event. It returns nil once a terminal status event arrives,
// or an error if the connection drops first.
func (c *Client) Watch(ctx context.Context, sessionID string, fn func(domain.Event)) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws/" + url.PathEscape(sessionID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read event: %w", err)
		}

		var ev domain.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		fn(ev)

		if ev.Type == domain.EventTypeStatus && ev.Status.Terminal() {
			return nil
		}
	}
}

package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is the common envelope for worker-emitted events. Payload is
// pre-serialized JSON so the store never reflects over worker types.
type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// TextPayload is the payload of assistant and system text messages.
type TextPayload struct {
	Text string `json:"text"`
}

// ToolUsePayload is the payload of a tool_use message.
type ToolUsePayload struct {
	ToolName string          `json:"tool_name"`
	Input    json.RawMessage `json:"input,omitempty"`
}

// NewMessage builds an envelope around the given payload. A payload that
// cannot be serialized is recorded as an error note rather than dropped,
// so the message sequence stays complete.
func NewMessage(t MessageType, payload any) Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw, _ = json.Marshal(map[string]string{
			"serialization_error": fmt.Sprintf("%v", err),
		})
	}
	return Message{Type: t, Payload: raw, Timestamp: time.Now()}
}

// NewTextMessage is shorthand for a text-bearing envelope.
func NewTextMessage(t MessageType, text string) Message {
	return NewMessage(t, TextPayload{Text: text})
}

// Event is a live update broadcast to websocket subscribers of a session.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Ts        int64     `json:"ts"` // Unix milliseconds
	Status    Status    `json:"status,omitempty"`
	Message   *Message  `json:"message,omitempty"`
}

// NewMessageEvent wraps an appended message for broadcast.
func NewMessageEvent(sessionID string, msg Message) Event {
	return Event{
		Type:      EventTypeMessage,
		SessionID: sessionID,
		Ts:        time.Now().UnixMilli(),
		Message:   &msg,
	}
}

// NewStatusEvent announces a status transition.
func NewStatusEvent(sessionID string, status Status) Event {
	return Event{
		Type:      EventTypeStatus,
		SessionID: sessionID,
		Ts:        time.Now().UnixMilli(),
		Status:    status,
	}
}

// Package domain defines the core domain models for the agent API server.
package domain

// Status represents the lifecycle state of a session.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// PermissionMode controls how the agent handles tool permission prompts.
type PermissionMode string

const (
	PermissionModeDefault     PermissionMode = "default"
	PermissionModeAcceptEdits PermissionMode = "acceptEdits"
	PermissionModePlan        PermissionMode = "plan"
	PermissionModeBypass      PermissionMode = "bypassPermissions"
)

// Valid reports whether the mode is one of the known values.
func (m PermissionMode) Valid() bool {
	switch m {
	case PermissionModeDefault, PermissionModeAcceptEdits, PermissionModePlan, PermissionModeBypass:
		return true
	}
	return false
}

// MessageType identifies the kind of worker-emitted message. The set is
// closed so the store and transport can serialize without reflection.
type MessageType string

const (
	MessageTypeSystem     MessageType = "system"
	MessageTypeUser       MessageType = "user"
	MessageTypeAssistant  MessageType = "assistant"
	MessageTypeToolUse    MessageType = "tool_use"
	MessageTypeToolResult MessageType = "tool_result"
	MessageTypeResult     MessageType = "result"
)

// EventType identifies a live update pushed to websocket subscribers.
type EventType string

const (
	EventTypeMessage EventType = "message"
	EventTypeStatus  EventType = "status"
)

package domain

import (
	"encoding/json"
	"time"
)

// Options holds the immutable configuration supplied when a session is
// created. The core passes it to the worker unchanged.
type Options struct {
	AllowedTools    []string          `json:"allowed_tools,omitempty" yaml:"allowed_tools"`
	DisallowedTools []string          `json:"disallowed_tools,omitempty" yaml:"disallowed_tools"`
	SystemPrompt    string            `json:"system_prompt,omitempty" yaml:"system_prompt"`
	PermissionMode  PermissionMode    `json:"permission_mode,omitempty" yaml:"permission_mode"`
	Model           string            `json:"model,omitempty" yaml:"model"`
	CWD             string            `json:"cwd,omitempty" yaml:"cwd"`
	MaxTurns        int               `json:"max_turns,omitempty" yaml:"max_turns"`
	Env             map[string]string `json:"env,omitempty" yaml:"env"`
}

// Result holds the final output of a completed session plus any metrics
// the worker reported.
type Result struct {
	Output       string          `json:"output"`
	NumTurns     int             `json:"num_turns,omitempty"`
	DurationMS   int64           `json:"duration_ms,omitempty"`
	TotalCostUSD float64         `json:"total_cost_usd,omitempty"`
	Usage        json.RawMessage `json:"usage,omitempty"`
}

// Session is the record tracking one agent invocation from request to
// terminal outcome. All fields are owned by the session store; callers
// only ever see snapshots produced by Clone.
type Session struct {
	ID        string     `json:"session_id"`
	Status    Status     `json:"status"`
	Prompt    string     `json:"prompt"`
	Options   Options    `json:"options"`
	Messages  []Message  `json:"messages"`
	Result    *Result    `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Clone returns a deep copy safe to hand to a caller outside the store's
// lock. Message payloads are append-only raw JSON and are never mutated
// after insertion, so sharing their backing arrays is safe.
func (s *Session) Clone() Session {
	out := *s
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	if s.StartTime != nil {
		t := *s.StartTime
		out.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		out.EndTime = &t
	}
	return out
}

// DurationMS returns the elapsed execution time in milliseconds, using
// the current time while the session is still running. Zero if the
// session never started.
func (s *Session) DurationMS() int64 {
	if s.StartTime == nil {
		return 0
	}
	end := time.Now()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return end.Sub(*s.StartTime).Milliseconds()
}

// Summary condenses the record into the shape served by the list endpoint.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Status:       s.Status,
		Prompt:       s.Prompt,
		CreatedAt:    s.CreatedAt,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Error:        s.Error,
		HasResult:    s.Result != nil,
		MessageCount: len(s.Messages),
	}
}

// SessionSummary is the abbreviated session view returned by GET /sessions.
type SessionSummary struct {
	ID           string     `json:"session_id"`
	Status       Status     `json:"status"`
	Prompt       string     `json:"prompt"`
	CreatedAt    time.Time  `json:"created_at"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Error        string     `json:"error,omitempty"`
	HasResult    bool       `json:"has_result"`
	MessageCount int        `json:"message_count"`
}

package domain

// ExecuteRequest is the body of POST /execute.
type ExecuteRequest struct {
	Prompt          string            `json:"prompt"`
	AllowedTools    []string          `json:"allowed_tools,omitempty"`
	DisallowedTools []string          `json:"disallowed_tools,omitempty"`
	SystemPrompt    string            `json:"system_prompt,omitempty"`
	PermissionMode  PermissionMode    `json:"permission_mode,omitempty"`
	Model           string            `json:"model,omitempty"`
	CWD             string            `json:"cwd,omitempty"`
	MaxTurns        int               `json:"max_turns,omitempty"`
	Env             map[string]string `json:"env,omitempty"`

	// ResumeSessionID is accepted for wire compatibility with older
	// clients but always rejected: a session record runs exactly once.
	ResumeSessionID string `json:"resume_session_id,omitempty"`
}

// Options extracts the immutable session configuration from the request.
func (r *ExecuteRequest) Options() Options {
	return Options{
		AllowedTools:    r.AllowedTools,
		DisallowedTools: r.DisallowedTools,
		SystemPrompt:    r.SystemPrompt,
		PermissionMode:  r.PermissionMode,
		Model:           r.Model,
		CWD:             r.CWD,
		MaxTurns:        r.MaxTurns,
		Env:             r.Env,
	}
}

// ExecuteResponse is the body returned by POST /execute.
type ExecuteResponse struct {
	SessionID string `json:"session_id"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
}

// StatusResponse is the body returned by GET /status/:session_id.
type StatusResponse struct {
	SessionID    string    `json:"session_id"`
	Status       Status    `json:"status"`
	Messages     []Message `json:"messages"`
	Result       *Result   `json:"result,omitempty"`
	Error        string    `json:"error,omitempty"`
	DurationMS   int64     `json:"duration_ms,omitempty"`
	TotalCostUSD float64   `json:"total_cost_usd,omitempty"`
}

// NewStatusResponse flattens a session snapshot into the status body.
func NewStatusResponse(s Session) StatusResponse {
	resp := StatusResponse{
		SessionID:  s.ID,
		Status:     s.Status,
		Messages:   s.Messages,
		Result:     s.Result,
		Error:      s.Error,
		DurationMS: s.DurationMS(),
	}
	if resp.Messages == nil {
		resp.Messages = []Message{}
	}
	if s.Result != nil {
		resp.TotalCostUSD = s.Result.TotalCostUSD
	}
	return resp
}

// CancelResponse is the body returned by POST /cancel/:session_id.
type CancelResponse struct {
	SessionID string `json:"session_id"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
}

// CleanupResponse is the body returned by POST /sessions/cleanup.
type CleanupResponse struct {
	Removed int    `json:"removed"`
	Message string `json:"message"`
}

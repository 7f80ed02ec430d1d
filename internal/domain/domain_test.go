package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusError.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestPermissionModeValid(t *testing.T) {
	for _, m := range []PermissionMode{PermissionModeDefault, PermissionModeAcceptEdits, PermissionModePlan, PermissionModeBypass} {
		assert.True(t, m.Valid(), string(m))
	}
	assert.False(t, PermissionMode("yolo").Valid())
	assert.False(t, PermissionMode("").Valid())
}

func TestSessionCloneIsDeep(t *testing.T) {
	now := time.Now()
	sess := Session{
		ID:        "s1",
		Status:    StatusRunning,
		Messages:  []Message{NewTextMessage(MessageTypeAssistant, "hi")},
		Result:    &Result{Output: "out"},
		StartTime: &now,
		Options:   Options{AllowedTools: []string{"Read"}},
	}

	clone := sess.Clone()
	clone.Messages[0] = NewTextMessage(MessageTypeAssistant, "tampered")
	clone.Result.Output = "tampered"
	*clone.StartTime = now.Add(time.Hour)

	var payload TextPayload
	require.NoError(t, json.Unmarshal(sess.Messages[0].Payload, &payload))
	assert.Equal(t, "hi", payload.Text)
	assert.Equal(t, "out", sess.Result.Output)
	assert.True(t, sess.StartTime.Equal(now))
}

func TestNewStatusResponse(t *testing.T) {
	resp := NewStatusResponse(Session{ID: "s1", Status: StatusPending})
	assert.NotNil(t, resp.Messages)
	assert.Empty(t, resp.Messages)
	assert.Zero(t, resp.TotalCostUSD)

	start := time.Now().Add(-time.Second)
	end := start.Add(500 * time.Millisecond)
	resp = NewStatusResponse(Session{
		ID:        "s2",
		Status:    StatusCompleted,
		StartTime: &start,
		EndTime:   &end,
		Result:    &Result{Output: "done", TotalCostUSD: 0.25},
	})
	assert.Equal(t, int64(500), resp.DurationMS)
	assert.Equal(t, 0.25, resp.TotalCostUSD)
}

func TestNewMessageSurvivesUnmarshalablePayload(t *testing.T) {
	msg := NewMessage(MessageTypeSystem, func() {})
	require.NotEmpty(t, msg.Payload)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Contains(t, payload, "serialization_error")
}

func TestExecuteRequestOptions(t *testing.T) {
	req := ExecuteRequest{
		Prompt:         "hi",
		AllowedTools:   []string{"Read"},
		PermissionMode: PermissionModePlan,
		MaxTurns:       3,
	}
	opts := req.Options()
	assert.Equal(t, []string{"Read"}, opts.AllowedTools)
	assert.Equal(t, PermissionModePlan, opts.PermissionMode)
	assert.Equal(t, 3, opts.MaxTurns)
}

func TestEventConstructors(t *testing.T) {
	msg := NewTextMessage(MessageTypeAssistant, "hi")
	ev := NewMessageEvent("s1", msg)
	assert.Equal(t, EventTypeMessage, ev.Type)
	assert.Equal(t, "s1", ev.SessionID)
	require.NotNil(t, ev.Message)

	ev = NewStatusEvent("s1", StatusCompleted)
	assert.Equal(t, EventTypeStatus, ev.Type)
	assert.Equal(t, StatusCompleted, ev.Status)
	assert.Nil(t, ev.Message)
}

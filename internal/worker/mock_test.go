package worker

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/config"
	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

func TestMockWorkerEmitsChunkedResponse(t *testing.T) {
	w := &MockWorker{ChunkSize: 10}

	var emitted []domain.Message
	res, err := w.Invoke(context.Background(), Invocation{SessionID: "s1", Prompt: "hello"}, func(msg domain.Message) {
		emitted = append(emitted, msg)
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Contains(t, res.Output, "hello")
	assert.Equal(t, 1, res.NumTurns)
	require.NotEmpty(t, emitted)

	var rebuilt strings.Builder
	for _, msg := range emitted {
		assert.Equal(t, domain.MessageTypeAssistant, msg.Type)
		var payload domain.TextPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		rebuilt.WriteString(payload.Text)
	}
	assert.Equal(t, res.Output, rebuilt.String())
}

func TestMockWorkerHonorsCancellation(t *testing.T) {
	w := NewMockWorker()

	ctx, cancel := context.WithCancel(context.Background())
	var count int
	_, err := w.Invoke(ctx, Invocation{Prompt: "hello"}, func(msg domain.Message) {
		count++
		cancel()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, count)
}

func TestFactorySelectsProvider(t *testing.T) {
	cases := []struct {
		provider string
		want     any
	}{
		{"mock", &MockWorker{}},
		{"anthropic", &AnthropicWorker{}},
		{"openai", &OpenAIWorker{}},
	}
	for _, tc := range cases {
		w, err := New(&config.Config{Provider: tc.provider})
		require.NoError(t, err, tc.provider)
		assert.IsType(t, tc.want, w)
	}

	_, err := New(&config.Config{Provider: "nope"})
	assert.Error(t, err)
}

package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// AnthropicWorker executes sessions against the Claude Messages API,
// streaming text deltas as assistant messages.
type AnthropicWorker struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicWorker creates a worker using the official client. An
// empty apiKey falls back to the SDK's environment lookup.
func NewAnthropicWorker(apiKey, model string, maxTokens int64) *AnthropicWorker {
	var clientOpts []option.RequestOption
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(clientOpts...)

	w := &AnthropicWorker{
		client:    &client,
		model:     anthropic.Model("claude-3-5-sonnet-20241022"),
		maxTokens: 4096,
	}
	if model != "" {
		w.model = anthropic.Model(model)
	}
	if maxTokens > 0 {
		w.maxTokens = maxTokens
	}
	return w
}

// Invoke streams one Claude turn, emitting each text delta in arrival order.
func (w *AnthropicWorker) Invoke(ctx context.Context, inv Invocation, emit Emit) (*domain.Result, error) {
	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:     w.model,
		MaxTokens: w.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(inv.Prompt)),
		},
	}
	if inv.Options.Model != "" {
		params.Model = anthropic.Model(inv.Options.Model)
	}
	if sp := inv.Options.SystemPrompt; sp != "" {
		params.System = []anthropic.TextBlockParam{{Text: sp}}
	}

	stream := w.client.Messages.NewStreaming(ctx, params)

	var sb strings.Builder
	acc := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := acc.Accumulate(event); err != nil {
			return nil, fmt.Errorf("anthropic accumulate: %w", err)
		}

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text != "" {
					sb.WriteString(delta.Text)
					emit(domain.NewTextMessage(domain.MessageTypeAssistant, delta.Text))
				}
			}
		case anthropic.ContentBlockStartEvent:
			if tool, ok := ev.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
				var input json.RawMessage
				if tool.Input != nil {
					input, _ = json.Marshal(tool.Input)
				}
				emit(domain.NewMessage(domain.MessageTypeToolUse, domain.ToolUsePayload{
					ToolName: tool.Name,
					Input:    input,
				}))
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic stream: %w", err)
	}

	usage, _ := json.Marshal(acc.Usage)
	return &domain.Result{
		Output:     sb.String(),
		NumTurns:   1,
		DurationMS: time.Since(start).Milliseconds(),
		Usage:      usage,
	}, nil
}

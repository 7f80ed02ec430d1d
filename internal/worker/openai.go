package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// OpenAIWorker executes sessions against the Chat Completions API.
type OpenAIWorker struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewOpenAIWorker creates a worker using the official client. An empty
// apiKey falls back to the SDK's environment lookup.
func NewOpenAIWorker(apiKey, model string) *OpenAIWorker {
	var clientOpts []option.RequestOption
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}
	client := openai.NewClient(clientOpts...)

	w := &OpenAIWorker{
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
	if model != "" {
		w.model = openai.ChatModel(model)
	}
	return w
}

// Invoke streams one chat completion, emitting each content delta in
// arrival order.
func (w *OpenAIWorker) Invoke(ctx context.Context, inv Invocation, emit Emit) (*domain.Result, error) {
	start := time.Now()

	var messages []openai.ChatCompletionMessageParamUnion
	if sp := inv.Options.SystemPrompt; sp != "" {
		messages = append(messages, openai.SystemMessage(sp))
	}
	messages = append(messages, openai.UserMessage(inv.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    w.model,
		Messages: messages,
	}
	if inv.Options.Model != "" {
		params.Model = openai.ChatModel(inv.Options.Model)
	}

	stream := w.client.Chat.Completions.NewStreaming(ctx, params)

	var sb strings.Builder
	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				sb.WriteString(choice.Delta.Content)
				emit(domain.NewTextMessage(domain.MessageTypeAssistant, choice.Delta.Content))
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai stream: %w", err)
	}

	usage, _ := json.Marshal(acc.Usage)
	return &domain.Result{
		Output:     sb.String(),
		NumTurns:   1,
		DurationMS: time.Since(start).Milliseconds(),
		Usage:      usage,
	}, nil
}

package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// MockWorker simulates an agent without calling any API. Useful for the
// browser test page and for running the server without credentials.
type MockWorker struct {
	// ChunkSize controls how the canned response is split into
	// assistant messages. Defaults to 24 bytes.
	ChunkSize int
	// Delay is the pause between emitted chunks. Defaults to 50ms.
	Delay time.Duration
}

// NewMockWorker returns a mock worker with default pacing.
func NewMockWorker() *MockWorker {
	return &MockWorker{ChunkSize: 24, Delay: 50 * time.Millisecond}
}

// Invoke emits a chunked canned response, honoring ctx between chunks.
func (w *MockWorker) Invoke(ctx context.Context, inv Invocation, emit Emit) (*domain.Result, error) {
	start := time.Now()
	response := w.respond(inv)

	chunkSize := w.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 24
	}

	for i := 0; i < len(response); i += chunkSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		end := i + chunkSize
		if end > len(response) {
			end = len(response)
		}
		emit(domain.NewTextMessage(domain.MessageTypeAssistant, response[i:end]))

		if w.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(w.Delay):
			}
		}
	}

	return &domain.Result{
		Output:     response,
		NumTurns:   1,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

func (w *MockWorker) respond(inv Invocation) string {
	prompt := inv.Prompt
	if len(prompt) > 100 {
		prompt = prompt[:100] + "..."
	}
	return fmt.Sprintf("[MOCK] Received your prompt: %q. This is a mock agent response.", prompt)
}

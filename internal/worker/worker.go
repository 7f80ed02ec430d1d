// Package worker defines the contract for the external agent executor
// and provides the built-in implementations (Anthropic, OpenAI, mock).
package worker

import (
	"context"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// Invocation carries the immutable inputs of one session execution.
type Invocation struct {
	SessionID string
	Prompt    string
	Options   domain.Options
}

// Emit receives each output message as the worker produces it. The
// execution task relays emitted messages into the session record in
// arrival order.
type Emit func(msg domain.Message)

// Worker executes one agent invocation: it produces a lazy sequence of
// messages through emit, then either a final result or an error.
// Cancellation is best-effort via ctx; a worker that cannot be
// interrupted is still abandoned at the relaying boundary.
type Worker interface {
	Invoke(ctx context.Context, inv Invocation, emit Emit) (*domain.Result, error)
}

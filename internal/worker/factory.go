package worker

import (
	"fmt"
	"strings"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/config"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// New creates the worker selected by cfg.Provider.
func New(cfg *config.Config) (Worker, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic:
		return NewAnthropicWorker(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens), nil
	case ProviderOpenAI:
		return NewOpenAIWorker(cfg.OpenAIAPIKey, cfg.Model), nil
	case ProviderMock:
		return NewMockWorker(), nil
	default:
		return nil, fmt.Errorf("unknown worker provider %q", cfg.Provider)
	}
}

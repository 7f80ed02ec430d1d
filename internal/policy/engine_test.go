package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

func newTestEngine(t *testing.T, allowBypass bool) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy, allowBypass)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestDefaultDecisionIsAllow(t *testing.T) {
	engine := newTestEngine(t, false)

	decision, err := engine.Evaluate(context.Background(), domain.Options{
		AllowedTools:   []string{"Read", "Write"},
		PermissionMode: domain.PermissionModeDefault,
	})
	require.NoError(t, err)
	assert.Equal(t, "allow", decision)
}

func TestBypassBlockedByDefault(t *testing.T) {
	engine := newTestEngine(t, false)

	err := engine.Validate(context.Background(), domain.Options{
		PermissionMode: domain.PermissionModeBypass,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBypassAllowedWhenOptedIn(t *testing.T) {
	engine := newTestEngine(t, true)

	err := engine.Validate(context.Background(), domain.Options{
		PermissionMode: domain.PermissionModeBypass,
	})
	assert.NoError(t, err)
}

func TestOverlappingToolsBlocked(t *testing.T) {
	engine := newTestEngine(t, false)

	decision, err := engine.Evaluate(context.Background(), domain.Options{
		AllowedTools:    []string{"Read", "Bash"},
		DisallowedTools: []string{"Bash"},
	})
	require.NoError(t, err)
	assert.Equal(t, "block", decision)
}

func TestNegativeMaxTurnsBlocked(t *testing.T) {
	engine := newTestEngine(t, false)

	err := engine.Validate(context.Background(), domain.Options{MaxTurns: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

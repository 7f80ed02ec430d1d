// Package policy validates session start configurations with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// Engine evaluates the session configuration policy.
type Engine struct {
	query       rego.PreparedEvalQuery
	allowBypass bool
}

// NewEngine prepares the policy for evaluation. The allowBypass flag is
// passed as policy input so operators can permit bypassPermissions
// without editing the rego source.
func NewEngine(ctx context.Context, policyContent string, allowBypass bool) (*Engine, error) {
	r := rego.New(
		rego.Query("data.session_policy.decision"),
		rego.Module("session_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query, allowBypass: allowBypass}, nil
}

// Evaluate returns the policy decision ("allow" or "block") for the
// given configuration.
func (e *Engine) Evaluate(ctx context.Context, opts domain.Options) (string, error) {
	input := map[string]any{
		"permission_mode":  string(opts.PermissionMode),
		"allowed_tools":    opts.AllowedTools,
		"disallowed_tools": opts.DisallowedTools,
		"max_turns":        opts.MaxTurns,
		"allow_bypass":     e.allowBypass,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "allow", nil
	}
	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return "allow", nil
}

// Validate implements session.OptionsValidator: a blocked configuration
// surfaces as InvalidInput.
func (e *Engine) Validate(ctx context.Context, opts domain.Options) error {
	decision, err := e.Evaluate(ctx, opts)
	if err != nil {
		return fmt.Errorf("policy evaluation: %w", err)
	}
	if decision != "allow" {
		return fmt.Errorf("%w: configuration rejected by policy", domain.ErrInvalidInput)
	}
	return nil
}

// DefaultPolicy is the default session configuration policy.
const DefaultPolicy = `
package session_policy

default decision := "allow"

# bypassPermissions is only valid when the operator opted in.
decision := "block" if {
	input.permission_mode == "bypassPermissions"
	not input.allow_bypass
}

# A tool cannot be both allowed and disallowed.
decision := "block" if {
	some tool in input.allowed_tools
	tool in input.disallowed_tools
}

# Negative turn limits are rejected outright.
decision := "block" if {
	input.max_turns < 0
}
`

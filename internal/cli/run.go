package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

func newRunCommand() *cobra.Command {
	var (
		allowedTools    []string
		disallowedTools []string
		systemPrompt    string
		permissionMode  string
		model           string
		cwd             string
		maxTurns        int
		watch           bool
	)

	cmd := &cobra.Command{
		Use:   "run <prompt>",
		Short: "Start a new agent session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.ExecuteRequest{
				Prompt:          strings.Join(args, " "),
				AllowedTools:    allowedTools,
				DisallowedTools: disallowedTools,
				SystemPrompt:    systemPrompt,
				PermissionMode:  domain.PermissionMode(permissionMode),
				Model:           model,
				CWD:             cwd,
				MaxTurns:        maxTurns,
			}

			resp, err := apiClient().Execute(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("session %s %s\n", boldStyle.Render(resp.SessionID), renderStatus(resp.Status))
			if !watch {
				fmt.Println(resp.Message)
				return nil
			}
			return watchSession(cmd, resp.SessionID)
		},
	}

	cmd.Flags().StringSliceVar(&allowedTools, "allow-tool", nil, "tool the agent may use (repeatable)")
	cmd.Flags().StringSliceVar(&disallowedTools, "deny-tool", nil, "tool the agent must not use (repeatable)")
	cmd.Flags().StringVar(&systemPrompt, "system", "", "system prompt")
	cmd.Flags().StringVar(&permissionMode, "permission-mode", "", "permission mode (default, acceptEdits, plan, bypassPermissions)")
	cmd.Flags().StringVar(&model, "model", "", "model override for this session")
	cmd.Flags().StringVar(&cwd, "cwd", "", "working directory for the session")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "maximum agent turns (0 = unlimited)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "stream session output until it finishes")

	return cmd
}

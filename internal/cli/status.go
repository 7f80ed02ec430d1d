package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

func newStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show the current state of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient().Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(resp, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("session:  %s\n", boldStyle.Render(resp.SessionID))
			fmt.Printf("status:   %s\n", renderStatus(resp.Status))
			fmt.Printf("messages: %d\n", len(resp.Messages))
			if resp.DurationMS > 0 {
				fmt.Printf("duration: %dms\n", resp.DurationMS)
			}
			if resp.Error != "" {
				fmt.Printf("error:    %s\n", errorStyle.Render(resp.Error))
			}
			if resp.Result != nil && resp.Result.Output != "" {
				fmt.Println()
				fmt.Println(resp.Result.Output)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	return cmd
}

func newCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <session-id>",
		Short: "Request cancellation of a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient().Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("session %s %s\n", boldStyle.Render(resp.SessionID), renderStatus(resp.Status))
			fmt.Println(resp.Message)
			return nil
		},
	}
}

func newCleanupCommand() *cobra.Command {
	var maxAgeHours float64

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old finished sessions from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient().Cleanup(cmd.Context(), maxAgeHours)
			if err != nil {
				return err
			}
			fmt.Printf("removed %d session(s)\n", resp.Removed)
			return nil
		},
	}

	cmd.Flags().Float64Var(&maxAgeHours, "max-age-hours", 0, "remove finished sessions older than this (0 = server default)")
	return cmd
}

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <session-id>",
		Short: "Stream live output of a session until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchSession(cmd, args[0])
		},
	}
}

func watchSession(cmd *cobra.Command, sessionID string) error {
	return apiClient().Watch(cmd.Context(), sessionID, func(ev domain.Event) {
		if line := renderEvent(ev); line != "" {
			fmt.Println(line)
		}
	})
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all sessions on the server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient().List(cmd.Context())
			if err != nil {
				return err
			}
			if resp.Count == 0 {
				fmt.Println("no sessions")
				return nil
			}

			tbl := newTable("SESSION", "STATUS", "MESSAGES", "AGE", "PROMPT")
			for _, s := range resp.Sessions {
				tbl.AddRow(
					s.ID,
					renderStatus(s.Status),
					s.MessageCount,
					time.Since(s.CreatedAt).Round(time.Second),
					truncate(s.Prompt, 40),
				)
			}
			tbl.Print()
			return nil
		},
	}
}

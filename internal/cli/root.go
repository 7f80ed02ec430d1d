// Package cli implements the agentctl command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/client"
)

var serverURL string

// NewRootCommand builds the agentctl root command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentctl",
		Short: "Control a running agent API server",
		Long: `agentctl starts, inspects, cancels and streams agent sessions on a
running agent API server.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "base URL of the agent API server")

	root.AddCommand(
		newRunCommand(),
		newStatusCommand(),
		newCancelCommand(),
		newListCommand(),
		newCleanupCommand(),
		newWatchCommand(),
	)
	return root
}

func apiClient() *client.Client {
	return client.New(serverURL)
}

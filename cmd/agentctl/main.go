package main

import (
	"os"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

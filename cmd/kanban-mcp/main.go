package main

import (
	"os"

	"github.com/mcpchecker/kanban-mcp/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

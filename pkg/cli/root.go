package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// NewRootCmd creates the root kanban-mcp command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "kanban-mcp",
		Short: "MCP server for a remote Kanban service",
		Long: `kanban-mcp exposes the boards, cards, columns, comments and tags of a
Kanban REST service as Model Context Protocol tools.

Connection settings are read from a config file, then FIZZY_BASE_URL,
FIZZY_TOKEN and FIZZY_ACCOUNT, then flags. Later sources win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.bind(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(NewServeCmd(opts))
	rootCmd.AddCommand(NewOperationsCmd())
	rootCmd.AddCommand(NewCallCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// PrintError writes err to w with a highlighted "Error:" prefix
func PrintError(w io.Writer, err error) {
	color.New(color.FgRed, color.Bold).Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

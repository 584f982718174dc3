package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewCallCmd creates the call command
func NewCallCmd(opts *globalOptions) *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "call <operation> [key=value ...]",
		Short: "Invoke a single operation and print its result",
		Long: `Invoke one operation against the Kanban service without an MCP client.

Arguments are given as key=value pairs, or as a JSON object with --args.
Pairs override keys from --args.

Examples:
  kanban-mcp call list_boards
  kanban-mcp call create_card board_id=abc123 title="Write release notes"
  kanban-mcp call move_card --args '{"card_id":"42","column":"done"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments, err := parseCallArguments(rawArgs, args[1:])
			if err != nil {
				return err
			}

			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			gw, err := opts.gateway(logger, nil)
			if err != nil {
				return err
			}

			result, err := gw.Call(cmd.Context(), args[0], arguments)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal result: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&rawArgs, "args", "", "Operation arguments as a JSON object")

	return cmd
}

// parseCallArguments merges a JSON object with key=value pairs. Pair values
// are always strings.
func parseCallArguments(rawJSON string, pairs []string) (map[string]any, error) {
	arguments := map[string]any{}

	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &arguments); err != nil {
			return nil, fmt.Errorf("--args must be a JSON object: %w", err)
		}
		if arguments == nil {
			arguments = map[string]any{}
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", pair)
		}
		arguments[key] = value
	}

	return arguments, nil
}

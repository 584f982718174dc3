package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mcpchecker/kanban-mcp/pkg/registry"
)

// operationSummary is the JSON form of one registry entry.
type operationSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    []string `json:"required"`
	Optional    []string `json:"optional"`
	InputSchema any      `json:"inputSchema"`
}

// NewOperationsCmd creates the operations command
func NewOperationsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "operations",
		Short: "List the operations exposed as MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptors := registry.Default.Descriptors()
			if asJSON {
				return printOperationsJSON(cmd.OutOrStdout(), descriptors)
			}
			printOperationsTable(cmd.OutOrStdout(), descriptors)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print operations and their input schemas as JSON")

	return cmd
}

func splitFields(schema registry.Schema) (required, optional []string) {
	required = []string{}
	optional = []string{}
	for _, f := range schema {
		if f.Required {
			required = append(required, f.Name)
		} else {
			optional = append(optional, f.Name)
		}
	}
	return required, optional
}

func printOperationsTable(w io.Writer, descriptors []*registry.Descriptor) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Operation", "Required", "Optional", "Description"})
	for _, d := range descriptors {
		required, optional := splitFields(d.Schema)
		tw.AppendRow(table.Row{d.Name, strings.Join(required, ", "), strings.Join(optional, ", "), d.Description})
	}
	tw.Render()
}

func printOperationsJSON(w io.Writer, descriptors []*registry.Descriptor) error {
	summaries := make([]operationSummary, 0, len(descriptors))
	for _, d := range descriptors {
		required, optional := splitFields(d.Schema)
		summaries = append(summaries, operationSummary{
			Name:        d.Name,
			Description: d.Description,
			Required:    required,
			Optional:    optional,
			InputSchema: d.Schema.JSONSchema(),
		})
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal operations: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

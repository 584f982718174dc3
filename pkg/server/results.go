package server

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// JSONResult renders data as indented JSON in a single text block.
func JSONResult(data any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return ErrorResult("failed to marshal result: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(out)}},
	}
}

// ErrorResult reports message as a failed tool call, prefixed with "Error: ".
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + message}},
		IsError: true,
	}
}

// Package server exposes the registry's operations as MCP tools. It decodes
// tool calls, hands them to the gateway, and renders every outcome, including
// failures, as a tool result.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpchecker/kanban-mcp/pkg/gateway"
	"github.com/mcpchecker/kanban-mcp/pkg/metrics"
	"github.com/mcpchecker/kanban-mcp/pkg/registry"
)

const Name = "kanban-mcp"

const methodCallTool = "tools/call"

// Caller runs a named operation with a raw argument bag.
type Caller interface {
	Call(ctx context.Context, name string, raw any) (any, error)
}

type Option func(*Server)

type Server struct {
	mcp     *mcp.Server
	caller  Caller
	logger  *slog.Logger
	metrics *metrics.Metrics
	version string
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New registers one tool per descriptor in reg, each dispatching to caller.
func New(reg *registry.Registry, caller Caller, opts ...Option) *Server {
	s := &Server{
		caller:  caller,
		logger:  slog.New(slog.DiscardHandler),
		version: "0.0.0",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    Name,
		Version: s.version,
	}, nil)

	for _, d := range reg.Descriptors() {
		s.mcp.AddTool(&mcp.Tool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.Schema.JSONSchema(),
		}, s.handle)
	}
	s.mcp.AddReceivingMiddleware(s.routeUnknownTools(reg))

	return s
}

// routeUnknownTools sends calls for tools missing from reg to handle, so the
// caller reports them as an error result instead of a protocol error.
func (s *Server) routeUnknownTools(reg *registry.Registry) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodCallTool {
				return next(ctx, method, req)
			}
			call, ok := req.(*mcp.CallToolRequest)
			if !ok || call.Params == nil {
				return next(ctx, method, req)
			}
			if _, known := reg.Lookup(call.Params.Name); known {
				return next(ctx, method, req)
			}
			return s.handle(ctx, call)
		}
	}
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// RunStdio serves a single client over stdin/stdout until ctx is cancelled or
// the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handle(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.Params.Name
	logger := s.logger.With("call_id", uuid.NewString(), "operation", name)
	start := time.Now()

	result, err := s.caller.Call(ctx, name, decodeArguments(req.Params.Arguments))

	if s.metrics != nil {
		s.metrics.ObserveCall(name, err)
	}

	if err != nil {
		logger.WarnContext(ctx, "operation failed",
			"outcome", gateway.Outcome(err),
			"duration", time.Since(start),
			"error", err,
		)
		return ErrorResult(err.Error()), nil
	}

	logger.InfoContext(ctx, "operation completed",
		"outcome", gateway.OutcomeSuccess,
		"duration", time.Since(start),
	)
	return JSONResult(result), nil
}

// decodeArguments turns the raw arguments of a tool call into an untyped bag.
// Omitted arguments decode to an empty object; anything unparseable decodes
// to nil and is rejected by validation.
func decodeArguments(raw json.RawMessage) any {
	if len(raw) == 0 {
		return map[string]any{}
	}

	var args any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil
	}

	return args
}

// Package gateway translates named operations into calls against the remote
// Kanban service and normalizes the responses.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcpchecker/kanban-mcp/pkg/config"
	"github.com/mcpchecker/kanban-mcp/pkg/registry"
)

// Option configures a Gateway.
type Option func(*Gateway)

// Gateway validates operation arguments, issues the bound HTTP request, and
// normalizes the response. It holds no mutable state and is safe for
// concurrent use.
type Gateway struct {
	endpoint *config.Endpoint
	registry *registry.Registry
	http     *http.Client
	logger   *slog.Logger
}

// WithHTTPClient overrides the underlying *http.Client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.http = c
	}
}

// WithRegistry overrides the operation registry. Defaults to registry.Default.
func WithRegistry(r *registry.Registry) Option {
	return func(g *Gateway) {
		g.registry = r
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

func New(endpoint *config.Endpoint, opts ...Option) *Gateway {
	g := &Gateway{
		endpoint: endpoint,
		registry: registry.Default,
		http:     http.DefaultClient,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Registry returns the operations this gateway dispatches.
func (g *Gateway) Registry() *registry.Registry {
	return g.registry
}

// Call runs the named operation with a raw, untyped argument bag. It returns
// either a normalized result or an error, never both. No request is sent when
// the operation is unknown or the arguments are invalid.
func (g *Gateway) Call(ctx context.Context, name string, raw any) (any, error) {
	d, ok := g.registry.Lookup(name)
	if !ok {
		return nil, &UnknownOperationError{Name: name}
	}

	args, err := Validate(raw, d.Schema, d.Name)
	if err != nil {
		return nil, err
	}

	if err := ValidateIdentifiers(args, d.Schema); err != nil {
		return nil, err
	}

	req, err := d.Bind(args)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", d.Name, err)
	}

	result, err := g.do(WithOperation(ctx, d.Name), req)
	if err != nil {
		return nil, err
	}

	if req.Filter != nil {
		if _, isHTML := result.(HTMLResult); !isHTML {
			result = req.Filter(result)
		}
	}

	return result, nil
}

func (g *Gateway) do(ctx context.Context, r *registry.Request) (any, error) {
	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := g.endpoint.AccountURL() + r.Path

	httpReq, err := http.NewRequestWithContext(ctx, r.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	if g.endpoint.HasToken() {
		httpReq.Header.Set("Authorization", "Bearer "+g.endpoint.Token)
	}

	start := time.Now()
	resp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	g.logger.DebugContext(ctx, "remote request",
		"method", r.Method,
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return normalize(resp)
}

type operationKey struct{}

// WithOperation records the operation name on the context of the outbound request.
func WithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey{}, name)
}

// OperationFromContext returns the operation name set by WithOperation.
func OperationFromContext(ctx context.Context) string {
	name, _ := ctx.Value(operationKey{}).(string)
	return name
}

package cli

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcpchecker/kanban-mcp/pkg/metrics"
	"github.com/mcpchecker/kanban-mcp/pkg/server"
)

const (
	transportStdio = "stdio"
	transportHTTP  = "http"
)

// NewServeCmd creates the serve command
func NewServeCmd(opts *globalOptions) *cobra.Command {
	var transport string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server over stdio (the default) or streamable HTTP.

Logs always go to stderr so they never interleave with the stdio protocol stream.

Examples:
  kanban-mcp serve --base-url https://kanban.example.com --account 1
  kanban-mcp serve --transport http --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if transport != transportStdio && transport != transportHTTP {
				return fmt.Errorf("unsupported transport %q (expected %s or %s)", transport, transportStdio, transportHTTP)
			}

			logger, err := opts.logger(os.Stderr)
			if err != nil {
				return err
			}

			m := metrics.New()
			gw, err := opts.gateway(logger, m.InstrumentTransport(http.DefaultTransport))
			if err != nil {
				return err
			}

			srv := server.New(gw.Registry(), gw,
				server.WithLogger(logger),
				server.WithMetrics(m),
				server.WithVersion(Version),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting server", "transport", transport, "version", Version)

			if transport == transportHTTP {
				return srv.ListenAndServe(ctx, addr)
			}
			if err := srv.RunStdio(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("stdio server failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&transport, "transport", getEnvOrDefault("KANBAN_MCP_TRANSPORT", transportStdio), "Transport to serve on (stdio, http)")
	cmd.Flags().StringVar(&addr, "addr", getEnvOrDefault("KANBAN_MCP_ADDR", ":8080"), "Listen address for the http transport")

	return cmd
}

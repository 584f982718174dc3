package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcpchecker/kanban-mcp/pkg/config"
	"github.com/mcpchecker/kanban-mcp/pkg/gateway"
	"github.com/mcpchecker/kanban-mcp/pkg/logging"
)

// globalOptions are the persistent flags shared by every subcommand that
// talks to the remote service.
type globalOptions struct {
	configFile string
	baseURL    string
	token      string
	account    string
	timeout    time.Duration
	logLevel   string
	logFormat  string
}

func (o *globalOptions) bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	// Connection flags; empty values fall through to the environment and config file
	flags.StringVar(&o.configFile, "config", "", "Path to a JSON or YAML endpoint config file")
	flags.StringVar(&o.baseURL, "base-url", "", fmt.Sprintf("Kanban service base URL (env %s, default %s)", config.EnvBaseURL, config.DefaultBaseURL))
	flags.StringVar(&o.token, "token", "", fmt.Sprintf("Bearer token (env %s)", config.EnvToken))
	flags.StringVar(&o.account, "account", "", fmt.Sprintf("Account identifier (env %s, default %s)", config.EnvAccount, config.DefaultAccount))
	flags.DurationVar(&o.timeout, "timeout", 0, "Timeout for each request to the Kanban service (0 means no timeout)")

	// Logging flags with environment variable defaults
	flags.StringVar(&o.logLevel, "log-level", getEnvOrDefault("KANBAN_MCP_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	flags.StringVar(&o.logFormat, "log-format", getEnvOrDefault("KANBAN_MCP_LOG_FORMAT", "text"), "Log format (text, json)")
}

func (o *globalOptions) endpoint() (*config.Endpoint, error) {
	endpoint, err := config.Load(config.Source{
		File:    o.configFile,
		BaseURL: o.baseURL,
		Token:   o.token,
		Account: o.account,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return endpoint, nil
}

func (o *globalOptions) logger(w io.Writer) (*slog.Logger, error) {
	return logging.New(w, o.logFormat, o.logLevel)
}

// gateway builds a gateway for the resolved endpoint. transport may be nil.
func (o *globalOptions) gateway(logger *slog.Logger, transport http.RoundTripper) (*gateway.Gateway, error) {
	endpoint, err := o.endpoint()
	if err != nil {
		return nil, err
	}

	logger.Debug("resolved endpoint",
		"base_url", endpoint.BaseURL,
		"account", endpoint.Account,
		"token", endpoint.Token,
	)

	client := &http.Client{
		Timeout:   o.timeout,
		Transport: transport,
	}

	return gateway.New(endpoint,
		gateway.WithHTTPClient(client),
		gateway.WithLogger(logger),
	), nil
}

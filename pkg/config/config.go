package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"sigs.k8s.io/yaml"
)

const (
	DefaultBaseURL = "http://localhost:3006"
	DefaultAccount = "1"

	EnvBaseURL = "FIZZY_BASE_URL"
	EnvToken   = "FIZZY_TOKEN"
	EnvAccount = "FIZZY_ACCOUNT"
)

// Endpoint describes the remote Kanban service every operation is sent to.
// It is immutable once returned by NewEndpoint or Load.
type Endpoint struct {
	// BaseURL is the service root, without a trailing slash
	BaseURL string `json:"baseUrl,omitempty"`

	// Token is the bearer credential. When empty no Authorization header is sent.
	Token string `json:"token,omitempty"`

	// Account scopes every request path: {BaseURL}/{Account}/...
	Account string `json:"account,omitempty"`
}

// NewEndpoint validates and normalizes an endpoint configuration.
func NewEndpoint(baseURL, token, account string) (*Endpoint, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}

	account = strings.Trim(strings.TrimSpace(account), "/")
	if account == "" {
		return nil, fmt.Errorf("account is required")
	}

	return &Endpoint{
		BaseURL: baseURL,
		Token:   strings.TrimSpace(token),
		Account: account,
	}, nil
}

// AccountURL returns the account-scoped root that operation paths are appended to.
func (e *Endpoint) AccountURL() string {
	return e.BaseURL + "/" + e.Account
}

// HasToken reports whether a bearer credential is configured.
func (e *Endpoint) HasToken() bool {
	return e.Token != ""
}

// Source holds the values collected from the command line. Empty fields are unset.
type Source struct {
	File    string
	BaseURL string
	Token   string
	Account string
}

// Load resolves the endpoint configuration. Later sources override earlier ones:
// built-in defaults, the config file, the environment, then explicit flags.
func Load(src Source) (*Endpoint, error) {
	resolved := &Endpoint{
		BaseURL: DefaultBaseURL,
		Account: DefaultAccount,
	}

	if src.File != "" {
		fromFile, err := ParseConfigFile(src.File)
		if err != nil {
			return nil, err
		}
		resolved.overlay(fromFile)
	}

	resolved.overlay(&Endpoint{
		BaseURL: os.Getenv(EnvBaseURL),
		Token:   os.Getenv(EnvToken),
		Account: os.Getenv(EnvAccount),
	})

	resolved.overlay(&Endpoint{
		BaseURL: src.BaseURL,
		Token:   src.Token,
		Account: src.Account,
	})

	return NewEndpoint(resolved.BaseURL, resolved.Token, resolved.Account)
}

func (e *Endpoint) overlay(other *Endpoint) {
	if other.BaseURL != "" {
		e.BaseURL = other.BaseURL
	}
	if other.Token != "" {
		e.Token = other.Token
	}
	if other.Account != "" {
		e.Account = other.Account
	}
}

// ParseConfigFile reads an endpoint config file from the given path.
// The file can be in JSON or YAML format.
func ParseConfigFile(path string) (*Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses endpoint config data. String values may reference
// environment variables as ${VAR} or ${VAR:-default}.
func ParseConfig(data []byte) (*Endpoint, error) {
	var cfg Endpoint

	// sigs.k8s.io/yaml can handle both JSON and YAML
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	fields := map[string]*string{
		"baseUrl": &cfg.BaseURL,
		"token":   &cfg.Token,
		"account": &cfg.Account,
	}
	for name, value := range fields {
		expanded, err := ExpandEnv(*value)
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", name, err)
		}
		*value = expanded
	}

	return &cfg, nil
}

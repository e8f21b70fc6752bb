// ABOUTME: Configuration loading and parsing for apollo-gateway
// ABOUTME: Supports YAML files with environment variable expansion, .env loading, and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv and DefaultPath.
const (
	EnvAPIKey     = "APOLLO_IO_API_KEY"
	EnvBaseURL    = "APOLLO_BASE_URL"
	EnvConfigPath = "APOLLO_GATEWAY_CONFIG"
)

// Defaults applied when a field is left empty.
const (
	DefaultBaseURL         = "https://api.apollo.io/api/v1"
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// minJWTSecretLength matches auth.MinSecretLength.
const minJWTSecretLength = 32

// Config represents the complete apollo-gateway configuration
type Config struct {
	Apollo   ApolloConfig   `yaml:"apollo"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	MCP      MCPConfig      `yaml:"mcp"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ApolloConfig holds the upstream API credentials
type ApolloConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	ShutdownTimeoutRaw string `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the failure log database configuration.
// An empty Path keeps failures in memory only.
type DatabaseConfig struct {
	Path             string        `yaml:"path"`
	FailureRetention time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	FailureRetentionRaw string `yaml:"failure_retention"`
}

// MCPConfig holds MCP endpoint access configuration
type MCPConfig struct {
	RequireAuth         bool             `yaml:"require_auth"`
	DefaultCapabilities []string         `yaml:"default_capabilities"`
	Tokens              []MCPTokenConfig `yaml:"tokens"`
}

// MCPTokenConfig is one static access token
type MCPTokenConfig struct {
	Token        string   `yaml:"token"`
	Principal    string   `yaml:"principal"`
	Capabilities []string `yaml:"capabilities"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from the environment alone, for runs without a
// config file.
func FromEnv() (*Config, error) {
	cfg := Config{
		Apollo: ApolloConfig{
			APIKey:  os.Getenv(EnvAPIKey),
			BaseURL: os.Getenv(EnvBaseURL),
		},
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating environment config: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns the config file location: $APOLLO_GATEWAY_CONFIG, else
// $XDG_CONFIG_HOME/apollo-gateway/gateway.yaml (falling back to ~/.config).
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "apollo-gateway", "gateway.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "apollo-gateway", "gateway.yaml")
}

// Resolve loads the config file at path if it exists, otherwise falls back
// to FromEnv. The returned string names the source used.
func Resolve(path string) (*Config, string, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := Load(path)
		return cfg, path, err
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, path, fmt.Errorf("checking config file: %w", err)
	}

	cfg, err := FromEnv()
	return cfg, "environment", err
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills empty fields with their defaults.
func (c *Config) applyDefaults() {
	c.Apollo.APIKey = strings.TrimSpace(c.Apollo.APIKey)
	if c.Apollo.BaseURL == "" {
		c.Apollo.BaseURL = DefaultBaseURL
	}
	c.Database.Path = expandHome(c.Database.Path)
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Apollo.APIKey == "" {
		return fmt.Errorf("apollo.api_key is required (or set %s)", EnvAPIKey)
	}

	if u, err := url.Parse(c.Apollo.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("apollo.base_url %q must be an http(s) URL", c.Apollo.BaseURL)
	}

	if _, _, err := net.SplitHostPort(c.Server.HTTPAddr); err != nil {
		return fmt.Errorf("server.http_addr %q: %w", c.Server.HTTPAddr, err)
	}

	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if c.Database.FailureRetention < 0 {
		return fmt.Errorf("database.failure_retention must not be negative")
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", minJWTSecretLength)
	}

	seen := make(map[string]bool, len(c.MCP.Tokens))
	for i, tok := range c.MCP.Tokens {
		if strings.TrimSpace(tok.Token) == "" {
			return fmt.Errorf("mcp.tokens[%d].token is required", i)
		}
		if strings.Contains(tok.Token, "/") {
			return fmt.Errorf("mcp.tokens[%d].token must not contain '/'", i)
		}
		if seen[tok.Token] {
			return fmt.Errorf("mcp.tokens[%d].token is a duplicate", i)
		}
		seen[tok.Token] = true
	}

	if c.MCP.RequireAuth && len(c.MCP.Tokens) == 0 && c.Auth.JWTSecret == "" {
		return fmt.Errorf("mcp.require_auth needs mcp.tokens or auth.jwt_secret")
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("logging.level %q must be one of %v", c.Logging.Level, validLogLevels)
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("logging.format %q must be one of %v", c.Logging.Format, validLogFormats)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Server.ShutdownTimeoutRaw != "" {
		cfg.Server.ShutdownTimeout, err = time.ParseDuration(cfg.Server.ShutdownTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing shutdown_timeout %q: %w", cfg.Server.ShutdownTimeoutRaw, err)
		}
	}

	if cfg.Database.FailureRetentionRaw != "" {
		cfg.Database.FailureRetention, err = time.ParseDuration(cfg.Database.FailureRetentionRaw)
		if err != nil {
			return fmt.Errorf("parsing failure_retention %q: %w", cfg.Database.FailureRetentionRaw, err)
		}
	}

	return nil
}

// Starter is the config written by `apollo-gateway init`.
const Starter = `# apollo-gateway configuration
apollo:
  api_key: "${APOLLO_IO_API_KEY}"
  # base_url: "https://api.apollo.io/api/v1"

server:
  http_addr: "127.0.0.1:8080"
  shutdown_timeout: "10s"

database:
  # Leave empty to keep upstream failures in memory only.
  path: "~/.local/share/apollo-gateway/failures.db"
  failure_retention: "720h"

mcp:
  require_auth: false
  default_capabilities: ["search"]
  tokens: []
  #  - token: "${APOLLO_GATEWAY_MCP_TOKEN}"
  #    principal: "desktop"
  #    capabilities: ["search", "enrichment"]

auth:
  # HS256 secret for bearer tokens minted with "apollo-gateway token" (32+ bytes).
  jwt_secret: "${APOLLO_GATEWAY_JWT_SECRET}"

logging:
  level: "info"
  format: "text"
`

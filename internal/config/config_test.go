// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, .env loading, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
apollo:
  api_key: "key-123"
  base_url: "https://apollo.example.com/api/v1"

server:
  http_addr: "0.0.0.0:9090"
  shutdown_timeout: "5s"

database:
  path: "./failures.db"
  failure_retention: "72h"

mcp:
  require_auth: true
  default_capabilities: ["search"]
  tokens:
    - token: "tok-1"
      principal: "desktop"
      capabilities: ["search", "enrichment"]

auth:
  jwt_secret: "0123456789abcdef0123456789abcdef"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Apollo.APIKey != "key-123" {
		t.Errorf("Apollo.APIKey = %q, want %q", cfg.Apollo.APIKey, "key-123")
	}
	if cfg.Apollo.BaseURL != "https://apollo.example.com/api/v1" {
		t.Errorf("Apollo.BaseURL = %q", cfg.Apollo.BaseURL)
	}
	if cfg.Server.HTTPAddr != "0.0.0.0:9090" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:9090")
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 5s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Path != "./failures.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Database.FailureRetention != 72*time.Hour {
		t.Errorf("Database.FailureRetention = %v, want 72h", cfg.Database.FailureRetention)
	}
	if !cfg.MCP.RequireAuth {
		t.Error("MCP.RequireAuth = false, want true")
	}
	if len(cfg.MCP.Tokens) != 1 || cfg.MCP.Tokens[0].Principal != "desktop" || len(cfg.MCP.Tokens[0].Capabilities) != 2 {
		t.Errorf("MCP.Tokens = %+v", cfg.MCP.Tokens)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
apollo:
  api_key: "key-123"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Apollo.BaseURL != DefaultBaseURL {
		t.Errorf("Apollo.BaseURL = %q, want %q", cfg.Apollo.BaseURL, DefaultBaseURL)
	}
	if cfg.Server.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("Server.ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Path != "" {
		t.Errorf("Database.Path = %q, want empty", cfg.Database.Path)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_APOLLO_KEY", "key-from-env")
	t.Setenv("TEST_JWT_SECRET", "secret-from-env-0123456789abcdefgh")

	configPath := writeConfig(t, `
apollo:
  api_key: "${TEST_APOLLO_KEY}"
auth:
  jwt_secret: "${TEST_JWT_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Apollo.APIKey != "key-from-env" {
		t.Errorf("Apollo.APIKey = %q, want %q", cfg.Apollo.APIKey, "key-from-env")
	}
	if cfg.Auth.JWTSecret != "secret-from-env-0123456789abcdefgh" {
		t.Errorf("Auth.JWTSecret = %q", cfg.Auth.JWTSecret)
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	// Ensure the env var is NOT set
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	configPath := writeConfig(t, `
apollo:
  api_key: "${UNSET_VAR_FOR_TEST}"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() should fail when the api key expands to empty")
	}
	if !strings.Contains(err.Error(), "apollo.api_key") {
		t.Errorf("error = %v, want mention of apollo.api_key", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/gateway.yaml")
	if err == nil {
		t.Error("Load() should return error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "apollo: [unclosed")
	if _, err := Load(configPath); err == nil {
		t.Error("Load() should return error for invalid YAML")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
apollo:
  api_key: "k"
database:
  failure_retention: "a month"
`)
	_, err := Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "failure_retention") {
		t.Errorf("Load() error = %v, want failure_retention parse error", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Config{Apollo: ApolloConfig{APIKey: "k"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api key", func(c *Config) { c.Apollo.APIKey = "" }, "apollo.api_key"},
		{"bad base url", func(c *Config) { c.Apollo.BaseURL = "ftp://apollo.io" }, "apollo.base_url"},
		{"bad http addr", func(c *Config) { c.Server.HTTPAddr = "8080" }, "server.http_addr"},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "auth.jwt_secret"},
		{"empty token", func(c *Config) { c.MCP.Tokens = []MCPTokenConfig{{Token: " "}} }, "mcp.tokens[0].token"},
		{"slash in token", func(c *Config) { c.MCP.Tokens = []MCPTokenConfig{{Token: "a/b"}} }, "must not contain"},
		{"duplicate token", func(c *Config) {
			c.MCP.Tokens = []MCPTokenConfig{{Token: "t"}, {Token: "t"}}
		}, "duplicate"},
		{"require auth without credentials", func(c *Config) { c.MCP.RequireAuth = true }, "mcp.require_auth"},
		{"require auth with token", func(c *Config) {
			c.MCP.RequireAuth = true
			c.MCP.Tokens = []MCPTokenConfig{{Token: "t"}}
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative retention", func(c *Config) { c.Database.FailureRetention = -time.Hour }, "failure_retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvBaseURL, "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Apollo.APIKey != "env-key" || cfg.Apollo.BaseURL != DefaultBaseURL {
		t.Errorf("Apollo = %+v", cfg.Apollo)
	}

	t.Setenv(EnvAPIKey, "")
	if _, err := FromEnv(); err == nil {
		t.Error("FromEnv() should fail without an api key")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("APOLLO_TEST_DOTENV=from-file\nAPOLLO_TEST_PRESET=from-file\n"), 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("APOLLO_TEST_PRESET", "from-env")
	// Registers cleanup so the variable set by the file is removed after the test
	t.Setenv("APOLLO_TEST_DOTENV", "")
	os.Unsetenv("APOLLO_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("APOLLO_TEST_DOTENV"); got != "from-file" {
		t.Errorf("APOLLO_TEST_DOTENV = %q, want from-file", got)
	}
	if got := os.Getenv("APOLLO_TEST_PRESET"); got != "from-env" {
		t.Errorf("existing variables must not be overridden, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should not be an error: %v", err)
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")

	cfg, source, err := Resolve(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if source != "environment" || cfg.Apollo.APIKey != "env-key" {
		t.Errorf("Resolve() = %+v from %q", cfg.Apollo, source)
	}

	path := writeConfig(t, "apollo:\n  api_key: file-key\n")
	cfg, source, err = Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if source != path || cfg.Apollo.APIKey != "file-key" {
		t.Errorf("Resolve() = %+v from %q", cfg.Apollo, source)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/apollo/custom.yaml")
	if got := DefaultPath(); got != "/etc/apollo/custom.yaml" {
		t.Errorf("DefaultPath() = %q", got)
	}

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != "/tmp/xdg/apollo-gateway/gateway.yaml" {
		t.Errorf("DefaultPath() = %q", got)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "one")
	got := expandEnvVars("a: ${TEST_VAR_ONE}, b: ${TEST_VAR_MISSING_XYZ}, c: $NOT_EXPANDED")
	want := "a: one, b: , c: $NOT_EXPANDED"
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}

func TestStarterConfigLoads(t *testing.T) {
	t.Setenv("APOLLO_IO_API_KEY", "starter-key")
	t.Setenv("APOLLO_GATEWAY_JWT_SECRET", "")

	cfg, err := Load(writeConfig(t, Starter))
	if err != nil {
		t.Fatalf("Load(Starter) error = %v", err)
	}
	if !strings.HasSuffix(cfg.Database.Path, filepath.Join("apollo-gateway", "failures.db")) || strings.HasPrefix(cfg.Database.Path, "~") {
		t.Errorf("Database.Path = %q, want expanded home path", cfg.Database.Path)
	}
	if cfg.Database.FailureRetention != 720*time.Hour {
		t.Errorf("FailureRetention = %v", cfg.Database.FailureRetention)
	}
}

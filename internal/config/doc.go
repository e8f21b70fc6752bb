// Package config handles configuration loading for apollo-gateway.
//
// # Configuration File
//
// Location (first match):
//
//  1. Path from the APOLLO_GATEWAY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/apollo-gateway/gateway.yaml (~/.config when unset)
//
// When no file exists, FromEnv builds a config from APOLLO_IO_API_KEY and
// the optional APOLLO_BASE_URL. A .env file in the working directory is
// loaded first with LoadDotEnv; variables already set win.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	apollo:
//	  api_key: "${APOLLO_IO_API_KEY}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to an empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	server:
//	  shutdown_timeout: "10s"
//	database:
//	  failure_retention: "720h"
//
// # Sections
//
//   - apollo: api_key (required), base_url
//   - server: http_addr, shutdown_timeout
//   - database: path (empty keeps failures in memory), failure_retention
//   - mcp: require_auth, default_capabilities, tokens
//   - auth: jwt_secret (32+ bytes) for bearer tokens
//   - logging: level (debug|info|warn|error), format (text|json)
//
// `apollo-gateway init` writes Starter to the default location.
package config

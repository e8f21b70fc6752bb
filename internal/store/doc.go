// Package store persists the gateway's diagnostic side channel.
//
// Every Apollo call that ends in an absence signal (non-200 status,
// transport error, undecodable body) is recorded as a Failure so operators
// can see why a tool returned null without the caller ever seeing the
// upstream error. Every routed tool call is recorded as a ToolCall with its
// outcome (payload, absent, invalid, error) for usage stats.
//
// # Implementations
//
// The gateway client depends only on FailureRecorder and the router only on
// UsageRecorder. Store combines both with their query side:
//
//   - SQLiteStore: durable storage in the upstream_failures and tool_calls tables
//   - MemoryStore: in-process storage for tests and for runs without a database
//
// # SQLite Configuration
//
// The store uses modernc.org/sqlite with WAL mode so the CLI can read
// while the server is writing:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA busy_timeout=5000;
//
// Database file locations:
//
//   - Development: ~/.local/share/apollo-gateway/failures.db
//   - Testing: a file under t.TempDir()
//
// # Querying
//
// ListFailures returns newest first and accepts a FailureFilter on
// operation, reason and time. Limits default to 100 and are capped at 1000.
// GetUsageStats aggregates per tool, ordered by tool name. Prune applies a
// retention cutoff to both tables.
package store

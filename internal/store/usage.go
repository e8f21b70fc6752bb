// ABOUTME: Tool call usage records and per-tool aggregation
// ABOUTME: Every routed invocation is stored with its outcome for usage stats

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CallOutcome classifies how a tool call ended.
type CallOutcome string

const (
	OutcomePayload CallOutcome = "payload" // the upstream returned data
	OutcomeAbsent  CallOutcome = "absent"  // the upstream call produced nothing
	OutcomeInvalid CallOutcome = "invalid" // arguments failed validation
	OutcomeError   CallOutcome = "error"   // any other error, e.g. cancellation
)

// ToolCall is one invocation routed to a tool handler.
type ToolCall struct {
	ID          string // UUID v4
	Tool        string
	PrincipalID string // empty for anonymous and CLI callers
	Outcome     CallOutcome
	Duration    time.Duration
	CreatedAt   time.Time
}

// UsageFilter narrows the calls that GetUsageStats aggregates.
type UsageFilter struct {
	Tool        *string
	PrincipalID *string
	Since       *time.Time
	Until       *time.Time
}

// ToolUsage is the aggregate for one tool.
type ToolUsage struct {
	Tool        string
	Calls       int64
	Payloads    int64
	Absent      int64
	Invalid     int64
	Errors      int64
	AvgDuration time.Duration
}

// UsageRecorder is the sink the router reports tool calls to.
type UsageRecorder interface {
	RecordToolCall(ctx context.Context, c *ToolCall) error
}

// UsageStore records and aggregates tool calls.
type UsageStore interface {
	UsageRecorder
	GetUsageStats(ctx context.Context, f UsageFilter) ([]*ToolUsage, error)
	PruneToolCalls(ctx context.Context, before time.Time) (int64, error)
}

// prepareToolCall fills in ID and CreatedAt when unset.
func prepareToolCall(c *ToolCall) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}

// RecordToolCall stores one tool call.
func (s *SQLiteStore) RecordToolCall(ctx context.Context, c *ToolCall) error {
	prepareToolCall(c)

	query := `
		INSERT INTO tool_calls (id, tool, principal_id, outcome, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.Tool,
		nullIfEmpty(c.PrincipalID),
		string(c.Outcome),
		c.Duration.Milliseconds(),
		c.CreatedAt.UTC().Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting tool call: %w", err)
	}

	s.logger.Debug("recorded tool call",
		"id", c.ID,
		"tool", c.Tool,
		"outcome", c.Outcome,
	)
	return nil
}

// GetUsageStats returns per-tool aggregates ordered by tool name.
func (s *SQLiteStore) GetUsageStats(ctx context.Context, filter UsageFilter) ([]*ToolUsage, error) {
	query := `
		SELECT
			tool,
			COUNT(*) as calls,
			COALESCE(SUM(CASE WHEN outcome = 'payload' THEN 1 ELSE 0 END), 0) as payloads,
			COALESCE(SUM(CASE WHEN outcome = 'absent' THEN 1 ELSE 0 END), 0) as absent,
			COALESCE(SUM(CASE WHEN outcome = 'invalid' THEN 1 ELSE 0 END), 0) as invalid,
			COALESCE(SUM(CASE WHEN outcome = 'error' THEN 1 ELSE 0 END), 0) as errors,
			COALESCE(AVG(duration_ms), 0) as avg_ms
		FROM tool_calls
		WHERE 1=1
	`
	args := []any{}

	if filter.Tool != nil {
		query += " AND tool = ?"
		args = append(args, *filter.Tool)
	}
	if filter.PrincipalID != nil {
		query += " AND principal_id = ?"
		args = append(args, *filter.PrincipalID)
	}
	if filter.Since != nil {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC().Format(timestampFormat))
	}
	if filter.Until != nil {
		query += " AND created_at < ?"
		args = append(args, filter.Until.UTC().Format(timestampFormat))
	}
	query += " GROUP BY tool ORDER BY tool"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying usage stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []*ToolUsage
	for rows.Next() {
		var u ToolUsage
		var avgMS float64
		if err := rows.Scan(&u.Tool, &u.Calls, &u.Payloads, &u.Absent, &u.Invalid, &u.Errors, &avgMS); err != nil {
			return nil, fmt.Errorf("scanning usage row: %w", err)
		}
		u.AvgDuration = time.Duration(avgMS * float64(time.Millisecond))
		stats = append(stats, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage rows: %w", err)
	}
	return stats, nil
}

// PruneToolCalls deletes calls older than the cutoff and returns how many were removed.
func (s *SQLiteStore) PruneToolCalls(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tool_calls WHERE created_at < ?`, before.UTC().Format(timestampFormat))
	if err != nil {
		return 0, fmt.Errorf("pruning tool calls: %w", err)
	}
	return res.RowsAffected()
}

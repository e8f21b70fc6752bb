// ABOUTME: In-memory store for tests and database-less runs
// ABOUTME: Mirrors SQLiteStore filtering, ordering and aggregation without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps failures and tool calls in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	failures []*Failure
	calls    []*ToolCall
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// RecordFailure stores a copy of the failure.
func (m *MemoryStore) RecordFailure(ctx context.Context, f *Failure) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Make a copy to avoid external modification
	c := *f
	c.Body = TruncateUTF8(c.Body, MaxFailureBodySize)
	m.failures = append(m.failures, &c)
	return nil
}

// ListFailures returns failures matching the filter, newest first.
func (m *MemoryStore) ListFailures(ctx context.Context, filter FailureFilter) ([]*Failure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Failure
	for _, f := range m.failures {
		if filter.Since != nil && f.Timestamp.Before(*filter.Since) {
			continue
		}
		if filter.Operation != nil && f.Operation != *filter.Operation {
			continue
		}
		if filter.Reason != nil && f.Reason != *filter.Reason {
			continue
		}
		c := *f
		out = append(out, &c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit := normalizeFailureLimit(filter.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of recorded failures.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.failures)
}

// PruneFailures removes failures recorded before the given time.
func (m *MemoryStore) PruneFailures(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.failures[:0]
	var removed int64
	for _, f := range m.failures {
		if f.Timestamp.Before(before) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	m.failures = kept
	return removed, nil
}

// RecordToolCall stores a copy of the call.
func (m *MemoryStore) RecordToolCall(ctx context.Context, c *ToolCall) error {
	prepareToolCall(c)

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *c
	m.calls = append(m.calls, &cp)
	return nil
}

// GetUsageStats returns per-tool aggregates ordered by tool name.
func (m *MemoryStore) GetUsageStats(ctx context.Context, filter UsageFilter) ([]*ToolUsage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byTool := make(map[string]*ToolUsage)
	totals := make(map[string]time.Duration)
	for _, c := range m.calls {
		if filter.Tool != nil && c.Tool != *filter.Tool {
			continue
		}
		if filter.PrincipalID != nil && c.PrincipalID != *filter.PrincipalID {
			continue
		}
		if filter.Since != nil && c.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && !c.CreatedAt.Before(*filter.Until) {
			continue
		}

		u, ok := byTool[c.Tool]
		if !ok {
			u = &ToolUsage{Tool: c.Tool}
			byTool[c.Tool] = u
		}
		u.Calls++
		switch c.Outcome {
		case OutcomePayload:
			u.Payloads++
		case OutcomeAbsent:
			u.Absent++
		case OutcomeInvalid:
			u.Invalid++
		case OutcomeError:
			u.Errors++
		}
		totals[c.Tool] += c.Duration.Truncate(time.Millisecond)
	}

	stats := make([]*ToolUsage, 0, len(byTool))
	for tool, u := range byTool {
		u.AvgDuration = totals[tool] / time.Duration(u.Calls)
		stats = append(stats, u)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Tool < stats[j].Tool
	})
	return stats, nil
}

// PruneToolCalls removes calls recorded before the given time.
func (m *MemoryStore) PruneToolCalls(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.calls[:0]
	var removed int64
	for _, c := range m.calls {
		if c.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.calls = kept
	return removed, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// ABOUTME: Store interface combining the failure log and tool call usage
// ABOUTME: SQLiteStore persists both; MemoryStore keeps them for the process lifetime

package store

import (
	"context"
	"time"
)

// Store is everything the gateway persists.
type Store interface {
	FailureStore
	UsageStore
}

// Prune drops failures and tool calls recorded before the cutoff.
func Prune(ctx context.Context, s Store, before time.Time) (failures, calls int64, err error) {
	failures, err = s.PruneFailures(ctx, before)
	if err != nil {
		return 0, 0, err
	}
	calls, err = s.PruneToolCalls(ctx, before)
	if err != nil {
		return failures, 0, err
	}
	return failures, calls, nil
}

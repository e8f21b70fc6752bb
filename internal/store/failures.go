// ABOUTME: Upstream failure entity and store methods for the diagnostic side channel
// ABOUTME: Records which Apollo call failed, how, and with what status or error

package store

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FailureReason classifies why an upstream call produced no result.
type FailureReason string

const (
	ReasonUnauthorized FailureReason = "unauthorized"
	ReasonNotFound     FailureReason = "not_found"
	ReasonRateLimited  FailureReason = "rate_limited"
	ReasonClientError  FailureReason = "client_error"
	ReasonServerError  FailureReason = "server_error"
	ReasonTransport    FailureReason = "transport"
	ReasonDecode       FailureReason = "decode"
)

// ValidFailureReasons lists all failure reasons.
var ValidFailureReasons = []FailureReason{
	ReasonUnauthorized,
	ReasonNotFound,
	ReasonRateLimited,
	ReasonClientError,
	ReasonServerError,
	ReasonTransport,
	ReasonDecode,
}

// timestampFormat is fixed-width so stored timestamps sort lexically.
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

// MaxFailureBodySize caps the stored response body.
const MaxFailureBodySize = 64 << 10

// TruncateUTF8 cuts s to at most n bytes without splitting a multi-byte
// character.
func TruncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Failure is one upstream call that ended in an absence signal.
type Failure struct {
	ID         string        // UUID v4
	RequestID  string        // correlates with log lines of the same call
	Operation  string        // e.g. "people_search"
	Method     string        // HTTP method
	URL        string        // request URL without credentials
	Reason     FailureReason // classification
	StatusCode int           // 0 when no response was received
	Body       string        // response body, truncated to MaxFailureBodySize
	Error      string        // transport or decode error text
	Duration   time.Duration // time from send to failure
	Timestamp  time.Time
}

// FailureFilter specifies filtering options for listing failures.
type FailureFilter struct {
	Since     *time.Time     // failures after this time
	Operation *string        // filter by operation
	Reason    *FailureReason // filter by reason
	Limit     int            // max results (default 100, max 1000)
}

// FailureRecorder is the sink the gateway client reports failures to.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, f *Failure) error
}

// FailureStore is a queryable failure log. SQLiteStore and MemoryStore implement it.
type FailureStore interface {
	FailureRecorder
	ListFailures(ctx context.Context, f FailureFilter) ([]*Failure, error)
	PruneFailures(ctx context.Context, before time.Time) (int64, error)
	Close() error
}

// RecordFailure persists a failure. Generates ID and Timestamp if not set.
// The stored body is truncated; f.Body is left as the caller set it.
func (s *SQLiteStore) RecordFailure(ctx context.Context, f *Failure) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now().UTC()
	}
	body := TruncateUTF8(f.Body, MaxFailureBodySize)

	var statusCode *int
	if f.StatusCode != 0 {
		statusCode = &f.StatusCode
	}

	query := `
		INSERT INTO upstream_failures (failure_id, request_id, operation, method, url, reason, status_code, body, error, duration_ms, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		f.ID,
		f.RequestID,
		f.Operation,
		f.Method,
		f.URL,
		string(f.Reason),
		statusCode,
		nullIfEmpty(body),
		nullIfEmpty(f.Error),
		f.Duration.Milliseconds(),
		f.Timestamp.UTC().Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting failure: %w", err)
	}

	s.logger.Debug("recorded upstream failure",
		"id", f.ID,
		"operation", f.Operation,
		"reason", f.Reason,
		"status", f.StatusCode,
	)
	return nil
}

// normalizeFailureLimit applies default (100) and cap (1000) to the limit.
func normalizeFailureLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

const failureListQuery = `
	SELECT failure_id, request_id, operation, method, url, reason, status_code, body, error, duration_ms, ts
	FROM upstream_failures
	WHERE (? IS NULL OR ts >= ?)
	  AND (? IS NULL OR operation = ?)
	  AND (? IS NULL OR reason = ?)
	ORDER BY ts DESC
	LIMIT ?
`

// ListFailures returns failures matching the filter, newest first.
func (s *SQLiteStore) ListFailures(ctx context.Context, f FailureFilter) ([]*Failure, error) {
	var since, reason *string
	if f.Since != nil {
		v := f.Since.UTC().Format(timestampFormat)
		since = &v
	}
	if f.Reason != nil {
		v := string(*f.Reason)
		reason = &v
	}

	rows, err := s.db.QueryContext(ctx, failureListQuery,
		since, since,
		f.Operation, f.Operation,
		reason, reason,
		normalizeFailureLimit(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	var failures []*Failure
	for rows.Next() {
		failure, err := scanFailure(rows)
		if err != nil {
			return nil, err
		}
		failures = append(failures, failure)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating failures: %w", err)
	}
	return failures, nil
}

// PruneFailures deletes failures older than the cutoff and returns how many were removed.
func (s *SQLiteStore) PruneFailures(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM upstream_failures WHERE ts < ?`, before.UTC().Format(timestampFormat))
	if err != nil {
		return 0, fmt.Errorf("pruning failures: %w", err)
	}
	return res.RowsAffected()
}

// scanFailure scans a row into a Failure.
func scanFailure(scanner interface{ Scan(dest ...any) error }) (*Failure, error) {
	var f Failure
	var reason, ts string
	var statusCode *int
	var body, errText *string
	var durationMS int64

	if err := scanner.Scan(
		&f.ID,
		&f.RequestID,
		&f.Operation,
		&f.Method,
		&f.URL,
		&reason,
		&statusCode,
		&body,
		&errText,
		&durationMS,
		&ts,
	); err != nil {
		return nil, fmt.Errorf("scanning failure: %w", err)
	}

	f.Reason = FailureReason(reason)
	if statusCode != nil {
		f.StatusCode = *statusCode
	}
	if body != nil {
		f.Body = *body
	}
	if errText != nil {
		f.Error = *errText
	}
	f.Duration = time.Duration(durationMS) * time.Millisecond

	var err error
	f.Timestamp, err = time.Parse(timestampFormat, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}
	return &f, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

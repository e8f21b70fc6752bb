// ABOUTME: Failure classification and reporting for the Apollo client
// ABOUTME: Logs every failure at WARN and forwards it to the configured recorder

package client

import (
	"context"
	"net/http"

	"github.com/2389/apollo-gateway/internal/store"
)

// maxLoggedBody is how much of an upstream body goes into a log line.
const maxLoggedBody = 512

// classifyStatus maps a non-200 status to a failure reason.
func classifyStatus(status int) store.FailureReason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return store.ReasonUnauthorized
	case status == http.StatusNotFound:
		return store.ReasonNotFound
	case status == http.StatusTooManyRequests:
		return store.ReasonRateLimited
	case status >= 400 && status < 500:
		return store.ReasonClientError
	default:
		return store.ReasonServerError
	}
}

// report emits the diagnostic side channel for one failed call. Recorder
// errors are logged and never reach the caller.
func (c *Client) report(ctx context.Context, f *store.Failure) {
	c.logger.Warn("apollo request failed",
		"request_id", f.RequestID,
		"operation", f.Operation,
		"method", f.Method,
		"url", f.URL,
		"reason", f.Reason,
		"status", f.StatusCode,
		"body", truncate(f.Body, maxLoggedBody),
		"error", f.Error,
		"duration", f.Duration,
	)

	if c.failures == nil {
		return
	}
	// The caller may already be canceled; the record should still land.
	if err := c.failures.RecordFailure(context.WithoutCancel(ctx), f); err != nil {
		c.logger.Error("failed to record upstream failure",
			"request_id", f.RequestID,
			"error", err,
		)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return store.TruncateUTF8(s, n) + "…"
}

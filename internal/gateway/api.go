// ABOUTME: HTTP API handlers for health checks, tool descriptors, failures and usage.
// ABOUTME: Provides GET /api/tools, /api/failures and /api/usage for operators and dashboards.

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/2389/apollo-gateway/internal/auth"
	"github.com/2389/apollo-gateway/internal/packs"
	"github.com/2389/apollo-gateway/internal/store"
)

// ToolInfoResponse is one entry of GET /api/tools.
type ToolInfoResponse struct {
	Name                 string             `json:"name"`
	Description          string             `json:"description"`
	RequiredCapabilities []string           `json:"required_capabilities"`
	InputSchema          *jsonschema.Schema `json:"input_schema"`
}

// ListToolsResponse is the JSON response for GET /api/tools.
type ListToolsResponse struct {
	Tools []ToolInfoResponse `json:"tools"`
}

// FailureResponse is one entry of GET /api/failures.
type FailureResponse struct {
	ID         string `json:"id"`
	RequestID  string `json:"request_id"`
	Operation  string `json:"operation"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	Reason     string `json:"reason"`
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Timestamp  string `json:"timestamp"`
}

// ListFailuresResponse is the JSON response for GET /api/failures.
type ListFailuresResponse struct {
	Failures []FailureResponse `json:"failures"`
}

// ToolUsageResponse is one entry of GET /api/usage.
type ToolUsageResponse struct {
	Tool          string `json:"tool"`
	Calls         int64  `json:"calls"`
	Payloads      int64  `json:"payloads"`
	Absent        int64  `json:"absent"`
	Invalid       int64  `json:"invalid"`
	Errors        int64  `json:"errors"`
	AvgDurationMS int64  `json:"avg_duration_ms"`
}

// UsageResponse is the JSON response for GET /api/usage.
type UsageResponse struct {
	Tools []ToolUsageResponse `json:"tools"`
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the registry is frozen with tools registered.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	tools := g.packRegistry.GetAllTools()
	if !g.packRegistry.Frozen() || len(tools) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no tools registered"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d tools, up %s)", len(tools), time.Since(g.startedAt).Truncate(time.Second))
}

// handleListTools returns the tool descriptors. Authenticated callers only
// see the tools their capabilities allow.
func (g *Gateway) handleListTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var defs []*packs.ToolDefinition
	if ac := auth.FromContext(r.Context()); ac != nil {
		defs = g.packRegistry.GetToolsForCapabilities(ac.Capabilities)
	} else {
		defs = g.packRegistry.GetAllTools()
	}

	resp := ListToolsResponse{Tools: make([]ToolInfoResponse, len(defs))}
	for i, def := range defs {
		resp.Tools[i] = ToolInfoResponse{
			Name:                 def.Name,
			Description:          def.Description,
			RequiredCapabilities: def.RequiredCapabilities,
			InputSchema:          def.InputSchema,
		}
	}
	g.sendJSON(w, http.StatusOK, resp)
}

// handleListFailures returns recent upstream failures, newest first.
// Query parameters: limit, operation, reason, since (RFC 3339 or a duration like "1h").
func (g *Gateway) handleListFailures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter, err := parseFailureFilter(r, time.Now())
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	failures, err := g.store.ListFailures(r.Context(), filter)
	if err != nil {
		g.logger.Error("failed to list failures", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "failed to list failures")
		return
	}

	resp := ListFailuresResponse{Failures: make([]FailureResponse, len(failures))}
	for i, f := range failures {
		resp.Failures[i] = FailureResponse{
			ID:         f.ID,
			RequestID:  f.RequestID,
			Operation:  f.Operation,
			Method:     f.Method,
			URL:        f.URL,
			Reason:     string(f.Reason),
			StatusCode: f.StatusCode,
			Body:       f.Body,
			Error:      f.Error,
			DurationMS: f.Duration.Milliseconds(),
			Timestamp:  f.Timestamp.UTC().Format(time.RFC3339Nano),
		}
	}
	g.sendJSON(w, http.StatusOK, resp)
}

// handleUsage returns per-tool call counts by outcome.
// Query parameters: tool, principal, since (RFC 3339 or a duration like "24h").
func (g *Gateway) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var filter store.UsageFilter
	q := r.URL.Query()
	if v := q.Get("tool"); v != "" {
		filter.Tool = &v
	}
	if v := q.Get("principal"); v != "" {
		filter.PrincipalID = &v
	}
	if v := q.Get("since"); v != "" {
		since, err := parseSince(v, time.Now())
		if err != nil {
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Since = &since
	}

	stats, err := g.store.GetUsageStats(r.Context(), filter)
	if err != nil {
		g.logger.Error("failed to get usage stats", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "failed to get usage stats")
		return
	}

	resp := UsageResponse{Tools: make([]ToolUsageResponse, len(stats))}
	for i, u := range stats {
		resp.Tools[i] = ToolUsageResponse{
			Tool:          u.Tool,
			Calls:         u.Calls,
			Payloads:      u.Payloads,
			Absent:        u.Absent,
			Invalid:       u.Invalid,
			Errors:        u.Errors,
			AvgDurationMS: u.AvgDuration.Milliseconds(),
		}
	}
	g.sendJSON(w, http.StatusOK, resp)
}

// parseFailureFilter reads the failure query parameters relative to now.
func parseFailureFilter(r *http.Request, now time.Time) (store.FailureFilter, error) {
	var filter store.FailureFilter
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, fmt.Errorf("limit must be a positive integer")
		}
		filter.Limit = limit
	}

	if v := q.Get("operation"); v != "" {
		filter.Operation = &v
	}

	if v := q.Get("reason"); v != "" {
		reason := store.FailureReason(v)
		if !slices.Contains(store.ValidFailureReasons, reason) {
			return filter, fmt.Errorf("unknown reason %q", v)
		}
		filter.Reason = &reason
	}

	if v := q.Get("since"); v != "" {
		since, err := parseSince(v, now)
		if err != nil {
			return filter, err
		}
		filter.Since = &since
	}

	return filter, nil
}

// parseSince accepts an RFC 3339 timestamp or a duration back from now.
func parseSince(v string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(v); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("since must not be negative")
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("since must be RFC 3339 or a duration: %q", v)
	}
	return t, nil
}

func (g *Gateway) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Warn("failed to encode JSON response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	g.sendJSON(w, status, map[string]string{"error": message})
}

// ABOUTME: Routes tool invocations by name to registered built-in handlers.
// ABOUTME: Validates arguments against the tool's input schema before any handler runs.

package packs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/apollo-gateway/internal/apollo"
	"github.com/2389/apollo-gateway/internal/auth"
	"github.com/2389/apollo-gateway/internal/store"
)

// ErrToolNotFound indicates the requested tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// Router dispatches tool calls to their handlers.
type Router struct {
	registry *Registry
	logger   *slog.Logger
	usage    store.UsageRecorder
}

// RouterConfig contains configuration options for the Router.
type RouterConfig struct {
	Registry *Registry
	Logger   *slog.Logger
	Usage    store.UsageRecorder // optional; receives one ToolCall per routed call
}

// NewRouter creates a new Router with the given configuration.
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry: cfg.Registry,
		logger:   logger,
		usage:    cfg.Usage,
	}
}

// Invoke runs the named tool with raw JSON arguments.
//
// It returns ErrToolNotFound before looking at the arguments when the name is
// unknown, and an error wrapping apollo.ErrInvalidQuery when the arguments
// fail validation. An upstream failure is not an error: the Result is
// returned with Absent set.
//
// Every call that reaches a registered tool is reported to the usage
// recorder, including rejected arguments.
func (r *Router) Invoke(ctx context.Context, name string, input json.RawMessage) (*Result, error) {
	entry := r.registry.lookup(name)
	if entry == nil {
		r.logger.Debug("tool not found in registry", "tool_name", name)
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	start := time.Now()
	result, err := r.dispatch(ctx, entry, name, input)
	r.recordCall(ctx, name, start, result, err)
	return result, err
}

func (r *Router) dispatch(ctx context.Context, entry *builtinEntry, name string, input json.RawMessage) (*Result, error) {
	input = normalizeInput(input)

	var instance any
	if err := json.Unmarshal(input, &instance); err != nil {
		return nil, &apollo.ValidationError{Field: "arguments", Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if err := entry.schema.Validate(instance); err != nil {
		r.logger.Debug("tool arguments rejected by schema", "tool_name", name, "error", err)
		return nil, &apollo.ValidationError{Field: "arguments", Reason: err.Error()}
	}

	r.logger.Info("→ dispatching to builtin",
		"tool_name", name,
		"pack_id", entry.PackID,
	)

	start := time.Now()
	result, err := entry.Tool.Handler(ctx, input)
	if err != nil {
		r.logger.Warn("builtin tool error",
			"tool_name", name,
			"error", err,
		)
		return nil, err
	}
	if result == nil {
		result = AbsentResult()
	}

	r.logger.Info("← builtin responded",
		"tool_name", name,
		"absent", result.Absent,
		"duration", time.Since(start),
	)
	return result, nil
}

// recordCall reports one routed call to the usage recorder.
func (r *Router) recordCall(ctx context.Context, name string, start time.Time, result *Result, err error) {
	if r.usage == nil {
		return
	}

	call := &store.ToolCall{
		Tool:     name,
		Outcome:  callOutcome(result, err),
		Duration: time.Since(start),
	}
	if ac := auth.FromContext(ctx); ac != nil {
		call.PrincipalID = ac.PrincipalID
	}

	// Record even when the caller gave up
	if err := r.usage.RecordToolCall(context.WithoutCancel(ctx), call); err != nil {
		r.logger.Warn("failed to record tool call", "tool_name", name, "error", err)
	}
}

func callOutcome(result *Result, err error) store.CallOutcome {
	switch {
	case errors.Is(err, apollo.ErrInvalidQuery):
		return store.OutcomeInvalid
	case err != nil:
		return store.OutcomeError
	case result == nil || result.Absent:
		return store.OutcomeAbsent
	default:
		return store.OutcomePayload
	}
}

// HasTool checks if a tool with the given name exists in the registry.
func (r *Router) HasTool(toolName string) bool {
	return r.registry.IsBuiltin(toolName)
}

// GetToolDefinition returns the tool definition for a given tool name.
// Returns nil if the tool is not found.
func (r *Router) GetToolDefinition(toolName string) *ToolDefinition {
	if builtin := r.registry.GetBuiltinTool(toolName); builtin != nil {
		return builtin.Definition
	}
	return nil
}

// normalizeInput treats missing or null arguments as an empty object.
func normalizeInput(input json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}")
	}
	return trimmed
}

// DecodeArguments decodes tool arguments into v, rejecting unknown fields
// and trailing data.
func DecodeArguments(input json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(normalizeInput(input)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &apollo.ValidationError{Field: "arguments", Reason: err.Error()}
	}
	if dec.More() {
		return &apollo.ValidationError{Field: "arguments", Reason: "unexpected data after arguments"}
	}
	return nil
}

// ABOUTME: Built-in tool support for operations that execute in-process.
// ABOUTME: Defines tool descriptors, handlers, and the invocation result.

package packs

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// ToolDefinition describes a tool to hosts: its stable name, what it does,
// the JSON Schema of its arguments, and who may call it.
type ToolDefinition struct {
	Name                 string
	Description          string
	InputSchema          *jsonschema.Schema
	RequiredCapabilities []string
}

// Result is the outcome of a successful dispatch. Absent is set when the
// upstream produced no result; Payload is nil in that case.
type Result struct {
	Payload map[string]any
	Absent  bool
}

// AbsentResult is returned by handlers when the upstream call did not succeed.
func AbsentResult() *Result {
	return &Result{Absent: true}
}

// ToolHandler executes a built-in tool with its raw JSON arguments.
// Arguments have already passed the tool's input schema.
type ToolHandler func(ctx context.Context, input json.RawMessage) (*Result, error)

// BuiltinTool represents a tool that executes in the gateway process.
type BuiltinTool struct {
	Definition *ToolDefinition
	Handler    ToolHandler
}

// BuiltinPack is a collection of built-in tools with a pack ID.
type BuiltinPack struct {
	ID    string
	Tools []*BuiltinTool
}

// builtinEntry stores a builtin tool with its pack ID and resolved schema.
type builtinEntry struct {
	Tool   *BuiltinTool
	PackID string
	schema *jsonschema.Resolved
}

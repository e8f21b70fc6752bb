// ABOUTME: Maps router outcomes to MCP tool results.
// ABOUTME: Shared by the HTTP and stdio transports so both report the same outcomes.

package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2389/apollo-gateway/internal/apollo"
	"github.com/2389/apollo-gateway/internal/packs"
)

// absentText is the tool result text when the upstream produced nothing.
const absentText = "null"

// toolOutcome is the transport-neutral form of a tools/call result.
type toolOutcome struct {
	Text              string
	StructuredContent map[string]any
	IsError           bool
}

// outcomeFor converts the result of packs.Router.Invoke. Validation failures
// become error results the model can read; any other error is returned as-is
// for the transport to report as a protocol error.
func outcomeFor(result *packs.Result, err error) (*toolOutcome, error) {
	if err != nil {
		if errors.Is(err, apollo.ErrInvalidQuery) {
			return &toolOutcome{Text: err.Error(), IsError: true}, nil
		}
		return nil, err
	}
	if result == nil || result.Absent {
		return &toolOutcome{Text: absentText}, nil
	}

	text, err := json.Marshal(result.Payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return &toolOutcome{Text: string(text), StructuredContent: result.Payload}, nil
}

// allCapabilities returns every capability required by a registered tool.
func allCapabilities(registry *packs.Registry) []string {
	seen := make(map[string]struct{})
	var caps []string
	for _, def := range registry.GetAllTools() {
		for _, c := range def.RequiredCapabilities {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				caps = append(caps, c)
			}
		}
	}
	return caps
}

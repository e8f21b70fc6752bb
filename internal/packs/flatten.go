// ABOUTME: Converts typed responses into plain nested maps for hosts.
// ABOUTME: Present fields are kept (empty lists included), absent ones omitted, integers stay exact.

package packs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Flatten turns a typed response into map[string]any with nested []any and
// map[string]any values. Numbers are json.Number so large integers survive.
// Object members that encode as null are dropped, so a nil pointer or nil
// slice field is absent while an empty list stays an empty list.
// A nil pointer flattens to a nil map.
func Flatten(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("flattening response: %w", err)
	}
	dropNulls(out)
	return out, nil
}

func dropNulls(v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if child == nil {
				delete(t, k)
				continue
			}
			dropNulls(child)
		}
	case []any:
		for _, child := range t {
			dropNulls(child)
		}
	}
}

// ABOUTME: JSON Schema building blocks shared by the per-operation input schemas.
// ABOUTME: Schemas are advertised to hosts and used to validate raw tool arguments.

package apollo

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// noAdditional is the "false" schema used for additionalProperties.
// jsonschema-go has no False() helper, so spell out {"not": {}}.
func noAdditional() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

func objectSchema(description string, required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		Description:          description,
		Required:             required,
		Properties:           props,
		AdditionalProperties: noAdditional(),
	}
}

func stringField(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func boolField(description string, def *bool) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "boolean", Description: description}
	if def != nil {
		s.Default = mustJSON(*def)
	}
	return s
}

func intField(description string, minimum, maximum *float64) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "integer",
		Description: description,
		Minimum:     minimum,
		Maximum:     maximum,
	}
}

func stringList(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items:       &jsonschema.Schema{Type: "string"},
	}
}

func enumList(description string, values []string) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return &jsonschema.Schema{
		Type:        "array",
		Description: description + " Values are case-sensitive and must be one of the listed lowercase values.",
		Items:       &jsonschema.Schema{Type: "string", Enum: enum},
	}
}

// rangePattern only checks the shape; ParseRange enforces low <= high.
const rangePattern = `^\s*\d+\s*,\s*\d+\s*$`

func rangeList(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items:       &jsonschema.Schema{Type: "string", Pattern: rangePattern},
	}
}

func pageField() *jsonschema.Schema {
	return intField("The page number of the Apollo data that you want to retrieve. Use this parameter in combination with per_page. Example: 4", floatPtr(MinPage), nil)
}

func perPageField() *jsonschema.Schema {
	return intField("The number of search results that should be returned for each page. Use page to navigate the different pages of data. Example: 10", floatPtr(MinPerPage), floatPtr(MaxPerPage))
}

func floatPtr(f float64) *float64 { return &f }

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

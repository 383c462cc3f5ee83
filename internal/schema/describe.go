package schema

import "encoding/json"

// Describe renders s as a JSON Schema document. The result is what the model
// sees as its interface contract and what validation compiles.
func Describe(s *Schema) map[string]any {
	if s == nil {
		return map[string]any{"type": string(TypeObject)}
	}

	doc := map[string]any{}
	if s.Nullable {
		doc["type"] = []any{string(s.Type), "null"}
	} else {
		doc["type"] = string(s.Type)
	}
	if s.Name != "" {
		doc["title"] = s.Name
	}
	if s.Description != "" {
		doc["description"] = s.Description
	}

	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Fields))
		var required []any
		for _, f := range s.Fields {
			props[f.Name] = Describe(f.Schema)
			if !f.Optional {
				required = append(required, f.Name)
			}
		}
		doc["properties"] = props
		if len(required) > 0 {
			doc["required"] = required
		}
	case TypeArray:
		if s.Items != nil {
			doc["items"] = Describe(s.Items)
		}
		if s.MinItems != nil {
			doc["minItems"] = *s.MinItems
		}
	}

	if len(s.Enum) > 0 {
		enum := make([]any, len(s.Enum))
		for i, e := range s.Enum {
			enum[i] = e
		}
		if s.Nullable {
			enum = append(enum, nil)
		}
		doc["enum"] = enum
	}
	if s.Minimum != nil {
		doc["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		doc["maximum"] = *s.Maximum
	}
	if s.MinLength != nil {
		doc["minLength"] = *s.MinLength
	}
	if s.Format != "" {
		doc["format"] = s.Format
	}
	if s.Default != nil {
		doc["default"] = s.Default
	}
	return doc
}

// DescribeJSON is Describe encoded as JSON.
func DescribeJSON(s *Schema) (json.RawMessage, error) {
	return json.Marshal(Describe(s))
}

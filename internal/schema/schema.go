// Package schema holds the declarative data contracts shared by flows, tools and
// the model-facing interface. A Schema validates untyped values (model output,
// tool arguments, caller input) and describes itself as JSON Schema so the model
// knows what shape to produce.
package schema

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Type is a JSON primitive type.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Common string formats asserted during validation.
const (
	FormatEmail    = "email"
	FormatDateTime = "date-time"
)

// Schema is a structural contract. Build it once at package init with the
// constructors below and treat it as read-only afterwards.
type Schema struct {
	Name        string
	Type        Type
	Description string
	Fields      []Field // object only, in declaration order
	Items       *Schema // array only
	Enum        []string
	Minimum     *float64
	Maximum     *float64
	MinLength   *int
	MinItems    *int
	Format      string
	Nullable    bool
	Default     any

	once       sync.Once
	compiled   *jsonschema.Schema
	compileErr error
}

// Field is a named member of an object schema.
type Field struct {
	Name     string
	Schema   *Schema
	Optional bool
}

func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

func Number(description string) *Schema {
	return &Schema{Type: TypeNumber, Description: description}
}

func Integer(description string) *Schema {
	return &Schema{Type: TypeInteger, Description: description}
}

func Boolean(description string) *Schema {
	return &Schema{Type: TypeBoolean, Description: description}
}

// Array declares a list whose elements all conform to items.
func Array(items *Schema, description string) *Schema {
	return &Schema{Type: TypeArray, Items: items, Description: description}
}

// Object declares a named record. The name is used in error messages and as
// the registry key.
func Object(name, description string, fields ...Field) *Schema {
	return &Schema{Name: name, Type: TypeObject, Description: description, Fields: fields}
}

// Required declares a field that must be present.
func Required(name string, s *Schema) Field {
	return Field{Name: name, Schema: s}
}

// Optional declares a field that may be absent (or null).
func Optional(name string, s *Schema) Field {
	return Field{Name: name, Schema: s, Optional: true}
}

// Min sets an inclusive lower bound on a number or integer.
func (s *Schema) Min(v float64) *Schema {
	s.Minimum = &v
	return s
}

// Max sets an inclusive upper bound on a number or integer.
func (s *Schema) Max(v float64) *Schema {
	s.Maximum = &v
	return s
}

// NonEmpty requires at least one character for strings and one element for arrays.
func (s *Schema) NonEmpty() *Schema {
	one := 1
	switch s.Type {
	case TypeArray:
		s.MinItems = &one
	default:
		s.MinLength = &one
	}
	return s
}

// OneOf restricts a string to an enumeration.
func (s *Schema) OneOf(values ...string) *Schema {
	s.Enum = values
	return s
}

func (s *Schema) WithFormat(format string) *Schema {
	s.Format = format
	return s
}

// WithDefault sets the value used when an optional field is absent.
func (s *Schema) WithDefault(v any) *Schema {
	s.Default = v
	return s
}

// OrNull allows an explicit JSON null.
func (s *Schema) OrNull() *Schema {
	s.Nullable = true
	return s
}

// Named sets the schema name. Useful for nested object schemas that are also
// registered on their own.
func (s *Schema) Named(name string) *Schema {
	s.Name = name
	return s
}

// Field looks up an object field by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredFields lists the names of the non-optional object fields.
func (s *Schema) RequiredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if !f.Optional {
			names = append(names, f.Name)
		}
	}
	return names
}

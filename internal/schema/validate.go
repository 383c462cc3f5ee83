package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Issue is one offending field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation. It is an expected,
// recoverable outcome: callers re-prompt the user or the model.
type ValidationError struct {
	Schema string  `json:"schema"`
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.Field + ": " + is.Message
	}
	name := e.Schema
	if name == "" {
		name = "value"
	}
	return fmt.Sprintf("%s failed validation: %s", name, strings.Join(parts, "; "))
}

// Fields returns the offending field paths.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		out[i] = is.Field
	}
	return out
}

// Has reports whether field is among the offending fields.
func (e *ValidationError) Has(field string) bool {
	for _, is := range e.Issues {
		if is.Field == field {
			return true
		}
	}
	return false
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

const rootField = "(root)"

// Validate checks raw against s. raw may be JSON bytes, a decoded JSON value or
// any Go value that marshals to JSON. On success the returned value is the
// normalized JSON form (numbers as json.Number, defaults applied, optional nulls
// dropped) and is the only form other packages should read fields from.
func Validate(s *Schema, raw any) (any, error) {
	v, err := normalize(raw)
	if err != nil {
		return nil, &ValidationError{Schema: nameOf(s), Issues: []Issue{{Field: rootField, Message: err.Error()}}}
	}
	if s == nil {
		return v, nil
	}

	compiled, err := s.compile()
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", nameOf(s), err)
	}

	prepared := prepare(s, v)
	if err := compiled.Validate(prepared); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, &ValidationError{Schema: nameOf(s), Issues: issuesFrom(ve)}
		}
		return nil, &ValidationError{Schema: nameOf(s), Issues: []Issue{{Field: rootField, Message: err.Error()}}}
	}
	return prepared, nil
}

// Decode validates raw against s and decodes the validated value into out.
// Numeric literals are carried as json.Number throughout, so a value decodes to
// exactly the number the producer wrote.
func Decode(s *Schema, raw any, out any) error {
	v, err := Validate(s, raw)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode validated value: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode validated value: %w", err)
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		raw, err := DescribeJSON(s)
		if err != nil {
			s.compileErr = err
			return
		}
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		c.AssertFormat = true
		if err := c.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
			s.compileErr = err
			return
		}
		s.compiled, s.compileErr = c.Compile("schema.json")
	})
	return s.compiled, s.compileErr
}

func nameOf(s *Schema) string {
	if s == nil {
		return ""
	}
	return s.Name
}

// normalize turns raw into a decoded JSON value with json.Number numbers.
func normalize(raw any) (any, error) {
	var data []byte
	switch r := raw.(type) {
	case json.RawMessage:
		data = r
	case []byte:
		data = r
	default:
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("value is not representable as JSON: %w", err)
		}
		data = b
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty value")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	return v, nil
}

// prepare applies defaults, drops nulls on optional non-nullable fields and
// rewrites integral numbers on integer fields ("5.0" becomes "5").
func prepare(s *Schema, v any) any {
	if s == nil {
		return v
	}
	switch s.Type {
	case TypeObject:
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		for _, f := range s.Fields {
			val, present := out[f.Name]
			if present && val == nil && f.Optional && !f.Schema.Nullable {
				delete(out, f.Name)
				present = false
			}
			if !present {
				if f.Schema.Default != nil {
					if d, err := normalize(f.Schema.Default); err == nil {
						out[f.Name] = d
					}
				}
				continue
			}
			out[f.Name] = prepare(f.Schema, val)
		}
		return out
	case TypeArray:
		list, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = prepare(s.Items, item)
		}
		return out
	case TypeInteger:
		n, ok := v.(json.Number)
		if !ok {
			return v
		}
		if _, err := n.Int64(); err == nil {
			return n
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return v
		}
		return json.Number(strconv.FormatInt(int64(f), 10))
	}
	return v
}

var quotedRe = regexp.MustCompile(`'([^']+)'`)

func issuesFrom(ve *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		path := fieldPath(e.InstanceLocation)
		if strings.HasPrefix(e.Message, "missing propert") {
			for _, m := range quotedRe.FindAllStringSubmatch(e.Message, -1) {
				issues = append(issues, Issue{Field: joinField(path, m[1]), Message: "is required"})
			}
			return
		}
		issues = append(issues, Issue{Field: path, Message: e.Message})
	}
	walk(ve)

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	out := issues[:0]
	seen := make(map[Issue]bool, len(issues))
	for _, is := range issues {
		if seen[is] {
			continue
		}
		seen[is] = true
		out = append(out, is)
	}
	return out
}

// fieldPath converts a JSON pointer ("/dailyPlans/0/theme") into a dotted path
// ("dailyPlans[0].theme").
func fieldPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return rootField
	}
	var b strings.Builder
	for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		if _, err := strconv.Atoi(tok); err == nil {
			b.WriteString("[" + tok + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}

func joinField(parent, name string) string {
	if parent == rootField {
		return name
	}
	return parent + "." + name
}

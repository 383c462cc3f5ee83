package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedJSON is returned by ParseJSON when model text holds no JSON value.
var ErrMalformedJSON = errors.New("malformed JSON")

// codeFenceRe matches markdown code fences wrapping JSON.
var codeFenceRe = regexp.MustCompile(`(?si)^` + "```" + `(?:json)?\s*(.*?)\s*` + "```" + `$`)

// ParseJSON extracts a JSON value from model output. Models sometimes wrap the
// payload in code fences or a sentence of prose; both are tolerated.
func ParseJSON(text string) (any, error) {
	s := strings.TrimSpace(text)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		s = strings.TrimSpace(m[1])
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty output", ErrMalformedJSON)
	}
	if s[0] != '{' && s[0] != '[' {
		start := strings.IndexAny(s, "{[")
		end := strings.LastIndexAny(s, "}]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: no JSON object in output", ErrMalformedJSON)
		}
		s = s[start : end+1]
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformedJSON)
	}
	return v, nil
}

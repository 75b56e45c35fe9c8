// Package match evaluates attribute queries of the form used by boost
// filters and permission scopes: field-by-field equality, $in membership
// and $regex matches. Queries are parsed and validated once, at write time,
// so the read path never sees a malformed filter.
package match

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidQuery = errors.New("invalid query")

type Query map[string]any

// ParseQuery decodes and validates a serialized query.
func ParseQuery(raw []byte) (Query, error) {
	var q Query
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidQuery)
	}
	if err := Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks every condition in the query: operator objects may only
// hold $in, $regex and $options, and regex patterns must compile.
func Validate(q Query) error {
	for field, cond := range q {
		operators, ok := cond.(map[string]any)
		if !ok {
			continue
		}
		for op, arg := range operators {
			switch op {
			case "$in":
				if _, ok := arg.([]any); !ok {
					return fmt.Errorf("%w: %s.$in must be a list", ErrInvalidQuery, field)
				}
			case "$regex":
				pattern, ok := arg.(string)
				if !ok {
					return fmt.Errorf("%w: %s.$regex must be a string", ErrInvalidQuery, field)
				}
				if _, err := regexp.Compile(pattern); err != nil {
					return fmt.Errorf("%w: %s: %v", ErrInvalidQuery, field, err)
				}
			case "$options":
				if _, ok := arg.(string); !ok {
					return fmt.Errorf("%w: %s.$options must be a string", ErrInvalidQuery, field)
				}
			default:
				return fmt.Errorf("%w: unsupported operator %s on %s", ErrInvalidQuery, op, field)
			}
		}
	}
	return nil
}

// Evaluate reports whether attrs satisfies every condition in the query.
// An empty query matches everything.
func Evaluate(q Query, attrs map[string]any) bool {
	for field, cond := range q {
		if !evaluateField(cond, attrs[field]) {
			return false
		}
	}
	return true
}

func evaluateField(cond, value any) bool {
	operators, ok := cond.(map[string]any)
	if !ok {
		return equal(cond, value)
	}

	if list, ok := operators["$in"].([]any); ok {
		found := false
		for _, candidate := range list {
			if equal(candidate, value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if pattern, ok := operators["$regex"].(string); ok {
		if options, _ := operators["$options"].(string); strings.Contains(options, "i") {
			pattern = "(?i)" + pattern
		}
		str, ok := value.(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(pattern)
		if err != nil || !re.MatchString(str) {
			return false
		}
	}

	return true
}

func equal(want, got any) bool {
	if wn, ok := toFloat(want); ok {
		gn, ok := toFloat(got)
		return ok && wn == gn
	}
	return want == got
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

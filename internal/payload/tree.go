package payload

import (
	"encoding/json"
	"fmt"
	"time"
)

// Tree is a parsed JSON object with optional-field access. Webhook payloads
// are loosely shaped: any field may be missing, and the same event type may
// arrive with different subsets of fields depending on the action.
type Tree map[string]interface{}

// Parse decodes raw JSON into a Tree. The body must be a JSON object;
// top-level arrays and scalars are rejected.
func Parse(data []byte) (Tree, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return Tree(m), nil
}

// Get walks the path through nested objects and reports whether the value is
// present. A key that exists with a JSON null value counts as absent: the
// extraction rules treat null and undefined identically.
func (t Tree) Get(path ...string) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur interface{} = map[string]interface{}(t)
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Object returns the nested object at path.
func (t Tree) Object(path ...string) (Tree, bool) {
	v, ok := t.Get(path...)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return Tree(obj), true
}

// Array returns the array at path.
func (t Tree) Array(path ...string) ([]interface{}, bool) {
	v, ok := t.Get(path...)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	return arr, true
}

// String returns the string at path.
func (t Tree) String(path ...string) (string, bool) {
	v, ok := t.Get(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int64 returns the number at path truncated to int64. encoding/json decodes
// all JSON numbers as float64, so integral ids arrive as floats.
func (t Tree) Int64(path ...string) (int64, bool) {
	v, ok := t.Get(path...)
	if !ok {
		return 0, false
	}
	f, ok := ToFloat64(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// Float64 returns the number at path.
func (t Tree) Float64(path ...string) (float64, bool) {
	v, ok := t.Get(path...)
	if !ok {
		return 0, false
	}
	return ToFloat64(v)
}

// Bool returns the boolean at path. A false value is present, not absent.
func (t Tree) Bool(path ...string) (bool, bool) {
	v, ok := t.Get(path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Time parses the ISO-8601 timestamp string at path. GitHub emits RFC 3339
// for almost every *_at field; a bare numeric value is taken as epoch
// seconds, which a few legacy push payload fields use.
func (t Tree) Time(path ...string) (time.Time, bool) {
	v, ok := t.Get(path...)
	if !ok {
		return time.Time{}, false
	}
	switch tv := v.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339, tv)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	case float64:
		return time.Unix(int64(tv), 0).UTC(), true
	}
	return time.Time{}, false
}

// ToFloat64 coerces a numeric value to float64.
func ToFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Stringify renders a scalar the way it should appear as a measure value:
// numbers without a float suffix when integral, booleans as literals.
func Stringify(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%g", s)
	}
	return fmt.Sprintf("%v", v)
}

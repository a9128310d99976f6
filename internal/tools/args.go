package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Args is the decoded argument object of one tool call.
type Args map[string]any

// present reports whether key carries a usable value. nil and blank strings
// count as absent.
func (a Args) present(key string) bool {
	v, ok := a[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

// String returns the value at key as a string.
func (a Args) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// StringOr returns the string at key or def.
func (a Args) StringOr(key, def string) string {
	if s, ok := a.String(key); ok && s != "" {
		return s
	}
	return def
}

// ID returns the value at key as an entity id. Whole numbers of any numeric
// type are accepted.
func (a Args) ID(key string) (int64, bool) {
	return toInt64(a[key])
}

// Int returns the value at key as an integer.
func (a Args) Int(key string) (int64, bool) {
	return toInt64(a[key])
}

// Object returns the value at key as a JSON object.
func (a Args) Object(key string) (map[string]any, bool) {
	m, ok := a[key].(map[string]any)
	return m, ok
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt64(float64(n))
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// stringify renders a metadata value for the key/value side table.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool, int, int64, float64, json.Number:
		return fmt.Sprint(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// decodeAny unmarshals a raw payload into generic JSON values. Anything that
// cannot be decoded at all comes back as nil, which every caller treats as
// the empty variant.
func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// reparse opportunistically decodes string values that are themselves
// serialized JSON. The backend has shipped double-encoded fields before; when
// the inner decode fails the raw string is kept untouched.
func reparse(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return v
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return v
	}
	return decoded
}

func pick(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickAny(m map[string]any, keys ...string) any {
	v, _ := pick(m, keys...)
	return v
}

func pickString(m map[string]any, keys ...string) string {
	v, ok := pick(m, keys...)
	if !ok {
		return ""
	}
	return coerceString(v)
}

func pickBool(m map[string]any, keys ...string) (bool, bool) {
	v, ok := pick(m, keys...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func pickNumber(m map[string]any, keys ...string) (float64, bool) {
	v, ok := pick(m, keys...)
	if !ok {
		return 0, false
	}
	return coerceNumber(v)
}

func pickIntPtr(m map[string]any, keys ...string) *int {
	f, ok := pickNumber(m, keys...)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}

// coerceString renders any decoded JSON value as display text. Composite
// values fall back to their compact JSON encoding.
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	}
}

func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// stringList flattens a decoded JSON array into trimmed, non-empty strings.
func stringList(v any) []string {
	items, ok := reparse(v).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sortedKeys gives deterministic iteration order for keyed-map payloads.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func citationFrom(v any) *Citation {
	m, ok := reparse(v).(map[string]any)
	if !ok {
		return nil
	}
	c := Citation{
		Page:        pickIntPtr(m, "page"),
		StartOffset: pickIntPtr(m, "start_offset", "startOffset"),
		EndOffset:   pickIntPtr(m, "end_offset", "endOffset"),
	}
	if c.Page == nil && c.StartOffset == nil && c.EndOffset == nil {
		return nil
	}
	return &c
}

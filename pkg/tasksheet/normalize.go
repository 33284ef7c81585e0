package tasksheet

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"time"
)

// NormalizeValue coerces a raw cell value into its canonical form so
// that values read from different sheets (or typed by a human as plain
// text) compare equal when they mean the same thing:
//
//   - floats that are mathematically integral collapse to int64
//   - timestamps become an ISO-8601 string
//   - strings are trimmed; the empty string becomes nil
//   - "true"/"false" (case-insensitive) become booleans
//   - any other string that parses as a JSON number, boolean, array, or
//     object is replaced by the parsed value
func NormalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return normalizeNumeric(v)
	case float32:
		return normalizeNumeric(float64(v))
	case time.Time:
		return v.Format(time.RFC3339)
	case string:
		return normalizeString(v)
	default:
		return value
	}
}

func normalizeNumeric(f float64) any {
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) &&
		f >= math.MinInt64 && f <= math.MaxInt64 {
		return int64(f)
	}
	return f
}

func normalizeString(s string) any {
	stripped := strings.TrimSpace(s)
	if stripped == "" {
		return nil
	}
	switch strings.ToLower(stripped) {
	case "true":
		return true
	case "false":
		return false
	}
	if parsed, ok := parseJSONValue(stripped); ok {
		return parsed
	}
	return stripped
}

// parseJSONValue reports whether s is a JSON number, boolean, array, or
// object. JSON strings and null intentionally do not qualify: quoting a
// value should not change it, and "null" typed into a cell stays text.
func parseJSONValue(s string) (any, bool) {
	decoder := json.NewDecoder(strings.NewReader(s))
	decoder.UseNumber()
	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return nil, false
	}
	if decoder.More() {
		return nil, false
	}
	switch parsed.(type) {
	case map[string]any, []any, json.Number, bool:
		return canonicalizeParsed(parsed), true
	}
	return nil, false
}

func canonicalizeParsed(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return normalizeNumeric(f)
		}
		return v.String()
	case []any:
		for i := range v {
			v[i] = canonicalizeParsed(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = canonicalizeParsed(v[k])
		}
		return v
	default:
		return value
	}
}

// normalizedEqual compares two already-normalized values, including
// parsed JSON structures.
func normalizedEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// stripControlChars removes characters that are illegal in spreadsheet
// cell text, keeping tab, newline, and carriage return. Exported values
// must pass through this uniformly so a sanitized value still compares
// equal to itself after a round trip.
func stripControlChars(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		if r == 0x7f {
			continue
		}
		buf.WriteRune(r)
	}
	return buf.String()
}

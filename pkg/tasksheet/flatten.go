// Package tasksheet implements the round trip between nested task records
// and editable spreadsheet rows: flattening, header resolution, shadow
// export, change detection, reconciliation, and audit marking.
package tasksheet

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// KeySeparator joins nested record keys into dotted column headers.
const KeySeparator = "."

// FlatRow is a single-level mapping from dotted-path key to a scalar
// value. Lists are carried as their compact JSON encoding.
type FlatRow map[string]any

// Flatten converts a nested record into a FlatRow using dot notation.
// List values at any depth are serialized as compact JSON so they occupy
// a single column; values that cannot be encoded fall back to their
// display string instead of failing the whole row.
func Flatten(record map[string]any) FlatRow {
	flat := make(FlatRow)
	flattenInto(flat, "", record)
	return flat
}

func flattenInto(flat FlatRow, prefix string, record map[string]any) {
	for key, value := range record {
		flatKey := key
		if prefix != "" {
			flatKey = prefix + KeySeparator + key
		}
		switch v := value.(type) {
		case map[string]any:
			flattenInto(flat, flatKey, v)
		default:
			if isList(value) {
				flat[flatKey] = encodeList(value)
				continue
			}
			flat[flatKey] = value
		}
	}
}

func isList(value any) bool {
	if value == nil {
		return false
	}
	kind := reflect.ValueOf(value).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

func encodeList(value any) any {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}

// Unflatten rebuilds a nested record from a FlatRow. Keys whose value is
// nil are skipped entirely: a blank cell means "not set", so it never
// reintroduces a field into the rebuilt record. This keeps sparse edited
// rows usable as partial updates.
func Unflatten(flat FlatRow) map[string]any {
	record := make(map[string]any)
	for key, value := range flat {
		if value == nil {
			continue
		}
		parts := splitKey(key)
		if len(parts) == 0 {
			continue
		}
		cursor := record
		for _, part := range parts[:len(parts)-1] {
			next, ok := cursor[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cursor[part] = next
			}
			cursor = next
		}
		cursor[parts[len(parts)-1]] = value
	}
	return record
}

func splitKey(key string) []string {
	var parts []string
	for _, part := range strings.Split(key, KeySeparator) {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

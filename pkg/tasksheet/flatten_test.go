package tasksheet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlattenNestedRecord(t *testing.T) {
	record := map[string]any{
		"Id":   "1",
		"Name": "A",
		"Assign": map[string]any{
			"UserId": "u1",
			"Load":   1.5,
		},
		"Schedule": map[string]any{
			"Plan": map[string]any{
				"StartDate": "2024-04-01",
			},
		},
	}

	flat := Flatten(record)

	require.Equal(t, FlatRow{
		"Id":                      "1",
		"Name":                    "A",
		"Assign.UserId":           "u1",
		"Assign.Load":             1.5,
		"Schedule.Plan.StartDate": "2024-04-01",
	}, flat)
}

func TestFlattenListAsJSON(t *testing.T) {
	flat := Flatten(map[string]any{
		"Id":      "1",
		"Assigns": []any{"u1", "u2"},
		"Points":  []int{1, 2, 3},
	})

	require.Equal(t, `["u1","u2"]`, flat["Assigns"])
	require.Equal(t, `[1,2,3]`, flat["Points"])

	// The canonical encoding re-parses to the original contents.
	var assigns []string
	require.NoError(t, json.Unmarshal([]byte(flat["Assigns"].(string)), &assigns))
	require.Equal(t, []string{"u1", "u2"}, assigns)
}

func TestFlattenListFallbackToString(t *testing.T) {
	flat := Flatten(map[string]any{
		"Bad": []any{func() {}},
	})

	// Non-encodable lists degrade to a display string instead of
	// failing the whole row.
	require.IsType(t, "", flat["Bad"])
	require.NotEmpty(t, flat["Bad"])
}

func TestUnflattenRebuildsNesting(t *testing.T) {
	record := Unflatten(FlatRow{
		"Id":            "1",
		"Assign.UserId": "u1",
		"Assign.Load":   int64(2),
	})

	require.Equal(t, map[string]any{
		"Id": "1",
		"Assign": map[string]any{
			"UserId": "u1",
			"Load":   int64(2),
		},
	}, record)
}

func TestUnflattenSkipsNilValues(t *testing.T) {
	record := Unflatten(FlatRow{
		"Id":          "1",
		"Description": nil,
		"Assign.Note": nil,
	})

	// A blank cell means "not set": nil never reintroduces a field.
	require.Equal(t, map[string]any{"Id": "1"}, record)
}

func TestUnflattenDropsEmptySegments(t *testing.T) {
	record := Unflatten(FlatRow{
		"..":    "ignored",
		"A..B":  "v",
		"":      "ignored",
		"Plain": 7,
	})

	require.Equal(t, map[string]any{
		"A":     map[string]any{"B": "v"},
		"Plain": 7,
	}, record)
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	record := map[string]any{
		"Id":   "42",
		"Done": true,
		"Assign": map[string]any{
			"UserId": "u1",
			"Note":   nil,
		},
	}

	rebuilt := Unflatten(Flatten(record))

	require.Equal(t, map[string]any{
		"Id":   "42",
		"Done": true,
		"Assign": map[string]any{
			"UserId": "u1",
		},
	}, rebuilt)
}

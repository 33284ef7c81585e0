package tasksheet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Coordinate addresses a cell by 1-based row and column.
type Coordinate struct {
	Row int
	Col int
}

// TaskRow is the reconciliation unit: one data row of the live sheet
// that shows evidence of a human edit. Values holds the full normalized
// flat value set for the row, keyed by header, not just the changed
// cells; the reconciler needs the identifier fields even when they are
// unchanged.
type TaskRow struct {
	RowIndex     int
	TaskID       string
	ProjectID    string
	Values       FlatRow
	ChangedCells []Coordinate
}

// DetectOptions configures change detection.
type DetectOptions struct {
	// SheetName is the live sheet to scan. Defaults to "tasks".
	SheetName string
	// ShadowSheetName is the diff baseline. When the sheet is absent,
	// detection falls back to explicit color markers only.
	ShadowSheetName string
	// Palette supplies the recognized "edited" color encodings.
	Palette Palette
}

// DefaultDetectOptions returns the standard detection configuration.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		SheetName:       "tasks",
		ShadowSheetName: "tasks_original",
		Palette:         DefaultPalette(),
	}
}

// Detect scans the live sheet and returns one TaskRow per data row with
// at least one changed cell. A cell counts as changed when its fill
// matches a recognized edited encoding, or, if the shadow sheet exists,
// when its normalized value differs from the shadow value at the same
// coordinate. Rows with no non-empty cell are ignored even if marked.
//
// With no shadow sheet and no marked cell anywhere the result is empty,
// which callers should treat as "nothing to import".
func Detect(f *excelize.File, opts DetectOptions) ([]TaskRow, error) {
	if !HasSheet(f, opts.SheetName) {
		return nil, newDocumentFormatError(opts.SheetName, ErrSheetMissing)
	}
	rows, err := f.GetRows(opts.SheetName)
	if err != nil {
		return nil, newDocumentFormatError(opts.SheetName, err)
	}
	if len(rows) == 0 {
		return nil, newDocumentFormatError(opts.SheetName, ErrHeaderRowMissing)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var shadow [][]string
	shadowPresent := HasSheet(f, opts.ShadowSheetName)
	if shadowPresent {
		shadow, err = f.GetRows(opts.ShadowSheetName)
		if err != nil {
			return nil, newDocumentFormatError(opts.ShadowSheetName, err)
		}
	}

	var detected []TaskRow
	for i := 1; i < len(rows); i++ {
		rowNum := i + 1
		values := make(FlatRow)
		var changed []Coordinate
		hasValue := false

		for col, header := range headers {
			if header == "" {
				continue
			}
			raw := cellAt(rows, i, col)
			if raw != "" {
				hasValue = true
			}
			coord := Coordinate{Row: rowNum, Col: col + 1}
			normalized := NormalizeValue(raw)
			values[header] = normalized

			if isMarkedEdited(f, opts, coord) {
				changed = append(changed, coord)
			} else if shadowPresent {
				original := NormalizeValue(cellAt(shadow, i, col))
				if !normalizedEqual(normalized, original) {
					changed = append(changed, coord)
				}
			}
		}

		if !hasValue || len(changed) == 0 {
			continue
		}
		detected = append(detected, TaskRow{
			RowIndex:     rowNum,
			TaskID:       identifierValue(values, "Id", "ID", "TaskId"),
			ProjectID:    identifierValue(values, "ProjectId", "project_id"),
			Values:       values,
			ChangedCells: changed,
		})
	}
	return detected, nil
}

// HasSheet reports whether the workbook contains a sheet by name.
func HasSheet(f *excelize.File, name string) bool {
	return slices.Contains(f.GetSheetList(), name)
}

func cellAt(rows [][]string, row, col int) string {
	if row >= len(rows) || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}

func isMarkedEdited(f *excelize.File, opts DetectOptions, coord Coordinate) bool {
	cell, err := excelize.CoordinatesToCellName(coord.Col, coord.Row)
	if err != nil {
		return false
	}
	return opts.Palette.IsEdited(cellFillColors(f, opts.SheetName, cell))
}

// identifierValue pulls a trimmed string identifier from the row's
// values, tolerating the capitalization variants remote records use.
func identifierValue(values FlatRow, keys ...string) string {
	for _, key := range keys {
		value, ok := values[key]
		if !ok || value == nil {
			continue
		}
		id := strings.TrimSpace(fmt.Sprint(value))
		if id != "" {
			return id
		}
	}
	return ""
}

package tasksheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// openExported writes the sample workbook and reopens it the way the
// import path would see it after a human edit session.
func openExported(t *testing.T) *excelize.File {
	t.Helper()
	path := exportSample(t, t.TempDir())
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func fillCell(t *testing.T, f *excelize.File, sheet, cell, rgb string) {
	t.Helper()
	styleID, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{rgb}},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, cell, cell, styleID))
}

func TestDetectNothingChanged(t *testing.T) {
	f := openExported(t)

	rows, err := Detect(f, DefaultDetectOptions())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDetectShadowDiffWithoutMarker(t *testing.T) {
	f := openExported(t)
	require.NoError(t, f.SetCellValue("tasks", "B2", "Changed"))

	rows, err := Detect(f, DefaultDetectOptions())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Equal(t, 2, row.RowIndex)
	require.Equal(t, "1", row.TaskID)
	require.Equal(t, "P1", row.ProjectID)
	require.Equal(t, "Changed", row.Values["Name"])
	require.Equal(t, []Coordinate{{Row: 2, Col: 2}}, row.ChangedCells)
}

func TestDetectExplicitMarkerWithoutValueChange(t *testing.T) {
	f := openExported(t)
	fillCell(t, f, "tasks", "B3", "FFFF00")

	rows, err := Detect(f, DefaultDetectOptions())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 3, rows[0].RowIndex)
	require.Equal(t, []Coordinate{{Row: 3, Col: 2}}, rows[0].ChangedCells)
}

func TestDetectMarkerRecognizesAlternateEncodings(t *testing.T) {
	for _, rgb := range []string{"FFFFFF00", "FFFF00"} {
		t.Run(rgb, func(t *testing.T) {
			f := openExported(t)
			fillCell(t, f, "tasks", "A2", rgb)

			rows, err := Detect(f, DefaultDetectOptions())
			require.NoError(t, err)
			require.Len(t, rows, 1)
		})
	}
}

func TestDetectCarriesFullRowValues(t *testing.T) {
	f := openExported(t)
	require.NoError(t, f.SetCellValue("tasks", "B2", "Changed"))

	rows, err := Detect(f, DefaultDetectOptions())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Unchanged fields ride along so the reconciler sees identifiers
	// and the full partial payload.
	require.Equal(t, "P1", rows[0].Values["ProjectId"])
	require.Equal(t, []any{"u1", "u2"}, rows[0].Values["Assigns"])
}

func TestDetectWithoutShadowRequiresMarker(t *testing.T) {
	f := openExported(t)
	require.NoError(t, f.DeleteSheet("tasks_original"))
	require.NoError(t, f.SetCellValue("tasks", "B2", "Changed"))

	rows, err := Detect(f, DefaultDetectOptions())
	require.NoError(t, err)
	require.Empty(t, rows)

	fillCell(t, f, "tasks", "B2", "FFFF00")
	rows, err = Detect(f, DefaultDetectOptions())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestDetectIgnoresBlankRows(t *testing.T) {
	f := openExported(t)
	// A stray fully blank row stays ignored even when spuriously marked.
	fillCell(t, f, "tasks", "C9", "FFFF00")

	rows, err := Detect(f, DefaultDetectOptions())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDetectNumericEquivalenceIsNotAChange(t *testing.T) {
	dir := t.TempDir()
	tasks := []map[string]any{{"Id": "1", "ProjectId": "P1", "Load": 5.0}}
	path, err := WriteWorkbook(tasks, "Numeric", nil, dir, DefaultExportOptions())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Retyping the same number as text normalizes back to the same value.
	require.NoError(t, f.SetCellValue("tasks", "C2", " 5 "))
	rows, err := Detect(f, DefaultDetectOptions())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDetectMissingTasksSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := Detect(f, DefaultDetectOptions())
	var formatErr *DocumentFormatError
	require.ErrorAs(t, err, &formatErr)
	require.ErrorIs(t, err, ErrSheetMissing)
	require.Equal(t, "tasks", formatErr.Sheet)
}

func TestDetectMissingHeaderRow(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("tasks")
	require.NoError(t, err)

	_, err = Detect(f, DefaultDetectOptions())
	require.True(t, errors.Is(err, ErrHeaderRowMissing))
}

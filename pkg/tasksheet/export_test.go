package tasksheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTasks() []map[string]any {
	return []map[string]any{
		{
			"Id":        "1",
			"Name":      "A",
			"ProjectId": "P1",
			"Assigns":   []any{"u1", "u2"},
		},
		{
			"Id":        "2",
			"Name":      "B",
			"ProjectId": "P1",
			"Assign": map[string]any{
				"UserId": "u3",
			},
		},
	}
}

func exportSample(t *testing.T, dir string) string {
	t.Helper()
	path, err := WriteWorkbook(sampleTasks(), "Alpha", [][]any{{"Id", "P1"}, {"Name", "Alpha"}},
		dir, DefaultExportOptions())
	require.NoError(t, err)
	return path
}

func TestWriteWorkbookLayout(t *testing.T) {
	dir := t.TempDir()
	path := exportSample(t, dir)
	require.Equal(t, filepath.Join(dir, "tasks_Alpha.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Equal(t, []string{"project", "tasks", "tasks_original"}, sheets)

	rows, err := f.GetRows("tasks")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Id", "Name", "ProjectId", "Assign.UserId", "Assigns"}, rows[0])
	require.Equal(t, "1", rows[1][0])
	require.Equal(t, "A", rows[1][1])
	require.Equal(t, `["u1","u2"]`, rows[1][4])
	require.Equal(t, "u3", rows[2][3])

	projectRows, err := f.GetRows("project")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Id", "P1"}, {"Name", "Alpha"}}, projectRows)
}

func TestWriteWorkbookShadowMatchesLive(t *testing.T) {
	path := exportSample(t, t.TempDir())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	live, err := f.GetRows("tasks")
	require.NoError(t, err)
	shadow, err := f.GetRows("tasks_original")
	require.NoError(t, err)
	require.Equal(t, live, shadow)

	visible, err := f.GetSheetVisible("tasks_original")
	require.NoError(t, err)
	require.False(t, visible)
}

func TestWriteWorkbookCollisionSuffix(t *testing.T) {
	dir := t.TempDir()
	first := exportSample(t, dir)
	second := exportSample(t, dir)

	require.Equal(t, filepath.Join(dir, "tasks_Alpha.xlsx"), first)
	require.Equal(t, filepath.Join(dir, "tasks_Alpha (1).xlsx"), second)
}

func TestWriteWorkbookSanitizesProjectName(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteWorkbook(nil, `Al/pha:`, nil, dir, DefaultExportOptions())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "tasks_Al_pha_.xlsx"), path)
}

func TestWriteWorkbookStripsControlChars(t *testing.T) {
	dir := t.TempDir()
	tasks := []map[string]any{{"Id": "1", "Name": "A\x01B"}}
	path, err := WriteWorkbook(tasks, "Ctrl", nil, dir, DefaultExportOptions())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Sanitization is uniform across live and shadow, so the value
	// still compares equal to itself on import.
	name, err := f.GetCellValue("tasks", "B2")
	require.NoError(t, err)
	require.Equal(t, "AB", name)
	shadowName, err := f.GetCellValue("tasks_original", "B2")
	require.NoError(t, err)
	require.Equal(t, "AB", shadowName)
}

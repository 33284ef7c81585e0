package tasksheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportOptions configures the shadow export.
type ExportOptions struct {
	// SheetName is the editable live sheet. Defaults to "tasks".
	SheetName string
	// ShadowSheetName is the hidden pristine copy used as the diff
	// baseline on import. Defaults to "tasks_original".
	ShadowSheetName string
	// ProjectSheetName holds the project context rows and is placed
	// first in the workbook. Defaults to "project".
	ProjectSheetName string
	// Header controls column ordering.
	Header HeaderOptions
	// Palette supplies the "edited" highlight color.
	Palette Palette
	// HighlightEdits adds conditional formatting that renders any live
	// cell differing from its shadow counterpart in the edited color.
	// Presentation aid only; the detector recomputes independently.
	HighlightEdits bool
}

// DefaultExportOptions returns the standard export configuration.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		SheetName:        "tasks",
		ShadowSheetName:  "tasks_original",
		ProjectSheetName: "project",
		Header:           DefaultHeaderOptions(),
		Palette:          DefaultPalette(),
		HighlightEdits:   true,
	}
}

// WriteWorkbook writes tasks to a new workbook in outDir and returns the
// path written. The workbook holds three sheets: the project context
// sheet first, the editable live sheet, and a hidden shadow sheet with
// an identical header+rows copy. The file is named after the sanitized
// project name and never clobbers an existing file.
func WriteWorkbook(tasks []map[string]any, projectName string, projectRows [][]any, outDir string, opts ExportOptions) (string, error) {
	flat := make([]FlatRow, 0, len(tasks))
	for _, task := range tasks {
		flat = append(flat, Flatten(task))
	}
	headers := CollectHeaders(flat, opts.Header)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", opts.ProjectSheetName); err != nil {
		return "", err
	}
	if err := writeRows(f, opts.ProjectSheetName, projectRows, 1); err != nil {
		return "", err
	}

	for _, sheet := range []string{opts.SheetName, opts.ShadowSheetName} {
		if _, err := f.NewSheet(sheet); err != nil {
			return "", err
		}
		if err := writeTaskSheet(f, sheet, headers, flat); err != nil {
			return "", err
		}
	}
	if err := f.SetSheetVisible(opts.ShadowSheetName, false); err != nil {
		return "", err
	}

	if len(headers) > 0 {
		if err := lockStructure(f, opts.SheetName, len(headers), len(flat)+1); err != nil {
			return "", err
		}
		if opts.HighlightEdits && len(flat) > 0 {
			if err := highlightEdits(f, opts, len(headers), len(flat)+1); err != nil {
				return "", err
			}
		}
	}

	fileName := ExportFilePrefix + SanitizeFileName(projectName) + ".xlsx"
	path := NextAvailablePath(outDir, fileName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}
	return path, nil
}

func writeTaskSheet(f *excelize.File, sheet string, headers []string, rows []FlatRow) error {
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	grid := make([][]any, 0, len(rows)+1)
	grid = append(grid, headerRow)
	for _, row := range rows {
		cells := make([]any, len(headers))
		for i, h := range headers {
			cells[i] = row[h]
		}
		grid = append(grid, cells)
	}
	return writeRows(f, sheet, grid, 1)
}

func writeRows(f *excelize.File, sheet string, rows [][]any, startRow int) error {
	for r, row := range rows {
		for c, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, startRow+r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, sanitizeCellValue(value)); err != nil {
				return err
			}
		}
	}
	return nil
}

// lockStructure leaves cell values editable but disables row/column
// inserts, deletes, and sorting. The detector depends on row and column
// positions staying stable between export and re-import.
func lockStructure(f *excelize.File, sheet string, cols, lastRow int) error {
	unlocked, err := f.NewStyle(&excelize.Style{
		Protection: &excelize.Protection{Locked: false},
	})
	if err != nil {
		return err
	}
	if lastRow > 1 {
		first, err := excelize.CoordinatesToCellName(1, 2)
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(cols, lastRow)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, first, last, unlocked); err != nil {
			return err
		}
	}
	return f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
		SelectLockedCells:   true,
		SelectUnlockedCells: true,
		FormatCells:         true,
		FormatColumns:       true,
		FormatRows:          true,
		AutoFilter:          true,
	})
}

// highlightEdits marks live cells that differ from the shadow sheet via
// conditional formatting evaluated by the spreadsheet viewer.
func highlightEdits(f *excelize.File, opts ExportOptions, cols, lastRow int) error {
	edited := opts.Palette.EditedRGB
	if len(edited) == 0 {
		return nil
	}
	styleID, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{rgbComponent(edited[0])}},
	})
	if err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, 2)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, lastRow)
	if err != nil {
		return err
	}
	criteria := fmt.Sprintf(`%s<>INDIRECT("%s!"&ADDRESS(ROW(),COLUMN()))`, first, opts.ShadowSheetName)
	return f.SetConditionalFormat(opts.SheetName, first+":"+last, []excelize.ConditionalFormatOptions{
		{Type: "formula", Criteria: criteria, Format: &styleID},
	})
}

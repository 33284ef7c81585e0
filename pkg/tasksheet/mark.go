package tasksheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ApplyOutcomeMarks recolors each result row's changed cells with the
// palette's success or failure encoding. Local and remote failures are
// marked identically; the distinction lives in the report.
func ApplyOutcomeMarks(f *excelize.File, sheet string, results []RowResult, palette Palette) error {
	styles := make(map[CellMark]int)
	for _, result := range results {
		mark := MarkRejected
		if result.Succeeded() {
			mark = MarkAccepted
		}
		styleID, ok := styles[mark]
		if !ok {
			rgb, valid := palette.MarkColor(mark)
			if !valid {
				continue
			}
			var err error
			styleID, err = solidFillStyle(f, rgb)
			if err != nil {
				return err
			}
			styles[mark] = styleID
		}
		for _, coord := range result.Row.ChangedCells {
			cell, err := excelize.CoordinatesToCellName(coord.Col, coord.Row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
				return err
			}
		}
	}
	return nil
}

// SaveResult persists the audited workbook next to the original under
// the derived result name and returns the path written. The original
// file is left untouched so the pre-reconciliation state stays
// recoverable.
func SaveResult(f *excelize.File, originalPath string) (string, error) {
	path := ResultPath(originalPath)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}
	return path, nil
}

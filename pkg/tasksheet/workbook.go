package tasksheet

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ResultSuffix is appended to a workbook's stem when the reconciled
// document is saved. The input file is never overwritten.
const ResultSuffix = "_result"

// ExportFilePrefix starts every exported workbook's file name.
const ExportFilePrefix = "tasks_"

// OpenDocument opens a workbook for the import path. Embedded macro
// content in .xlsm files survives the open/save round trip, so a
// templated document comes back untouched apart from cell edits.
func OpenDocument(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return f, nil
}

var invalidFileNameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// SanitizeFileName replaces characters invalid on common filesystems and
// trims trailing dots and spaces. An empty result falls back to "project".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = invalidFileNameChars.ReplaceAllString(name, "_")
	name = strings.TrimRight(name, " .")
	if name == "" {
		return "project"
	}
	return name
}

// NextAvailablePath joins dir and fileName, appending " (n)" before the
// extension until the path does not exist yet.
func NextAvailablePath(dir, fileName string) string {
	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	candidate := filepath.Join(dir, fileName)
	for n := 1; pathExists(candidate); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
	}
	return candidate
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ResultPath derives the output path for a reconciled workbook:
// the original stem plus ResultSuffix, same directory and extension.
func ResultPath(originalPath string) string {
	dir := filepath.Dir(originalPath)
	base := filepath.Base(originalPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+ResultSuffix+ext)
}

// cellFillColors reads the fill color tokens of a cell. Only solid
// pattern fills count; anything else reads as unmarked.
func cellFillColors(f *excelize.File, sheet, cell string) []string {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return nil
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return nil
	}
	if style.Fill.Type != "pattern" || style.Fill.Pattern != 1 {
		return nil
	}
	return style.Fill.Color
}

// solidFillStyle builds a solid-fill style for an RGB color, reusing
// excelize's style table.
func solidFillStyle(f *excelize.File, rgb string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{rgbComponent(rgb)}},
	})
}

// sanitizeCellValue strips control characters from string values before
// they are written to any sheet. Applied uniformly to context, live, and
// shadow cells so sanitized values still compare equal to themselves.
func sanitizeCellValue(value any) any {
	if s, ok := value.(string); ok {
		return stripControlChars(s)
	}
	return value
}

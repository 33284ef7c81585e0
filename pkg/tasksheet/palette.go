package tasksheet

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellMark is the per-cell audit state encoded as a fill color on the
// live sheet.
type CellMark int

const (
	// MarkUnmarked means the cell carries no recognized state color.
	MarkUnmarked CellMark = iota
	// MarkEdited flags a cell as changed by a human, either colored
	// explicitly or inferred from the shadow diff.
	MarkEdited
	// MarkAccepted is written after the cell's row reconciled successfully.
	MarkAccepted
	// MarkRejected is written after the cell's row failed to reconcile.
	MarkRejected
)

// Palette maps cell marks to concrete color encodings. Different
// spreadsheet producers encode the same visual yellow differently, so
// the edited set holds several RGB values plus legacy indexed palette
// ids; keep it configurable rather than baked into the detector.
type Palette struct {
	// EditedRGB holds ARGB/RGB hex encodings recognized as "edited".
	EditedRGB []string
	// EditedIndexed holds legacy indexed-palette ids recognized as "edited".
	EditedIndexed []int
	// SuccessRGB is written to changed cells of rows that reconciled.
	SuccessRGB string
	// FailureRGB is written to changed cells of rows that failed.
	FailureRGB string
}

// DefaultPalette returns the encodings used by known producers of the
// exported workbooks.
func DefaultPalette() Palette {
	return Palette{
		EditedRGB:     []string{"FFFFFF00", "FFFF00", "00FFFF00"},
		EditedIndexed: []int{5, 6, 44},
		SuccessRGB:    "FF00B0F0",
		FailureRGB:    "FFFF0000",
	}
}

// IsEdited reports whether any of the fill color tokens read from a cell
// matches a recognized "edited" encoding. Tokens compare on their RGB
// component so that ARGB and bare RGB forms of the same color agree.
func (p Palette) IsEdited(colors []string) bool {
	for _, color := range colors {
		tail := rgbComponent(color)
		if tail == "" {
			continue
		}
		for _, edited := range p.EditedRGB {
			if tail == rgbComponent(edited) {
				return true
			}
		}
		for _, index := range p.EditedIndexed {
			if tail == indexedRGB(index) {
				return true
			}
		}
	}
	return false
}

// MarkColor returns the RGB written for a reconciliation outcome mark.
// Only accepted and rejected marks are ever written back.
func (p Palette) MarkColor(mark CellMark) (string, bool) {
	switch mark {
	case MarkAccepted:
		return p.SuccessRGB, true
	case MarkRejected:
		return p.FailureRGB, true
	default:
		return "", false
	}
}

// indexedRGB resolves a legacy indexed palette id to its default RGB.
func indexedRGB(index int) string {
	if index < 0 || index >= len(excelize.IndexedColorMapping) {
		return ""
	}
	return strings.ToUpper(excelize.IndexedColorMapping[index])
}

// rgbComponent uppercases a hex color and drops the alpha prefix of
// 8-digit ARGB forms.
func rgbComponent(color string) string {
	color = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(color), "#"))
	if len(color) == 8 {
		return color[2:]
	}
	if len(color) == 6 {
		return color
	}
	return ""
}

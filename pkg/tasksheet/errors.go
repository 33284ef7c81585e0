package tasksheet

import (
	"errors"
	"fmt"
)

// ErrSheetMissing indicates the workbook lacks an expected sheet.
var ErrSheetMissing = errors.New("sheet missing")

// ErrHeaderRowMissing indicates the live sheet has no header row.
var ErrHeaderRowMissing = errors.New("header row missing")

// DocumentFormatError reports a workbook that cannot be processed
// because its structure does not match an exported task document.
type DocumentFormatError struct {
	Sheet string
	Err   error
}

func (e *DocumentFormatError) Error() string {
	return fmt.Sprintf("document format error in sheet %q: %v", e.Sheet, e.Err)
}

func (e *DocumentFormatError) Unwrap() error {
	return e.Err
}

func newDocumentFormatError(sheet string, err error) *DocumentFormatError {
	return &DocumentFormatError{Sheet: sheet, Err: err}
}

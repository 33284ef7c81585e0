// Package main provides the taskcopy CLI: export iQUAVIS tasks to an
// Excel workbook for offline bulk editing, and import edited workbooks
// back as partial task updates.
package main

import "os"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

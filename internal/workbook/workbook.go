// Package workbook abstracts the spreadsheet input layer. The pipeline only
// needs named sheets of rows and columns; how those sheets were produced
// (Excel export, database dump) is outside its scope. The shipped csvdir
// implementation reads a directory holding one CSV file per sheet, which is
// how cohort workbooks arrive after the upstream xlsx-to-csv split.
package workbook

import (
	"errors"

	"srtingest/internal/table"
)

// ErrNoSuchSheet reports a sheet name the workbook does not contain.
var ErrNoSuchSheet = errors.New("workbook: no such sheet")

// Sheet is one named grid of the workbook.
type Sheet struct {
	Name string
	Data *table.Table
}

// Reader provides access to a workbook's sheets.
type Reader interface {
	// SheetNames lists available sheets in workbook order.
	SheetNames() ([]string, error)
	// Sheet loads one sheet by name. Unknown names return ErrNoSuchSheet.
	Sheet(name string) (*Sheet, error)
}

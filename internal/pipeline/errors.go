package pipeline

import (
	"fmt"

	"srtingest/internal/table"
)

// SchemaError is the stage boundary contract error. It originates in the
// table reader; the alias keeps the whole error taxonomy reachable from this
// package.
type SchemaError = table.SchemaError

// FormatError describes one unparseable cell in a column recognized as
// holding dates. It is recovered locally: the cell is nulled and the error
// surfaces as a warning.
type FormatError struct {
	Sheet  string
	Column string
	Row    int
	Value  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("sheet %s row %d: column %s: unparseable date %q, value nulled", e.Sheet, e.Row, e.Column, e.Value)
}

// MappingError reports an inferred data type with no SRT equivalent. Always
// fatal; types are never silently defaulted.
type MappingError struct {
	FieldName string
	DataType  string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("field %s: inferred type %q has no SRT mapping", e.FieldName, e.DataType)
}

// Package table provides the in-memory tabular model shared by all pipeline
// stages: ordered named columns over rows of nullable string cells, with
// header-checked CSV input and deterministic CSV output.
package table

import (
	"fmt"
	"strings"
)

// Value is a single cell. Null cells carry no payload; Raw is always the
// original text for non-null cells.
type Value struct {
	Raw  string
	Null bool
}

// String constructs a non-null cell.
func String(raw string) Value { return Value{Raw: raw} }

// Null constructs an explicit null cell.
func Null() Value { return Value{Null: true} }

// nullSpellings are cell texts treated as explicit nulls on read. Mirrors the
// NA vocabulary the upstream cohort exports use.
var nullSpellings = map[string]struct{}{
	"":    {},
	"NA":  {},
	"N/A": {},
}

// Parse converts raw CSV cell text into a Value, folding the known null
// spellings (and whitespace-only cells) into explicit nulls.
func Parse(raw string) Value {
	if _, ok := nullSpellings[strings.TrimSpace(raw)]; ok {
		return Null()
	}
	return String(raw)
}

// Encode renders a Value back into CSV cell text. Nulls become empty cells.
func (v Value) Encode() string {
	if v.Null {
		return ""
	}
	return v.Raw
}

// Equal reports cell equality. All nulls compare equal regardless of Raw.
func (v Value) Equal(o Value) bool {
	if v.Null || o.Null {
		return v.Null == o.Null
	}
	return v.Raw == o.Raw
}

// Table is an ordered collection of named columns over rows of cells.
// Column order is fixed at construction and preserved through CSV round trips.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New constructs an empty table with the given column order. Column names
// must be unique and non-empty.
func New(columns ...string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("column %d: empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}
	return &Table{columns: append([]string(nil), columns...), index: index}, nil
}

// MustNew is New for statically known column sets.
func MustNew(columns ...string) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds one row. The cell count must match the column count.
func (t *Table) Append(cells ...Value) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	t.rows = append(t.rows, append([]Value(nil), cells...))
	return nil
}

// Row returns the i-th row. The returned slice must not be mutated.
func (t *Table) Row(i int) []Value { return t.rows[i] }

// Cell returns the cell at row i, named column. It panics on unknown columns;
// callers are expected to have validated the schema on read.
func (t *Table) Cell(i int, column string) Value {
	pos, ok := t.index[column]
	if !ok {
		panic(fmt.Sprintf("table: unknown column %q", column))
	}
	return t.rows[i][pos]
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(column string) (int, bool) {
	pos, ok := t.index[column]
	return pos, ok
}

package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SchemaError reports a broken handoff contract between stages: required
// columns absent from an input file's header, or a row referencing a name the
// file should define but does not. The header row of each stage's output is
// the authoritative schema for the next stage.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: missing %s", e.Path, strings.Join(e.Missing, ", "))
}

// Read parses CSV from r. The first record is the header; required columns
// are verified against it (a miss yields *SchemaError with the given path
// used for reporting only). Cell text passes through Parse, so null
// spellings arrive as explicit nulls.
func Read(r io.Reader, path string, required ...string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read %s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	t, err := New(header...)
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	if missing := missingColumns(t, required); len(missing) > 0 {
		return nil, &SchemaError{Path: path, Missing: missing}
	}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", path, line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("read %s line %d: %d cells, header has %d", path, line, len(record), len(header))
		}
		cells := make([]Value, len(record))
		for i, raw := range record {
			cells[i] = Parse(raw)
		}
		if err := t.Append(cells...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadFile loads a CSV file from disk. Missing or unreadable files surface
// the underlying I/O error wrapped with the path.
func ReadFile(path string, required ...string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, path, required...)
}

// Write renders the table as CSV: header row first, then data rows in order,
// nulls as empty cells. Output is byte-stable for identical tables.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return err
	}
	record := make([]string, len(t.columns))
	for _, row := range t.rows {
		for i, cell := range row {
			record[i] = cell.Encode()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, creating parent directories as needed.
func (t *Table) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := t.Write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func missingColumns(t *Table, required []string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

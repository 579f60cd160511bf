package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"srtingest/internal/table"
)

// CSVDir reads a workbook laid out as a directory with one <Sheet>.csv file
// per sheet. The directory must exist when opened; individual sheets are
// loaded lazily.
type CSVDir struct {
	root string
}

// OpenCSVDir validates that root exists and is a directory.
func OpenCSVDir(root string) (*CSVDir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open workbook %s: not a directory", root)
	}
	return &CSVDir{root: root}, nil
}

// SheetNames lists the sheets (file names sans .csv), sorted for stable runs.
func (d *CSVDir) SheetNames() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("list workbook %s: %w", d.root, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			names = append(names, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Sheet loads <root>/<name>.csv.
func (d *CSVDir) Sheet(name string) (*Sheet, error) {
	path := filepath.Join(d.root, name+".csv")
	data, err := table.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchSheet, name)
		}
		return nil, err
	}
	return &Sheet{Name: name, Data: data}, nil
}

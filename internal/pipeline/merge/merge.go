// Package merge implements the first pipeline stage: it reads the configured
// workbook sheets, normalizes headers and date columns, and unpivots every
// sheet into one combined long-format table of (RecordID, FieldName,
// FieldValue) rows.
package merge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"srtingest/internal/pipeline"
	"srtingest/internal/table"
	"srtingest/internal/workbook"
)

// dateThreshold is the share of non-null samples that must parse as dates
// before a column is treated as a date column. Cells that then fail to parse
// are nulled with a warning rather than aborting the run.
const dateThreshold = 0.8

// Result carries the merged long table plus per-sheet diagnostics.
type Result struct {
	Long          *table.Table
	Warnings      []string
	SheetsMerged  []string
	SheetsSkipped []string
}

// Run merges the named sheets from wb into one long-format table.
//
// Per sheet: headers are normalized (trimmed, spaces to underscores,
// uppercased), non-identifier columns are prefixed with the sheet name, fully
// duplicate rows are dropped, detected date columns are rewritten to
// YYYY-MM-DD, and the sheet is unpivoted one row per (record, field) pair
// with explicit nulls preserved. RecordID is a single accumulator across all
// sheets, starting at 1.
//
// A sheet missing from the workbook, or containing none of the identifier
// columns, is skipped with a warning; every other failure is fatal.
func Run(wb workbook.Reader, sheets []string, identifierColumns []string) (Result, error) {
	idSet := make(map[string]struct{}, len(identifierColumns))
	for _, name := range identifierColumns {
		idSet[pipeline.NormalizeColumn(name)] = struct{}{}
	}

	long := table.MustNew(pipeline.ColRecordID, pipeline.ColFieldName, pipeline.ColFieldValue)
	result := Result{Long: long}
	nextRecordID := 1

	for _, sheetName := range sheets {
		sheet, err := wb.Sheet(sheetName)
		if errors.Is(err, workbook.ErrNoSuchSheet) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("sheet %s not found in workbook, skipped", sheetName))
			result.SheetsSkipped = append(result.SheetsSkipped, sheetName)
			continue
		}
		if err != nil {
			return Result{}, err
		}
		nextRecordID, err = mergeSheet(sheet, idSet, nextRecordID, &result)
		if err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

func mergeSheet(sheet *workbook.Sheet, idSet map[string]struct{}, nextRecordID int, result *Result) (int, error) {
	columns := make([]string, 0, len(sheet.Data.Columns()))
	fieldNames := make([]string, 0, len(columns))
	prefix := pipeline.NormalizeColumn(sheet.Name) + "_"
	hasIdentifier := false
	for _, raw := range sheet.Data.Columns() {
		name := pipeline.NormalizeColumn(raw)
		columns = append(columns, raw)
		if _, isID := idSet[name]; isID {
			hasIdentifier = true
			fieldNames = append(fieldNames, name)
		} else {
			fieldNames = append(fieldNames, prefix+name)
		}
	}
	if !hasIdentifier {
		result.Warnings = append(result.Warnings, fmt.Sprintf("sheet %s has no identifier column, skipped", sheet.Name))
		result.SheetsSkipped = append(result.SheetsSkipped, sheet.Name)
		return nextRecordID, nil
	}

	rows := dedupeRows(sheet.Data)
	normalizeDateColumns(sheet.Name, columns, rows, result)

	for _, row := range rows {
		recordID := table.String(strconv.Itoa(nextRecordID))
		nextRecordID++
		for i, fieldName := range fieldNames {
			if err := result.Long.Append(recordID, table.String(fieldName), row[i]); err != nil {
				return nextRecordID, err
			}
		}
	}
	result.SheetsMerged = append(result.SheetsMerged, sheet.Name)
	return nextRecordID, nil
}

// dedupeRows drops fully duplicate rows, keeping the first occurrence.
func dedupeRows(t *table.Table) [][]table.Value {
	seen := make(map[string]struct{}, t.Len())
	rows := make([][]table.Value, 0, t.Len())
	var key strings.Builder
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		key.Reset()
		for _, cell := range row {
			if cell.Null {
				key.WriteString("\x00n")
			} else {
				key.WriteString("\x00v")
				key.WriteString(cell.Raw)
			}
		}
		k := key.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, append([]table.Value(nil), row...))
	}
	return rows
}

// normalizeDateColumns rewrites detected date columns to the canonical
// YYYY-MM-DD form in place. Detection samples the non-null cells of each
// column; unparseable cells in a detected column are nulled with a warning.
func normalizeDateColumns(sheetName string, columns []string, rows [][]table.Value, result *Result) {
	for col := range columns {
		nonNull, parsed := 0, 0
		for _, row := range rows {
			cell := row[col]
			if cell.Null {
				continue
			}
			nonNull++
			if _, ok := parseDate(cell.Raw); ok {
				parsed++
			}
		}
		if nonNull == 0 || float64(parsed) < dateThreshold*float64(nonNull) {
			continue
		}
		for i, row := range rows {
			cell := row[col]
			if cell.Null {
				continue
			}
			when, ok := parseDate(cell.Raw)
			if !ok {
				ferr := &pipeline.FormatError{Sheet: sheetName, Column: columns[col], Row: i + 1, Value: cell.Raw}
				result.Warnings = append(result.Warnings, ferr.Error())
				rows[i][col] = table.Null()
				continue
			}
			rows[i][col] = table.String(when)
		}
	}
}

// parseDate accepts anything dateparse understands except bare numbers,
// which are far more likely to be measurements than dates.
func parseDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return "", false
	}
	when, err := dateparse.ParseAny(trimmed)
	if err != nil {
		return "", false
	}
	return when.Format(pipeline.DateLayout), true
}

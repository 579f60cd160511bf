// Package compliance implements the third pipeline stage: field names are
// sanitized to the SRT naming rules and inferred data types are mapped onto
// the SRT type vocabulary. Value rows are re-keyed so the join between the
// two emitted tables stays exact.
package compliance

import (
	"fmt"

	"srtingest/internal/pipeline"
	"srtingest/internal/table"
)

// srtTypes is the fixed mapping from inferred types to the SRT database
// vocabulary. An inferred type without an entry is a configuration gap and
// always fatal; it is never silently defaulted.
var srtTypes = map[string]string{
	pipeline.TypeString:  "string",
	pipeline.TypeDate:    "date",
	pipeline.TypeFloat:   "float",
	pipeline.TypeInteger: "int",
	pipeline.TypeBoolean: "boolean",
}

// Result carries the SRT-compliant definition and value tables.
type Result struct {
	Definitions *table.Table
	Values      *table.Table
}

// Run sanitizes every field name and maps every data type. Neither table
// changes row count; every value row joins to exactly one definition row on
// the sanitized name.
func Run(definitions, values *table.Table) (Result, error) {
	for _, col := range []string{pipeline.ColFieldName, pipeline.ColDataType, pipeline.ColDescription} {
		if !definitions.HasColumn(col) {
			return Result{}, &table.SchemaError{Path: pipeline.FileFieldDefs, Missing: []string{col}}
		}
	}
	for _, col := range []string{pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue} {
		if !values.HasColumn(col) {
			return Result{}, &table.SchemaError{Path: pipeline.FileFieldValues, Missing: []string{col}}
		}
	}

	renames := make(map[string]string, definitions.Len())
	taken := make(map[string]struct{}, definitions.Len())
	outDefs := table.MustNew(pipeline.ColFieldName, pipeline.ColDataType, pipeline.ColDescription)
	for i := 0; i < definitions.Len(); i++ {
		original := definitions.Cell(i, pipeline.ColFieldName).Raw
		if _, dup := renames[original]; dup {
			return Result{}, fmt.Errorf("duplicate field definition %q", original)
		}
		sanitized := uniqueName(SanitizeFieldName(original), taken)
		taken[sanitized] = struct{}{}
		renames[original] = sanitized

		dataType := definitions.Cell(i, pipeline.ColDataType).Raw
		mapped, ok := srtTypes[dataType]
		if !ok {
			return Result{}, &pipeline.MappingError{FieldName: original, DataType: dataType}
		}
		err := outDefs.Append(
			table.String(sanitized),
			table.String(mapped),
			definitions.Cell(i, pipeline.ColDescription),
		)
		if err != nil {
			return Result{}, err
		}
	}

	outValues := table.MustNew(pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue)
	for i := 0; i < values.Len(); i++ {
		original := values.Cell(i, pipeline.ColFieldName).Raw
		sanitized, ok := renames[original]
		if !ok {
			// A value row whose field was never defined breaks the exact join
			// contract between the two tables.
			return Result{}, fmt.Errorf("value row %d: %w", i+1,
				&table.SchemaError{Path: pipeline.FileFieldDefs, Missing: []string{original}})
		}
		err := outValues.Append(
			values.Cell(i, pipeline.ColPatientID),
			table.String(sanitized),
			values.Cell(i, pipeline.ColFieldValue),
		)
		if err != nil {
			return Result{}, err
		}
	}
	return Result{Definitions: outDefs, Values: outValues}, nil
}

// uniqueName resolves sanitization collisions with a deterministic numeric
// suffix in first-seen order, keeping the definition table's uniqueness
// invariant and the exact join intact.
func uniqueName(base string, taken map[string]struct{}) string {
	if _, clash := taken[base]; !clash {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if _, clash := taken[candidate]; !clash {
			return candidate
		}
	}
}

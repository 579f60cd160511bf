// Package source implements the final pipeline stage: a pure projection that
// appends a constant provenance column to the compliant field value table.
package source

import (
	"fmt"
	"strings"

	"srtingest/internal/pipeline"
	"srtingest/internal/table"
)

// Tag appends the source column with the given label to every row. The input
// is unchanged otherwise: one output row per input row, other columns intact.
func Tag(values *table.Table, label string) (*table.Table, error) {
	if strings.TrimSpace(label) == "" {
		return nil, fmt.Errorf("source label required")
	}
	for _, col := range []string{pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue} {
		if !values.HasColumn(col) {
			return nil, &table.SchemaError{Path: pipeline.FileCompliantValues, Missing: []string{col}}
		}
	}
	if values.HasColumn(pipeline.ColSource) {
		return nil, fmt.Errorf("input already carries a %s column", pipeline.ColSource)
	}

	out := table.MustNew(pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue, pipeline.ColSource)
	tag := table.String(label)
	for i := 0; i < values.Len(); i++ {
		err := out.Append(
			values.Cell(i, pipeline.ColPatientID),
			values.Cell(i, pipeline.ColFieldName),
			values.Cell(i, pipeline.ColFieldValue),
			tag,
		)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

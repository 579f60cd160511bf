package source

import (
	"errors"
	"testing"

	"srtingest/internal/pipeline"
	"srtingest/internal/table"
)

func compliantValues(t *testing.T, rows ...[3]string) *table.Table {
	t.Helper()
	values := table.MustNew(pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue)
	for _, row := range rows {
		value := table.Null()
		if row[2] != "" {
			value = table.String(row[2])
		}
		if err := values.Append(table.String(row[0]), table.String(row[1]), value); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	return values
}

func TestTagAppendsSourceColumn(t *testing.T) {
	values := compliantValues(t,
		[3]string{"p1", "demographics_age", "40"},
		[3]string{"p2", "demographics_age", ""},
	)
	out, err := Tag(values, "sparc_2019")
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	if out.Len() != values.Len() {
		t.Fatalf("rows = %d, want %d", out.Len(), values.Len())
	}
	cols := out.Columns()
	if len(cols) != 4 || cols[3] != pipeline.ColSource {
		t.Fatalf("columns = %v", cols)
	}
	for i := 0; i < out.Len(); i++ {
		if got := out.Cell(i, pipeline.ColSource).Raw; got != "sparc_2019" {
			t.Fatalf("row %d source = %q", i, got)
		}
	}
	// Other columns pass through untouched, nulls included.
	if out.Cell(0, pipeline.ColFieldValue).Raw != "40" {
		t.Fatalf("value cell changed")
	}
	if !out.Cell(1, pipeline.ColFieldValue).Null {
		t.Fatalf("null cell changed")
	}
}

func TestTagEmptyInput(t *testing.T) {
	out, err := Tag(compliantValues(t), "label")
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("rows = %d, want 0", out.Len())
	}
}

func TestTagRequiresLabel(t *testing.T) {
	if _, err := Tag(compliantValues(t), "  "); err == nil {
		t.Fatalf("expected label error")
	}
}

func TestTagSchemaCheck(t *testing.T) {
	bad := table.MustNew(pipeline.ColPatientID)
	_, err := Tag(bad, "label")
	var se *table.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestTagRejectsExistingSourceColumn(t *testing.T) {
	tagged := table.MustNew(pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue, pipeline.ColSource)
	if _, err := Tag(tagged, "label"); err == nil {
		t.Fatalf("expected error for pre-tagged input")
	}
}

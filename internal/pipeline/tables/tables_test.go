package tables

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"srtingest/internal/pipeline"
	"srtingest/internal/table"
)

const idColumn = "DEIDENTIFIED_MASTER_PATIENT_ID"

// longTable builds a combined long-format fixture from (record, field, value)
// triples; an empty value means an explicit null.
func longTable(t *testing.T, rows ...[3]string) *table.Table {
	t.Helper()
	long := table.MustNew(pipeline.ColRecordID, pipeline.ColFieldName, pipeline.ColFieldValue)
	for _, row := range rows {
		value := table.Null()
		if row[2] != "" {
			value = table.String(row[2])
		}
		if err := long.Append(table.String(row[0]), table.String(row[1]), value); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	return long
}

func TestRunSchemaCheck(t *testing.T) {
	bad := table.MustNew("RecordID", "FieldName")
	_, err := Run(bad, []string{idColumn})
	var se *table.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestRunRequiresIdentifierColumns(t *testing.T) {
	long := longTable(t)
	if _, err := Run(long, nil); err == nil {
		t.Fatalf("expected error for empty identifier list")
	}
}

func TestRunBuildsThreeTables(t *testing.T) {
	long := longTable(t,
		[3]string{"1", idColumn, "p1"},
		[3]string{"1", "DEMOGRAPHICS_AGE", "40"},
		[3]string{"1", "DEMOGRAPHICS_SEX", "F"},
		[3]string{"2", idColumn, "p2"},
		[3]string{"2", "DEMOGRAPHICS_AGE", "51"},
		[3]string{"2", "DEMOGRAPHICS_SEX", "M"},
	)
	res, err := Run(long, []string{idColumn})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Patients.Len() != 2 {
		t.Fatalf("patients = %d, want 2", res.Patients.Len())
	}
	if got := res.Patients.Columns()[0]; got != pipeline.ColPatientID {
		t.Fatalf("first patient column = %q", got)
	}
	if res.Patients.Cell(0, pipeline.ColPatientID).Raw != "p1" {
		t.Fatalf("patient order lost")
	}

	if res.Definitions.Len() != 2 {
		t.Fatalf("definitions = %d, want 2", res.Definitions.Len())
	}
	if res.Definitions.Cell(0, pipeline.ColFieldName).Raw != "DEMOGRAPHICS_AGE" {
		t.Fatalf("definition order lost")
	}
	if got := res.Definitions.Cell(0, pipeline.ColDataType).Raw; got != pipeline.TypeInteger {
		t.Fatalf("AGE type = %q, want integer", got)
	}
	if got := res.Definitions.Cell(1, pipeline.ColDataType).Raw; got != pipeline.TypeString {
		t.Fatalf("SEX type = %q, want string", got)
	}
	if got := res.Definitions.Cell(0, pipeline.ColDescription).Raw; got != "DEMOGRAPHICS_AGE" {
		t.Fatalf("description = %q", got)
	}

	if res.Values.Len() != 4 {
		t.Fatalf("values = %d, want 4", res.Values.Len())
	}
	if res.Values.Cell(0, pipeline.ColPatientID).Raw != "p1" {
		t.Fatalf("value rows not attributed to patient")
	}
}

func TestRunDedupesPatients(t *testing.T) {
	long := longTable(t,
		[3]string{"1", idColumn, "p1"},
		[3]string{"1", "A_X", "1"},
		[3]string{"2", idColumn, "p1"},
		[3]string{"2", "B_Y", "2"},
	)
	res, err := Run(long, []string{idColumn})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Patients.Len() != 1 {
		t.Fatalf("patients = %d, want 1", res.Patients.Len())
	}
	if res.Values.Len() != 2 {
		t.Fatalf("values = %d, want 2", res.Values.Len())
	}
}

func TestRunPreservesNullValues(t *testing.T) {
	long := longTable(t,
		[3]string{"1", idColumn, "p1"},
		[3]string{"1", "A_X", ""},
	)
	res, err := Run(long, []string{idColumn})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Values.Len() != 1 {
		t.Fatalf("values = %d, want 1", res.Values.Len())
	}
	if !res.Values.Cell(0, pipeline.ColFieldValue).Null {
		t.Fatalf("null field value should be preserved")
	}
}

func TestRunDropsUnattributableRecords(t *testing.T) {
	long := longTable(t,
		[3]string{"1", idColumn, ""},
		[3]string{"1", "A_X", "7"},
		[3]string{"2", "A_X", "8"},
		[3]string{"3", idColumn, "p3"},
		[3]string{"3", "A_X", "9"},
	)
	res, err := Run(long, []string{idColumn})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Values.Len() != 1 || res.Values.Cell(0, pipeline.ColPatientID).Raw != "p3" {
		t.Fatalf("unattributable records should be dropped, values = %d", res.Values.Len())
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("warnings = %v, want 2", res.Warnings)
	}
	for _, w := range res.Warnings {
		if !strings.Contains(w, idColumn) {
			t.Fatalf("warning %q should name the identifier column", w)
		}
	}
}

func TestRunSecondaryIdentifierColumns(t *testing.T) {
	long := longTable(t,
		[3]string{"1", idColumn, "p1"},
		[3]string{"1", "SITE_ID", "s9"},
		[3]string{"1", "A_X", "1"},
	)
	res, err := Run(long, []string{idColumn, "SITE_ID"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	cols := res.Patients.Columns()
	if len(cols) != 2 || cols[0] != pipeline.ColPatientID || cols[1] != "SITE_ID" {
		t.Fatalf("patient columns = %v", cols)
	}
	if res.Patients.Cell(0, "SITE_ID").Raw != "s9" {
		t.Fatalf("secondary identifier not captured")
	}
	// Identifier fields do not appear in the value fact table.
	if res.Values.Len() != 1 {
		t.Fatalf("values = %d, want 1", res.Values.Len())
	}
}

func TestRunTypeInferenceSpansRecords(t *testing.T) {
	rows := make([][3]string, 0, 12)
	for i := 1; i <= 6; i++ {
		id := strconv.Itoa(i)
		rows = append(rows, [3]string{id, idColumn, "p" + id})
		rows = append(rows, [3]string{id, "LABS_SCORE", strconv.Itoa(i * 10)})
	}
	res, err := Run(longTable(t, rows...), []string{idColumn})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := res.Definitions.Cell(0, pipeline.ColDataType).Raw; got != pipeline.TypeInteger {
		t.Fatalf("type = %q, want integer", got)
	}
}

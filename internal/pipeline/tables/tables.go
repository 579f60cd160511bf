// Package tables implements the second pipeline stage: from the combined
// long-format table it derives the patient identifier dimension table, the
// field definition table with inferred data types, and the field value fact
// table with explicit nulls.
package tables

import (
	"fmt"

	"srtingest/internal/pipeline"
	"srtingest/internal/table"
)

// Result carries the three derived tables plus diagnostics.
type Result struct {
	Patients    *table.Table // PatientID plus any additional identifier columns
	Definitions *table.Table // FieldName, DataType, Description
	Values      *table.Table // PatientID, FieldName, FieldValue
	Warnings    []string
}

type fieldEntry struct {
	name  string
	value table.Value
}

type record struct {
	id          string
	identifiers map[string]table.Value
	fields      []fieldEntry
}

// Run partitions the long table's field names into the identifier allow-list
// and the remainder, then builds the three relational tables. Record groups
// whose identifier fields are all null or absent cannot be attributed to a
// patient and are dropped with a warning.
func Run(long *table.Table, identifierColumns []string) (Result, error) {
	for _, col := range []string{pipeline.ColRecordID, pipeline.ColFieldName, pipeline.ColFieldValue} {
		if !long.HasColumn(col) {
			return Result{}, &table.SchemaError{Path: pipeline.FileCombinedLong, Missing: []string{col}}
		}
	}
	if len(identifierColumns) == 0 {
		return Result{}, fmt.Errorf("at least one identifier column required")
	}

	idColumns := make([]string, len(identifierColumns))
	idSet := make(map[string]struct{}, len(identifierColumns))
	for i, name := range identifierColumns {
		idColumns[i] = pipeline.NormalizeColumn(name)
		idSet[idColumns[i]] = struct{}{}
	}

	records := groupRecords(long, idSet)

	result := Result{
		Patients:    patientTable(idColumns),
		Definitions: table.MustNew(pipeline.ColFieldName, pipeline.ColDataType, pipeline.ColDescription),
		Values:      table.MustNew(pipeline.ColPatientID, pipeline.ColFieldName, pipeline.ColFieldValue),
	}

	// Field definitions: distinct names in first-seen order, typed from the
	// non-null samples across all records.
	fieldOrder := make([]string, 0)
	samples := make(map[string][]string)
	for _, rec := range records {
		for _, field := range rec.fields {
			if _, seen := samples[field.name]; !seen {
				fieldOrder = append(fieldOrder, field.name)
				samples[field.name] = nil
			}
			if !field.value.Null {
				samples[field.name] = append(samples[field.name], field.value.Raw)
			}
		}
	}
	for _, name := range fieldOrder {
		err := result.Definitions.Append(
			table.String(name),
			table.String(InferType(samples[name])),
			table.String(name),
		)
		if err != nil {
			return Result{}, err
		}
	}

	// Patients and values walk records in first-seen order.
	seenPatients := make(map[string]struct{})
	for _, rec := range records {
		patientID, ok := rec.identifiers[idColumns[0]]
		if !ok || patientID.Null {
			result.Warnings = append(result.Warnings, fmt.Sprintf("record %s has no %s value, %d field values dropped", rec.id, idColumns[0], len(rec.fields)))
			continue
		}
		tuple := patientKey(rec, idColumns)
		if _, dup := seenPatients[tuple]; !dup {
			seenPatients[tuple] = struct{}{}
			cells := make([]table.Value, len(idColumns))
			for i, col := range idColumns {
				if v, present := rec.identifiers[col]; present {
					cells[i] = v
				} else {
					cells[i] = table.Null()
				}
			}
			if err := result.Patients.Append(cells...); err != nil {
				return Result{}, err
			}
		}
		for _, field := range rec.fields {
			if err := result.Values.Append(patientID, table.String(field.name), field.value); err != nil {
				return Result{}, err
			}
		}
	}
	return result, nil
}

// groupRecords partitions long rows by RecordID, preserving first-seen record
// order and within-record field order.
func groupRecords(long *table.Table, idSet map[string]struct{}) []*record {
	byID := make(map[string]*record)
	order := make([]*record, 0)
	for i := 0; i < long.Len(); i++ {
		id := long.Cell(i, pipeline.ColRecordID).Raw
		name := long.Cell(i, pipeline.ColFieldName).Raw
		value := long.Cell(i, pipeline.ColFieldValue)

		rec, ok := byID[id]
		if !ok {
			rec = &record{id: id, identifiers: make(map[string]table.Value)}
			byID[id] = rec
			order = append(order, rec)
		}
		if _, isID := idSet[name]; isID {
			rec.identifiers[name] = value
			continue
		}
		rec.fields = append(rec.fields, fieldEntry{name: name, value: value})
	}
	return order
}

// patientTable names the first identifier column PatientID; any further
// identifier columns keep their own names.
func patientTable(idColumns []string) *table.Table {
	columns := make([]string, len(idColumns))
	columns[0] = pipeline.ColPatientID
	copy(columns[1:], idColumns[1:])
	return table.MustNew(columns...)
}

func patientKey(rec *record, idColumns []string) string {
	key := ""
	for _, col := range idColumns {
		v, ok := rec.identifiers[col]
		if !ok || v.Null {
			key += "\x00n"
			continue
		}
		key += "\x00v" + v.Raw
	}
	return key
}

// Package pipeline holds the contracts shared by the four batch stages: the
// column and file names that make up each stage boundary, and the run
// configuration. Stages communicate only through CSV files whose header rows
// carry this schema; every stage re-checks it on input and fails fast with a
// table.SchemaError on mismatch.
package pipeline

import "strings"

// Stage boundary file names, in pipeline order.
const (
	FileCombinedLong    = "combined_long_format.csv"
	FilePatients        = "Patient_Identifiers_Final.csv"
	FileFieldDefs       = "Field_Definitions_Final.csv"
	FileFieldValues     = "Field_Values_Final.csv"
	FileCompliantValues = "Field_Values_SRT_Compliant.csv"
	FileCompliantDefs   = "Field_Definitions_SRT_Compliant.csv"
	FileSourcedValues   = "Field_Values_SRT_Compliant_Source.csv"
)

// Column names used across stage boundaries.
const (
	ColRecordID    = "RecordID"
	ColFieldName   = "FieldName"
	ColFieldValue  = "FieldValue"
	ColPatientID   = "PatientID"
	ColDataType    = "DataType"
	ColDescription = "Description"
	ColSource      = "source"
)

// Inferred data type vocabulary produced by the table generator.
const (
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeDate    = "date"
	TypeBoolean = "boolean"
	TypeString  = "string"
)

// DateLayout is the canonical date representation used from stage 1 onward.
const DateLayout = "2006-01-02"

// NormalizeColumn applies the upstream header conventions shared by the
// merge stage and the identifier allow-list: trimmed, spaces replaced with
// underscores, uppercased.
func NormalizeColumn(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

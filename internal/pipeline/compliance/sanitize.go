package compliance

import (
	"regexp"
	"strings"
)

// maxFieldNameLength caps sanitized names per the SRT naming rules.
const maxFieldNameLength = 64

var disallowedRunes = regexp.MustCompile(`[^a-z0-9_]+`)

// SanitizeFieldName converts a raw field name into SRT-compliant form:
// lowercase, runs of disallowed characters collapsed into single
// underscores, leading and trailing underscores stripped, truncated to the
// maximum length. A name that sanitizes to nothing becomes "field".
//
// Example: "Blood Pressure(mmHg)" -> "blood_pressure_mmhg".
func SanitizeFieldName(name string) string {
	sanitized := disallowedRunes.ReplaceAllString(strings.ToLower(name), "_")
	sanitized = strings.Trim(sanitized, "_")
	if len(sanitized) > maxFieldNameLength {
		sanitized = strings.Trim(sanitized[:maxFieldNameLength], "_")
	}
	if sanitized == "" {
		return "field"
	}
	return sanitized
}

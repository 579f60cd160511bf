package tables

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"srtingest/internal/pipeline"
)

// Inference thresholds carried over from the upstream cohort tooling: a field
// is numeric when at least 80% of its non-null samples parse, and integer
// when more than 95% of those numerics are whole.
const (
	numericThreshold = 0.8
	integerThreshold = 0.95
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var booleanVocabulary = map[string]struct{}{
	"true": {}, "false": {},
	"yes": {}, "no": {},
	"y": {}, "n": {},
	"0": {}, "1": {},
}

// InferType derives a field's data type from its non-null value samples.
// Precedence: numeric, then date, then boolean, then string. A field with no
// samples cannot be inferred and defaults to string; that is not an error.
func InferType(samples []string) string {
	if len(samples) == 0 {
		return pipeline.TypeString
	}

	numeric, whole := 0, 0
	for _, sample := range samples {
		f, err := strconv.ParseFloat(strings.TrimSpace(sample), 64)
		if err != nil {
			continue
		}
		numeric++
		if f == math.Trunc(f) {
			whole++
		}
	}
	if float64(numeric) > numericThreshold*float64(len(samples)) {
		if float64(whole) > integerThreshold*float64(numeric) {
			return pipeline.TypeInteger
		}
		return pipeline.TypeFloat
	}

	if allMatch(samples, func(s string) bool { return datePattern.MatchString(strings.TrimSpace(s)) }) {
		return pipeline.TypeDate
	}
	if allMatch(samples, func(s string) bool {
		_, ok := booleanVocabulary[strings.ToLower(strings.TrimSpace(s))]
		return ok
	}) {
		return pipeline.TypeBoolean
	}
	return pipeline.TypeString
}

func allMatch(samples []string, pred func(string) bool) bool {
	for _, sample := range samples {
		if !pred(sample) {
			return false
		}
	}
	return true
}

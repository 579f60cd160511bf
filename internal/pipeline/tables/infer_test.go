package tables

import (
	"testing"

	"srtingest/internal/pipeline"
)

func TestInferType(t *testing.T) {
	cases := []struct {
		name    string
		samples []string
		want    string
	}{
		{"no samples", nil, pipeline.TypeString},
		{"integers", []string{"1", "2", "300"}, pipeline.TypeInteger},
		{"negative integers", []string{"-1", "0", "42"}, pipeline.TypeInteger},
		{"floats", []string{"1.5", "2.25", "3.0", "4.5", "0.1"}, pipeline.TypeFloat},
		{"whole floats stay integer", []string{"1.0", "2.0", "3.0"}, pipeline.TypeInteger},
		{"mostly numeric wins", []string{"1", "2", "3", "4", "5", "not recorded"}, pipeline.TypeInteger},
		{"dates", []string{"2019-03-15", "2020-12-01"}, pipeline.TypeDate},
		{"date with stray text", []string{"2019-03-15", "unknown"}, pipeline.TypeString},
		{"booleans", []string{"true", "False", "YES", "n"}, pipeline.TypeBoolean},
		{"booleans mixing words and digits", []string{"yes", "no", "0", "1"}, pipeline.TypeBoolean},
		{"boolean with stray text", []string{"yes", "maybe"}, pipeline.TypeString},
		{"plain text", []string{"alpha", "beta"}, pipeline.TypeString},
		{"numeric below threshold", []string{"1", "2", "a", "b", "c"}, pipeline.TypeString},
		{"whitespace tolerated", []string{" 7 ", "8"}, pipeline.TypeInteger},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferType(tc.samples); got != tc.want {
				t.Fatalf("InferType(%v) = %q, want %q", tc.samples, got, tc.want)
			}
		})
	}
}

func TestInferTypePureDigitFlagsStayNumeric(t *testing.T) {
	// 0/1 are in the boolean vocabulary, but numeric precedence types a pure
	// digit field as integer.
	if got := InferType([]string{"0", "1", "1", "0"}); got != pipeline.TypeInteger {
		t.Fatalf("got %q, want integer", got)
	}
}

func TestInferTypeNumericBeatsDate(t *testing.T) {
	// Numeric precedence applies before the date check.
	if got := InferType([]string{"20190315", "20200101"}); got != pipeline.TypeInteger {
		t.Fatalf("got %q, want integer", got)
	}
}

func TestInferTypeMixedWholeAndFractional(t *testing.T) {
	// One fractional value out of three numerics drops below the 95% whole
	// share, so the field is a float.
	if got := InferType([]string{"1", "2", "2.5"}); got != pipeline.TypeFloat {
		t.Fatalf("got %q, want float", got)
	}
}

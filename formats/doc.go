// Package formats holds the numeric OpenAPI formats (int32, int64, float,
// double): their exact inclusive ranges and total predicates that decide
// whether a value satisfies a format.
//
// Comparisons are done on exact rationals, never on float64, so the int64
// bounds and the largest finite float32 and float64 values classify correctly
// when a value arrives as a decimal literal (json.Number or string):
//
//	formats.Int64(json.Number("9223372036854775807")) // true
//	formats.Int64(json.Number("9223372036854775808")) // false
//
// The float format uses the IEEE-754 binary32 bound (2 − 2⁻²³)·2¹²⁷.
package formats

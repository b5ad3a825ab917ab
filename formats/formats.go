package formats

import (
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// JSON types a format can be declared against.
const (
	TypeNumber  = openapi3.TypeNumber
	TypeInteger = openapi3.TypeInteger
	TypeString  = openapi3.TypeString
)

// Format is a named recognizer for the OpenAPI "format" keyword. Type is the
// JSON type whose values Check applies to; number formats also cover integer
// schemas.
type Format struct {
	Name  string
	Type  string
	Check func(v any) bool
}

// Int32 reports whether v is an integer within [-2147483648, 2147483647].
func Int32(v any) bool {
	return integerIn(v, int32Range)
}

// Int64 reports whether v is an integer within
// [-9223372036854775808, 9223372036854775807].
func Int64(v any) bool {
	return integerIn(v, int64Range)
}

// Float reports whether v is a finite number within ±(2 − 2⁻²³)·2¹²⁷.
func Float(v any) bool {
	return numberIn(v, floatRange)
}

// Double reports whether v is a finite number within ±(2 − 2⁻⁵²)·2¹⁰²³.
func Double(v any) bool {
	return numberIn(v, doubleRange)
}

func integerIn(v any, r Range) bool {
	x, ok := Rat(v)
	return ok && x.IsInt() && r.Contains(x)
}

func numberIn(v any, r Range) bool {
	x, ok := Rat(v)
	return ok && r.Contains(x)
}

// Builtins returns the four numeric formats.
func Builtins() []Format {
	return []Format{
		{Name: NameInt32, Type: TypeNumber, Check: Int32},
		{Name: NameInt64, Type: TypeNumber, Check: Int64},
		{Name: NameFloat, Type: TypeNumber, Check: Float},
		{Name: NameDouble, Type: TypeNumber, Check: Double},
	}
}

// IsBuiltin reports whether name is one of the numeric formats.
func IsBuiltin(name string) bool {
	_, ok := Lookup(name)
	return ok
}

var installOnce sync.Once

// Install registers the built-in formats with kin-openapi's integer and
// number format tables, replacing its own int32 and int64 entries. Those
// tables are process-wide; Install writes them once.
//
// kin-openapi hands integer formats int64(value) and number formats the
// float64 value, so the entries installed here can only be as exact as those
// inputs. Callers that need exact verdicts for decimal literals re-check
// values with the predicates directly.
func Install() {
	installOnce.Do(func() {
		for _, f := range Builtins() {
			openapi3.DefineIntegerFormatValidator(f.Name, openapi3.NewCallbackValidator(checkInt64(f)))
			openapi3.DefineNumberFormatValidator(f.Name, openapi3.NewCallbackValidator(checkFloat64(f)))
		}
	})
}

func checkInt64(f Format) func(int64) error {
	return func(v int64) error {
		if f.Check(v) {
			return nil
		}
		return Violation(f.Name)
	}
}

func checkFloat64(f Format) func(float64) error {
	return func(v float64) error {
		if f.Check(v) {
			return nil
		}
		return Violation(f.Name)
	}
}

// Violation describes a value outside a format. For the numeric formats the
// reason names the range.
func Violation(name string) error {
	r, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("value is not a valid %s", name)
	}
	switch name {
	case NameInt32, NameInt64:
		return fmt.Errorf("value must be an integer in %s", r)
	}
	return fmt.Errorf("value must be a finite number in %s", r)
}

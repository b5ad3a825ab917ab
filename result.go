package apicontract

import (
	"cmp"
	"slices"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// Violation is one way a candidate fails its schema. Location is a JSON
// pointer into the validated envelope; Keyword is the schema keyword that
// failed, when known.
type Violation struct {
	Location string `json:"location"`
	Keyword  string `json:"keyword,omitempty"`
	Reason   string `json:"reason"`
}

// Result is the outcome of one validation. It is a value: nothing about it
// changes after Validate returns, so results from concurrent calls never
// interfere.
type Result struct {
	Valid  bool        `json:"valid"`
	Errors []Violation `json:"errors,omitempty"`
}

// Validator checks candidates of type T.
type Validator[T any] interface {
	Validate(candidate T) Result
}

// Checker is a Validator bound to one operation part.
type Checker[T any] func(candidate T) Result

// Validate calls c.
func (c Checker[T]) Validate(candidate T) Result {
	return c(candidate)
}

func accept() Result {
	return Result{Valid: true}
}

func resultOf(violations []Violation) Result {
	if len(violations) == 0 {
		return accept()
	}
	slices.SortStableFunc(violations, func(a, b Violation) int {
		return cmp.Compare(a.Location, b.Location)
	})
	return Result{Errors: violations}
}

// pointer renders tokens as an escaped JSON pointer.
func pointer(tokens ...string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(t))
	}
	return b.String()
}

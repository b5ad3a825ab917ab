package apicontract

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrConfig marks a wiring mistake: an operation, part or status the
	// contract does not declare, or an invalid option.
	ErrConfig = errors.New("configuration error")

	// ErrSource marks a contract that could not be loaded or compiled.
	ErrSource = errors.New("source error")
)

// Part names the piece of an operation a checker validates.
type Part string

// Operation parts.
const (
	PartBody       Part = "body"
	PartParameters Part = "parameters"
	PartResponses  Part = "responses"
)

// ConfigError is returned when a checker is requested for something the
// contract does not declare. It is raised at wiring time, never while
// validating traffic.
type ConfigError struct {
	// Key is the operation that was looked up (zero for option errors).
	Key OperationKey
	// Part is the requested validator part, empty when the operation itself is missing.
	Part Part
	// Status is the requested response status, 0 unless Part is PartResponses.
	Status int
	// Known lists the operations the contract does declare, for diagnosis.
	Known []OperationKey
	// Message describes the failure.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if !e.Key.IsZero() {
		b.WriteString(" for ")
		b.WriteString(e.Key.String())
	}
	if e.Part != "" {
		b.WriteString(" ")
		b.WriteString(string(e.Part))
		if e.Status != 0 {
			b.WriteString(" ")
			b.WriteString(strconv.Itoa(e.Status))
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if len(e.Known) > 0 {
		known := make([]string, len(e.Known))
		for i, k := range e.Known {
			known[i] = k.String()
		}
		b.WriteString(" (declared: ")
		b.WriteString(strings.Join(known, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// SourceError is returned by Build when the contract cannot be loaded,
// parsed, converted or validated. No Registry accompanies it.
type SourceError struct {
	// Source identifies the contract (file path, URL or caller-given name).
	Source string
	// Message describes the failing step.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a human-readable error message.
func (e *SourceError) Error() string {
	msg := "source error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *SourceError) Is(target error) bool {
	return target == ErrSource
}

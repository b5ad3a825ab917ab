package apicontract

import (
	"errors"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
)

// violations flattens an error returned by kin-openapi into violation
// records. Locations are rooted at prefix.
func violations(err error, prefix string) []Violation {
	switch e := err.(type) {
	case nil:
		return nil
	case openapi3.MultiError:
		var out []Violation
		for _, inner := range e {
			out = append(out, violations(inner, prefix)...)
		}
		return out
	case *openapi3filter.RequestError:
		if p := e.Parameter; p != nil {
			prefix += pointer(paramSection(p.In), p.Name)
		}
		switch {
		case errors.Is(e.Err, openapi3filter.ErrInvalidRequired):
			return []Violation{{Location: prefix, Keyword: "required", Reason: e.Err.Error()}}
		case e.Err != nil:
			return violations(e.Err, prefix)
		}
		return []Violation{{Location: prefix, Reason: e.Reason}}
	case *openapi3.SchemaError:
		reason := e.Reason
		if reason == "" {
			reason = e.Error()
		}
		return []Violation{{
			Location: prefix + pointer(e.JSONPointer()...),
			Keyword:  e.SchemaField,
			Reason:   reason,
		}}
	case *openapi3filter.ParseError:
		return []Violation{{Location: prefix, Keyword: "type", Reason: e.Error()}}
	}
	return []Violation{{Location: prefix, Reason: err.Error()}}
}

// paramSection maps a parameter location to its envelope section.
func paramSection(in string) string {
	if in == openapi3.ParameterInHeader {
		return "headers"
	}
	return in
}

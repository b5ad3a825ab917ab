package apicontract

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/Gobd/apicontract/formats"
	"github.com/getkin/kin-openapi/openapi3"
)

// auditor re-checks formatted values with exact predicates after
// kin-openapi has evaluated them as float64, and applies the body nullable
// policy. It reports only what kin-openapi could not see, so a location is
// never reported twice.
type auditor struct {
	formats  map[string]formats.Format
	nullable bool
}

func newAuditor(custom []formats.Format, nullable bool) *auditor {
	a := &auditor{formats: make(map[string]formats.Format), nullable: nullable}
	for _, f := range formats.Builtins() {
		a.formats[f.Name] = f
	}
	for _, f := range custom {
		a.formats[f.Name] = f
	}
	return a
}

// walk visits v alongside ref. request enables the nullable policy, which
// only applies to request bodies.
func (a *auditor) walk(ref *openapi3.SchemaRef, v any, path []string, request bool, out *[]Violation) {
	if ref == nil || ref.Value == nil {
		return
	}
	s := ref.Value

	if v == nil {
		if request && !a.nullable && s.Nullable {
			*out = append(*out, Violation{
				Location: pointer(path...),
				Keyword:  "nullable",
				Reason:   "Value is not nullable",
			})
		}
		return
	}

	for _, sub := range s.AllOf {
		a.walk(sub, v, path, request, out)
	}
	if len(s.OneOf) > 0 {
		a.branches(s.OneOf, true, v, path, request, out)
	}
	if len(s.AnyOf) > 0 {
		a.branches(s.AnyOf, false, v, path, request, out)
	}

	switch val := v.(type) {
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(val)) {
			prop, ok := s.Properties[k]
			if !ok {
				prop = s.AdditionalProperties.Schema
			}
			a.walk(prop, val[k], append(path, k), request, out)
		}
	case []any:
		for i, item := range val {
			a.walk(s.Items, item, append(path, strconv.Itoa(i)), request, out)
		}
	default:
		a.check(s, v, path, out)
	}
}

// branches audits the oneOf (exactly set) or anyOf alternatives that
// kin-openapi accepted for v. If none of them passes the exact checks, the
// violations of the first accepted branch are reported.
func (a *auditor) branches(refs openapi3.SchemaRefs, exactly bool, v any, path []string, request bool, out *[]Violation) {
	opts := []openapi3.SchemaValidationOption{openapi3.VisitAsResponse()}
	if request {
		opts = []openapi3.SchemaValidationOption{openapi3.VisitAsRequest()}
	}

	var (
		accepted int
		first    []Violation
	)
	for _, ref := range refs {
		if ref == nil || ref.Value == nil || ref.Value.VisitJSON(v, opts...) != nil {
			continue
		}
		accepted++
		var found []Violation
		a.walk(ref, v, path, request, &found)
		if len(found) == 0 {
			return
		}
		if first == nil {
			first = found
		}
	}

	// No accepted branch, or an ambiguous oneOf, was already reported by
	// kin-openapi.
	if accepted == 0 || (exactly && accepted > 1) {
		return
	}
	*out = append(*out, first...)
}

func (a *auditor) check(s *openapi3.Schema, v any, path []string, out *[]Violation) {
	if s.Format == "" {
		return
	}
	f, ok := a.formats[s.Format]
	if !ok {
		return
	}

	var kind string
	switch v.(type) {
	case json.Number:
		if f.Type == formats.TypeString {
			return
		}
		kind = "number"
		if integerOnly(s) {
			kind = "integer"
		}
	case string:
		if f.Type != formats.TypeString {
			return
		}
		kind = "string"
	default:
		return
	}

	if f.Check(v) || !kinAccepts(s, v) {
		return
	}
	*out = append(*out, Violation{
		Location: pointer(path...),
		Keyword:  "format",
		Reason:   fmt.Sprintf("%s doesn't match the format %q (%v)", kind, s.Format, formats.Violation(s.Format)),
	})
}

func integerOnly(s *openapi3.Schema) bool {
	return s.Type.Permits(openapi3.TypeInteger) && !s.Type.Permits(openapi3.TypeNumber)
}

// kinAccepts reproduces kin-openapi's own verdict for a formatted value,
// including its float64 conversion. It is true when kin-openapi raised no
// type or format error for v.
func kinAccepts(s *openapi3.Schema, v any) bool {
	switch val := v.(type) {
	case string:
		if !s.Type.Permits(openapi3.TypeString) {
			return false
		}
		if f, ok := openapi3.SchemaStringFormats[s.Format]; ok {
			return f.Validate(val) == nil
		}
		return true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return false
		}
		if integerOnly(s) {
			if math.Trunc(f) != f {
				return false
			}
			if fv, ok := openapi3.SchemaIntegerFormats[s.Format]; ok {
				return fv.Validate(int64(f)) == nil
			}
			return true
		}
		if !s.Type.Permits(openapi3.TypeNumber) {
			return false
		}
		if fv, ok := openapi3.SchemaNumberFormats[s.Format]; ok {
			return fv.Validate(f) == nil
		}
		return true
	}
	return false
}

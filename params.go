package apicontract

import (
	"cmp"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
)

// Params is the parameter envelope of a request. A nil section is not
// validated, so a checker for one section ignores parameters declared in
// the others.
type Params struct {
	Path   map[string]string `json:"path,omitempty"`
	Query  url.Values        `json:"query,omitempty"`
	Header http.Header       `json:"headers,omitempty"`
}

// ParamsValidator checks the declared path, query and header parameters of
// one operation. Cookie parameters are not checked.
type ParamsValidator struct {
	key    OperationKey
	params []*openapi3.Parameter
	audit  *auditor
}

// Validate checks the present sections of p.
func (v *ParamsValidator) Validate(p Params) Result {
	return checkParams(v.params, p, v.audit, "")
}

func checkParams(params []*openapi3.Parameter, p Params, audit *auditor, prefix string) Result {
	header := p.Header
	if header == nil {
		header = http.Header{}
	}
	input := &openapi3filter.RequestValidationInput{
		Request: &http.Request{
			Method: http.MethodGet,
			URL:    &url.URL{RawQuery: p.Query.Encode()},
			Header: header,
		},
		PathParams:  p.Path,
		QueryParams: p.Query,
		Options: &openapi3filter.Options{
			MultiError:          true,
			SkipSettingDefaults: true,
		},
	}

	var found []Violation
	for _, param := range params {
		raw, present, ok := rawParam(param, p)
		if !ok {
			continue
		}
		err := openapi3filter.ValidateParameter(context.Background(), input, param)
		found = append(found, violations(err, prefix)...)
		if err == nil && present {
			auditParam(audit, param, raw, prefix, &found)
		}
	}
	return resultOf(found)
}

// rawParam reports the raw value of param. ok is false when the section the
// parameter lives in is absent from p.
func rawParam(param *openapi3.Parameter, p Params) (raw string, present, ok bool) {
	switch param.In {
	case openapi3.ParameterInPath:
		if p.Path == nil {
			return "", false, false
		}
		raw, present = p.Path[param.Name]
	case openapi3.ParameterInQuery:
		if p.Query == nil {
			return "", false, false
		}
		present = p.Query.Has(param.Name)
		raw = p.Query.Get(param.Name)
	case openapi3.ParameterInHeader:
		if p.Header == nil {
			return "", false, false
		}
		values := p.Header.Values(param.Name)
		present = len(values) > 0
		if present {
			raw = values[0]
		}
	default:
		return "", false, false
	}
	return raw, present, true
}

// auditParam runs the exact format checks on a primitive parameter. kin-openapi
// parses number parameters with strconv.ParseFloat, so the raw text is the
// only exact form of the value.
func auditParam(audit *auditor, param *openapi3.Parameter, raw, prefix string, out *[]Violation) {
	if param.Schema == nil || param.Schema.Value == nil || raw == "" {
		return
	}
	s := param.Schema.Value

	var value any
	switch {
	case s.Type.Is(openapi3.TypeInteger), s.Type.Is(openapi3.TypeNumber):
		value = json.Number(raw)
	case s.Type.Is(openapi3.TypeString):
		value = raw
	default:
		return
	}

	var found []Violation
	audit.walk(param.Schema, value, nil, false, &found)
	for _, f := range found {
		f.Location = prefix + pointer(paramSection(param.In), param.Name) + f.Location
		*out = append(*out, f)
	}
}

// mergeParams combines path-item and operation parameters. An operation
// parameter replaces a path-item parameter with the same name and location.
// The result is ordered by location, then name.
func mergeParams(pathLevel, opLevel openapi3.Parameters) []*openapi3.Parameter {
	type id struct{ in, name string }
	merged := make(map[id]*openapi3.Parameter)
	for _, refs := range []openapi3.Parameters{pathLevel, opLevel} {
		for _, ref := range refs {
			if ref == nil || ref.Value == nil {
				continue
			}
			p := ref.Value
			name := p.Name
			if p.In == openapi3.ParameterInHeader {
				name = http.CanonicalHeaderKey(name)
			}
			merged[id{p.In, name}] = p
		}
	}

	out := make([]*openapi3.Parameter, 0, len(merged))
	for _, p := range merged {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *openapi3.Parameter) int {
		if c := cmp.Compare(sectionRank(a.In), sectionRank(b.In)); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

func sectionRank(in string) int {
	switch in {
	case openapi3.ParameterInPath:
		return 0
	case openapi3.ParameterInQuery:
		return 1
	case openapi3.ParameterInHeader:
		return 2
	}
	return 3
}

// Key returns the operation v belongs to.
func (v *ParamsValidator) Key() OperationKey {
	return v.key
}

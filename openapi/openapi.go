package openapi

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/Gobd/apicontract"
	"github.com/getkin/kin-openapi/openapi3"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Response declares one status of an operation.
type Response struct {
	Desc    string
	Bodies  []any                          // JSON body types, several become anyOf
	Headers map[string]*openapi3.SchemaRef // response headers by name
}

// Endpoint describes a single API operation for [Add] and its shorthands
// [Get], [Post], [Put], [Patch], and [Delete].
type Endpoint struct {
	Summary     string
	Description string
	Parameters  openapi3.Parameters // see PathParam, QueryParam, HeaderParam
	Request     any                 // single request body type
	Requests    []any               // several request body types, anyOf
	Response    any                 // single 200 response type
	Responses   map[string]Response // by status key, wins over Response
}

var (
	statusKey = regexp.MustCompile(`^([1-5][0-9][0-9]|[1-5]XX|DEFAULT)$`)
	wildcard  = regexp.MustCompile(`\{([^{}/]+)\}`)
)

// PathParam declares a path parameter. Path parameters are always required.
func PathParam(name string, schema *openapi3.SchemaRef) *openapi3.ParameterRef {
	p := openapi3.NewPathParameter(name)
	p.Schema = schema
	return &openapi3.ParameterRef{Value: p}
}

// QueryParam declares a query parameter.
func QueryParam(name string, required bool, schema *openapi3.SchemaRef) *openapi3.ParameterRef {
	p := openapi3.NewQueryParameter(name).WithRequired(required)
	p.Schema = schema
	return &openapi3.ParameterRef{Value: p}
}

// HeaderParam declares a header parameter.
func HeaderParam(name string, required bool, schema *openapi3.SchemaRef) *openapi3.ParameterRef {
	p := openapi3.NewHeaderParameter(name).WithRequired(required)
	p.Schema = schema
	return &openapi3.ParameterRef{Value: p}
}

// DocBase returns an empty OpenAPI 3.0.3 document.
func DocBase(serviceName, description, version string) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: serviceName, Description: description, Version: version},
		Paths:   openapi3.NewPaths(),
	}
}

// Add builds the operation ep describes and registers it on doc at method
// and path, replacing any operation already there. The path parameters of
// ep must match the wildcards of path one to one.
func Add(doc *openapi3.T, method, path, operationID string, ep Endpoint) (*openapi3.Operation, error) {
	key := apicontract.Key(path, method)
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if err := matchPathParams(path, ep.Parameters); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	op := openapi3.NewOperation()
	op.OperationID = operationID
	op.Summary = ep.Summary
	op.Description = ep.Description
	op.Parameters = ep.Parameters

	requests := ep.Requests
	if len(requests) == 0 && ep.Request != nil {
		requests = []any{ep.Request}
	}
	if len(requests) > 0 {
		body, err := NewRequest(requests...)
		if err != nil {
			return nil, fmt.Errorf("%s: request body: %w", key, err)
		}
		op.RequestBody = body
	}

	responses := ep.Responses
	if responses == nil && ep.Response != nil {
		responses = map[string]Response{"200": {Desc: "OK", Bodies: []any{ep.Response}}}
	}
	if len(responses) == 0 {
		op.Responses = openapi3.NewResponses()
	} else {
		res, err := NewResponses(responses)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		op.Responses = res
	}

	if doc.Paths == nil {
		doc.Paths = openapi3.NewPaths()
	}
	item := doc.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		doc.Paths.Set(path, item)
	}
	item.SetOperation(strings.ToUpper(key.Method), op)
	return op, nil
}

// matchPathParams fails when a wildcard of path has no path parameter in
// params, or a path parameter names no wildcard.
func matchPathParams(path string, params openapi3.Parameters) error {
	wildcards := make(map[string]bool)
	for _, m := range wildcard.FindAllStringSubmatch(path, -1) {
		wildcards[m[1]] = true
	}

	declared := make(map[string]bool)
	for _, ref := range params {
		if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInPath {
			continue
		}
		if !wildcards[ref.Value.Name] {
			return fmt.Errorf("path parameter %q is not in the path", ref.Value.Name)
		}
		declared[ref.Value.Name] = true
	}
	for _, name := range slices.Sorted(maps.Keys(wildcards)) {
		if !declared[name] {
			return fmt.Errorf("path wildcard {%s} has no path parameter", name)
		}
	}
	return nil
}

// NewRequest generates a required JSON request body from the given value
// types.
func NewRequest(vs ...any) (*openapi3.RequestBodyRef, error) {
	content, err := jsonContent(vs)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, errors.New("no request body types")
	}
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithContent(content),
	}, nil
}

// NewResponses builds the responses object of an operation. Keys are a
// status code, a range such as "4xx", or "default", in any case. A response
// without bodies declares no content.
func NewResponses(vs map[string]Response) (*openapi3.Responses, error) {
	opts := make([]openapi3.NewResponsesOption, 0, len(vs))
	seen := make(map[string]string, len(vs))
	for _, k := range slices.Sorted(maps.Keys(vs)) {
		status := strings.ToUpper(k)
		if err := validation.Validate(status, validation.Required, validation.Match(statusKey)); err != nil {
			return nil, fmt.Errorf("response %q: %w", k, err)
		}
		if status == "DEFAULT" {
			status = "default"
		}
		if prev, ok := seen[status]; ok {
			return nil, fmt.Errorf("responses %q and %q collide", prev, k)
		}
		seen[status] = k

		r := vs[k]
		content, err := jsonContent(r.Bodies)
		if err != nil {
			return nil, fmt.Errorf("response %q: %w", k, err)
		}
		res := openapi3.NewResponse().WithDescription(r.Desc).WithContent(content)
		if len(r.Headers) > 0 {
			res.Headers = make(openapi3.Headers, len(r.Headers))
			for name, schema := range r.Headers {
				res.Headers[http.CanonicalHeaderKey(name)] = &openapi3.HeaderRef{
					Value: &openapi3.Header{Parameter: openapi3.Parameter{Schema: schema}},
				}
			}
		}
		opts = append(opts, openapi3.WithName(status, res))
	}
	if len(opts) == 0 {
		return nil, errors.New("no responses")
	}
	return openapi3.NewResponses(opts...), nil
}

// jsonContent returns the application/json content for the value types, or
// nil without any. Generated objects allow extra properties, so a body can
// fit several of them and they combine as anyOf.
func jsonContent(vs []any) (openapi3.Content, error) {
	refs := make(openapi3.SchemaRefs, 0, len(vs))
	for _, v := range vs {
		ref, err := NewSchemaRefForValue(v)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	switch len(refs) {
	case 0:
		return nil, nil
	case 1:
		return openapi3.NewContentWithJSONSchemaRef(refs[0]), nil
	}
	return openapi3.NewContentWithJSONSchema(&openapi3.Schema{AnyOf: refs}), nil
}

func must(op *openapi3.Operation, err error) *openapi3.Operation {
	if err != nil {
		panic(err)
	}
	return op
}

// Get is [Add] for GET, panicking on error.
func Get(doc *openapi3.T, path, operationID string, ep Endpoint) *openapi3.Operation {
	return must(Add(doc, http.MethodGet, path, operationID, ep))
}

// Post is [Add] for POST, panicking on error.
func Post(doc *openapi3.T, path, operationID string, ep Endpoint) *openapi3.Operation {
	return must(Add(doc, http.MethodPost, path, operationID, ep))
}

// Put is [Add] for PUT, panicking on error.
func Put(doc *openapi3.T, path, operationID string, ep Endpoint) *openapi3.Operation {
	return must(Add(doc, http.MethodPut, path, operationID, ep))
}

// Patch is [Add] for PATCH, panicking on error.
func Patch(doc *openapi3.T, path, operationID string, ep Endpoint) *openapi3.Operation {
	return must(Add(doc, http.MethodPatch, path, operationID, ep))
}

// Delete is [Add] for DELETE, panicking on error.
func Delete(doc *openapi3.T, path, operationID string, ep Endpoint) *openapi3.Operation {
	return must(Add(doc, http.MethodDelete, path, operationID, ep))
}

package apicontract

import (
	"maps"
	"mime"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Contract is a compiled OpenAPI document: every declared operation resolved
// to its validators. It never changes after compilation and may be shared by
// any number of goroutines.
type Contract struct {
	endpoints map[OperationKey]*Endpoint
	keys      []OperationKey
}

// Endpoint aggregates the validators of one operation. A part the
// operation does not declare is nil and its accessor returns a
// *ConfigError.
type Endpoint struct {
	key       OperationKey
	body      *BodyValidator
	params    *ParamsValidator
	responses map[string]*ResponseValidator
}

func compile(doc *openapi3.T, audit *auditor) *Contract {
	c := &Contract{endpoints: make(map[OperationKey]*Endpoint)}
	if doc.Paths == nil {
		return c
	}

	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			key := Key(path, method)
			c.endpoints[key] = compileEndpoint(key, item, op, audit)
			c.keys = append(c.keys, key)
		}
	}
	sortKeys(c.keys)
	return c
}

func compileEndpoint(key OperationKey, item *openapi3.PathItem, op *openapi3.Operation, audit *auditor) *Endpoint {
	ep := &Endpoint{key: key, responses: make(map[string]*ResponseValidator)}

	if rb := op.RequestBody; rb != nil && rb.Value != nil {
		if schema := jsonSchema(rb.Value.Content); schema != nil {
			ep.body = &BodyValidator{key: key, schema: schema, required: rb.Value.Required, audit: audit}
		}
	}

	if params := mergeParams(item.Parameters, op.Parameters); len(params) > 0 {
		ep.params = &ParamsValidator{key: key, params: params, audit: audit}
	}

	if op.Responses != nil {
		for status, ref := range op.Responses.Map() {
			if ref == nil || ref.Value == nil || status == "default" {
				continue
			}
			status = strings.ToUpper(status)
			ep.responses[status] = &ResponseValidator{
				key:     key,
				status:  status,
				schema:  jsonSchema(ref.Value.Content),
				content: len(ref.Value.Content) > 0,
				headers: responseHeaders(ref.Value.Headers),
				audit:   audit,
			}
		}
	}
	return ep
}

// jsonSchema picks the schema of the JSON media type: application/json
// first, then any other JSON type (such as application/problem+json) in
// name order, then a wildcard.
func jsonSchema(content openapi3.Content) *openapi3.SchemaRef {
	if mt := content.Get("application/json"); mt != nil && mt.Schema != nil {
		return mt.Schema
	}
	names := slices.Sorted(maps.Keys(content))
	for _, name := range names {
		if mt := content[name]; mt != nil && mt.Schema != nil && isJSON(name) {
			return mt.Schema
		}
	}
	for _, name := range names {
		if mt := content[name]; mt != nil && mt.Schema != nil && (name == "*/*" || name == "application/*") {
			return mt.Schema
		}
	}
	return nil
}

func isJSON(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// Keys lists the declared operations ordered by path, then method.
func (c *Contract) Keys() []OperationKey {
	return slices.Clone(c.keys)
}

// Resolve returns the endpoint declared at key. The method is matched
// case-insensitively.
func (c *Contract) Resolve(key OperationKey) (*Endpoint, error) {
	key = Key(key.Path, key.Method)
	if err := key.Validate(); err != nil {
		return nil, &ConfigError{Key: key, Message: "invalid operation key", Cause: err}
	}
	ep, ok := c.endpoints[key]
	if !ok {
		return nil, &ConfigError{Key: key, Message: "operation not declared", Known: c.Keys()}
	}
	return ep, nil
}

// Key returns the operation the endpoint was compiled from.
func (e *Endpoint) Key() OperationKey {
	return e.key
}

// Body returns the request body validator.
func (e *Endpoint) Body() (*BodyValidator, error) {
	if e.body == nil {
		return nil, &ConfigError{Key: e.key, Part: PartBody, Message: "no JSON request body declared"}
	}
	return e.body, nil
}

// Parameters returns the parameters validator.
func (e *Endpoint) Parameters() (*ParamsValidator, error) {
	if e.params == nil {
		return nil, &ConfigError{Key: e.key, Part: PartParameters, Message: "no parameters declared"}
	}
	return e.params, nil
}

// Response returns the validator for status: the exact code if declared,
// otherwise its range (for example 4XX). The "default" response is never
// used.
func (e *Endpoint) Response(status int) (*ResponseValidator, error) {
	for _, k := range statusKeys(status) {
		if v, ok := e.responses[k]; ok {
			return v, nil
		}
	}
	return nil, &ConfigError{
		Key:     e.key,
		Part:    PartResponses,
		Status:  status,
		Message: "status not declared (declared: " + strings.Join(e.Statuses(), ", ") + ")",
	}
}

// Statuses lists the declared response status keys in ascending order.
func (e *Endpoint) Statuses() []string {
	return slices.Sorted(maps.Keys(e.responses))
}

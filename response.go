package apicontract

import (
	"bytes"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Response is the response envelope: a body plus, optionally, headers. Body
// follows the same rules as a request body candidate. A nil Header skips the
// header checks.
type Response struct {
	Body   any         `json:"body,omitempty"`
	Header http.Header `json:"headers,omitempty"`
}

// ReadResponse builds a Response from res. The body is read and replaced so
// res can still be consumed by the caller.
func ReadResponse(res *http.Response) (Response, error) {
	var body []byte
	if res.Body != nil {
		b, err := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if err != nil {
			return Response{}, err
		}
		res.Body = io.NopCloser(bytes.NewReader(b))
		body = b
	}
	out := Response{Header: res.Header.Clone()}
	if len(body) > 0 {
		out.Body = json.RawMessage(body)
	}
	return out, nil
}

// ResponseValidator checks responses of one operation for one declared
// status.
type ResponseValidator struct {
	key     OperationKey
	status  string
	schema  *openapi3.SchemaRef
	content bool
	headers []*openapi3.Parameter
	audit   *auditor
}

// Status returns the declared status key this validator was compiled from,
// such as "200" or "4XX".
func (v *ResponseValidator) Status() string {
	return v.status
}

// Validate checks the body against the JSON media type schema and, when
// res.Header is set, the declared headers. A status without content expects
// no body. A status whose content has no JSON media type accepts any body
// as is.
func (v *ResponseValidator) Validate(res Response) Result {
	var found []Violation

	if v.content && v.schema == nil {
		return resultOf(v.checkHeaders(res, found))
	}

	value, present, err := decodeJSON(res.Body)
	switch {
	case err != nil:
		found = append(found, Violation{Location: "/body", Keyword: "json", Reason: err.Error()})
	case !v.content && present:
		found = append(found, Violation{Location: "/body", Reason: "response body is not declared for status " + v.status})
	case v.schema != nil:
		found = append(found, violations(v.schema.Value.VisitJSON(value,
			openapi3.MultiErrors(),
			openapi3.VisitAsResponse(),
		), "/body")...)
		var audited []Violation
		v.audit.walk(v.schema, value, nil, false, &audited)
		for _, a := range audited {
			a.Location = "/body" + a.Location
			found = append(found, a)
		}
	}

	return resultOf(v.checkHeaders(res, found))
}

func (v *ResponseValidator) checkHeaders(res Response, found []Violation) []Violation {
	if res.Header == nil || len(v.headers) == 0 {
		return found
	}
	return append(found, checkParams(v.headers, Params{Header: res.Header}, v.audit, "").Errors...)
}

// responseHeaders turns declared response headers into header parameters so
// they decode and validate like request headers.
func responseHeaders(headers openapi3.Headers) []*openapi3.Parameter {
	out := make([]*openapi3.Parameter, 0, len(headers))
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		ref := headers[name]
		if ref == nil || ref.Value == nil || strings.EqualFold(name, "Content-Type") {
			continue
		}
		p := ref.Value.Parameter
		p.Name = name
		p.In = openapi3.ParameterInHeader
		out = append(out, &p)
	}
	return out
}

// statusKeys lists the keys a status is looked up under: the exact code,
// then its range.
func statusKeys(status int) []string {
	exact := strconv.Itoa(status)
	if status < 100 || status > 599 {
		return []string{exact}
	}
	return []string{exact, exact[:1] + "XX"}
}

// Key returns the operation v belongs to.
func (v *ResponseValidator) Key() OperationKey {
	return v.key
}

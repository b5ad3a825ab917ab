package apicontract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/getkin/kin-openapi/openapi3"
)

// BodyValidator checks request bodies of one operation.
type BodyValidator struct {
	key      OperationKey
	schema   *openapi3.SchemaRef
	required bool
	audit    *auditor
}

// Validate checks a request body. candidate may be raw JSON ([]byte or
// json.RawMessage) or any value that encodes to JSON. A nil candidate or an
// empty byte slice is an absent body.
func (v *BodyValidator) Validate(candidate any) Result {
	value, present, err := decodeJSON(candidate)
	if err != nil {
		return resultOf([]Violation{{Keyword: "json", Reason: err.Error()}})
	}
	if !present {
		if v.required {
			return resultOf([]Violation{{Keyword: "required", Reason: "request body is required"}})
		}
		return accept()
	}

	found := violations(v.schema.Value.VisitJSON(value,
		openapi3.MultiErrors(),
		openapi3.VisitAsRequest(),
	), "")
	v.audit.walk(v.schema, value, nil, true, &found)
	return resultOf(found)
}

// decodeJSON turns a candidate into the generic JSON tree kin-openapi walks,
// keeping numbers as json.Number so they are never rounded before the exact
// format checks see them.
func decodeJSON(candidate any) (value any, present bool, err error) {
	var raw []byte
	switch c := candidate.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		raw = c
	case json.RawMessage:
		raw = c
	default:
		if raw, err = json.Marshal(c); err != nil {
			return nil, false, err
		}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil, false, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false, errors.New("invalid JSON: unexpected data after top-level value")
	}
	return value, true, nil
}

// Key returns the operation v belongs to.
func (v *BodyValidator) Key() OperationKey {
	return v.key
}

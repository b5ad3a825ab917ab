// Package contracttest holds testify assertions that check handler responses
// against an apicontract registry.
//
//	rec := httptest.NewRecorder()
//	handler.ServeHTTP(rec, req)
//	contracttest.RequireResponse(t, reg, apicontract.Key("/widgets", "get"), rec.Code,
//		contracttest.RecordedResponse(rec))
package contracttest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"

	"github.com/Gobd/apicontract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tHelper interface {
	Helper()
}

// AssertResponse checks res against the response key declares for status.
// On failure it reports the violations as indented JSON and returns false.
// A status the operation does not declare is a failure too.
func AssertResponse(t assert.TestingT, reg *apicontract.Registry, key apicontract.OperationKey, status int, res apicontract.Response) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	lookup, err := reg.ResponseValidator(key)
	if err != nil {
		return assert.Fail(t, "response validator lookup failed", err.Error())
	}
	v, err := lookup(status)
	if err != nil {
		return assert.Fail(t, "response validator lookup failed", err.Error())
	}

	result := v.Validate(res)
	if result.Valid {
		return true
	}
	out, err := json.MarshalIndent(result.Errors, "", "  ")
	if err != nil {
		return assert.Fail(t, "response does not match the contract", err.Error())
	}
	return assert.Fail(t, "response does not match the contract", "%s %d:\n%s", key, status, out)
}

// RequireResponse is like AssertResponse but stops the test on failure.
func RequireResponse(t require.TestingT, reg *apicontract.Registry, key apicontract.OperationKey, status int, res apicontract.Response) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if !AssertResponse(t, reg, key, status, res) {
		t.FailNow()
	}
}

// ValidateResponse resolves the registry for src through c and asserts res
// against path and method. Building the contract happens once per source
// and cache, however many tests share them.
func ValidateResponse(t assert.TestingT, c *apicontract.Cache, src apicontract.Source, path, method string, status int, res apicontract.Response) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	reg, err := c.Get(context.Background(), src)
	if err != nil {
		return assert.Fail(t, "loading contract", err.Error())
	}
	return AssertResponse(t, reg, apicontract.Key(path, method), status, res)
}

// RecordedResponse turns what a handler wrote to rec into a Response.
// The recorder's body is left unread.
func RecordedResponse(rec *httptest.ResponseRecorder) apicontract.Response {
	res := apicontract.Response{Header: rec.Header().Clone()}
	if rec.Body != nil && rec.Body.Len() > 0 {
		res.Body = json.RawMessage(bytes.Clone(rec.Body.Bytes()))
	}
	return res
}

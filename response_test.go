package apicontract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ac "github.com/Gobd/apicontract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseValidator(t *testing.T, status int) *ac.ResponseValidator {
	t.Helper()
	reg := build(t, "testdata/private.yaml")
	lookup, err := reg.ResponseValidator(ac.Key("/route-with-response-body", "get"))
	require.NoError(t, err)
	rv, err := lookup(status)
	require.NoError(t, err)
	return rv
}

func TestResponseBody(t *testing.T) {
	rv := responseValidator(t, http.StatusOK)

	tests := []struct {
		name     string
		body     any
		location string
	}{
		{name: "valid", body: map[string]any{"dateProp": "2020-01-02", "numberProp": 1.5}},
		{name: "raw", body: []byte(`{"dateProp": "2020-01-02"}`)},
		{name: "bad date", body: map[string]any{"dateProp": "invalid-date"}, location: "/body/dateProp"},
		{name: "missing property", body: map[string]any{"numberProp": 1}, location: "/body/dateProp"},
		{name: "additional property", body: map[string]any{"dateProp": "2020-01-02", "extra": true}, location: "/body"},
		{name: "invalid JSON", body: json.RawMessage(`{`), location: "/body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rv.Validate(ac.Response{Body: tt.body})
			if tt.location == "" {
				assert.True(t, res.Valid, res.Errors)
				return
			}
			require.False(t, res.Valid)
			require.Len(t, res.Errors, 1, res.Errors)
			assert.Equal(t, tt.location, res.Errors[0].Location)
		})
	}
}

func TestResponseHeaders(t *testing.T) {
	rv := responseValidator(t, http.StatusOK)
	body := map[string]any{"dateProp": "2020-01-02"}

	assert.True(t, rv.Validate(ac.Response{Body: body}).Valid, "nil headers are not checked")

	h := http.Header{}
	h.Set("X-Rate-Limit", "2147483647")
	assert.True(t, rv.Validate(ac.Response{Body: body, Header: h}).Valid)

	h.Set("X-Rate-Limit", "2147483648")
	res := rv.Validate(ac.Response{Body: body, Header: h})
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "/headers/X-Rate-Limit", res.Errors[0].Location)
}

func TestResponseStatusRange(t *testing.T) {
	rv := responseValidator(t, http.StatusNotFound)
	assert.Equal(t, "4XX", rv.Status())

	assert.True(t, rv.Validate(ac.Response{Body: map[string]any{"title": "not found"}}).Valid)

	res := rv.Validate(ac.Response{Body: map[string]any{}})
	require.False(t, res.Valid)
	assert.Equal(t, "/body/title", res.Errors[0].Location)
	assert.Equal(t, "required", res.Errors[0].Keyword)
}

func TestResponseWithoutContent(t *testing.T) {
	rv := responseValidator(t, http.StatusNoContent)

	assert.True(t, rv.Validate(ac.Response{}).Valid)
	assert.True(t, rv.Validate(ac.Response{Body: []byte("  ")}).Valid)

	res := rv.Validate(ac.Response{Body: map[string]any{"a": 1}})
	require.False(t, res.Valid)
	assert.Equal(t, "/body", res.Errors[0].Location)
	assert.Contains(t, res.Errors[0].Reason, "204")
}

const health = `
openapi: 3.0.3
info:
  title: health
  version: 1.0.0
paths:
  /health:
    get:
      responses:
        "200":
          description: ok
          headers:
            X-Checks:
              schema:
                type: integer
          content:
            text/plain:
              schema:
                type: string
`

func TestResponseNonJSONContent(t *testing.T) {
	reg, err := ac.Build(context.Background(), ac.FromData("health", []byte(health)))
	require.NoError(t, err)
	lookup, err := reg.ResponseValidator(ac.Key("/health", http.MethodGet))
	require.NoError(t, err)
	rv, err := lookup(http.StatusOK)
	require.NoError(t, err)

	res := rv.Validate(ac.Response{Body: json.RawMessage("ok")})
	assert.True(t, res.Valid, res.Errors)
	assert.True(t, rv.Validate(ac.Response{Body: "ok"}).Valid)
	assert.True(t, rv.Validate(ac.Response{}).Valid)

	res = rv.Validate(ac.Response{Body: json.RawMessage("ok"), Header: http.Header{"X-Checks": {"many"}}})
	require.False(t, res.Valid, "headers are still checked")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "/headers/X-Checks", res.Errors[0].Location)
}

func TestReadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Rate-Limit", "10")
		_, _ = io.WriteString(w, `{"dateProp": "2020-01-02"}`)
	}))
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	got, err := ac.ReadResponse(res)
	require.NoError(t, err)
	assert.Equal(t, "10", got.Header.Get("X-Rate-Limit"))

	rest, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(rest), `{"dateProp"`), "body is restored")

	rv := responseValidator(t, res.StatusCode)
	assert.True(t, rv.Validate(got).Valid)
}

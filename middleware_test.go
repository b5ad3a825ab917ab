package apicontract_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ac "github.com/Gobd/apicontract"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyMiddleware(t *testing.T) {
	reg := build(t, "testdata/private.yaml")

	var seen string
	r := chi.NewRouter()
	r.With(reg.BodyMiddlewareMust(ac.Key("/route-with-request-body", "post"))).
		Post("/route-with-request-body", func(w http.ResponseWriter, req *http.Request) {
			b, _ := io.ReadAll(req.Body)
			seen = string(b)
			w.WriteHeader(http.StatusCreated)
		})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"validRequiredProperty": "a"}`, http.StatusCreated},
		{"missing property", `{"invalidProperty": "a"}`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"int64 overflow", `{"validRequiredProperty": "a", "count": 9223372036854775808}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/route-with-request-body", strings.NewReader(tt.body))
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusBadRequest {
				assert.Equal(t, tt.body, seen, "body is restored for the handler")
				return
			}
			assert.Empty(t, seen, "handler is not called")
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var errs []ac.Violation
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs))
			assert.NotEmpty(t, errs)
		})
	}
}

func TestParamsMiddlewareChi(t *testing.T) {
	reg := build(t, "testdata/private.yaml")
	route := "/route-with-path-params/{dateParam}/{stringParam}"

	r := chi.NewRouter()
	r.With(reg.ParamsMiddlewareMust(ac.Key(route, "post"), ac.ChiPathParams)).
		Post(route, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/route-with-path-params/2020-01-02/x", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/route-with-path-params/invalid-date/x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errs []ac.Violation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "/path/dateParam", errs[0].Location)
}

func TestParamsMiddlewareServeMux(t *testing.T) {
	reg := build(t, "testdata/private.yaml")

	mux := http.NewServeMux()
	mw := reg.ParamsMiddlewareMust(
		ac.Key("/route-with-path-params/{dateParam}/{stringParam}", "post"),
		ac.ServeMuxPathParams("dateParam", "stringParam"),
	)
	mux.Handle("POST /route-with-path-params/{dateParam}/{stringParam}", mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/route-with-path-params/2020-01-02/x", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/route-with-path-params/2020-13-45/x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeMuxPathParamsEmptyWildcard(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/{rest...}", func(_ http.ResponseWriter, r *http.Request) {
		got = ac.ServeMuxPathParams("rest", "other")(r)
	})
	mux.HandleFunc("GET /users/{id}", func(_ http.ResponseWriter, r *http.Request) {
		got = ac.ServeMuxPathParams("id", "rest")(r)
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/", nil))
	assert.Equal(t, map[string]string{"rest": ""}, got)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/a/b", nil))
	assert.Equal(t, map[string]string{"rest": "a/b"}, got)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil))
	assert.Equal(t, map[string]string{"id": "7"}, got)
}

func TestQueryAndHeaderMiddleware(t *testing.T) {
	reg := build(t, "testdata/private.yaml")
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	query := reg.QueryMiddlewareMust(ac.Key("/route-with-query-params", "get"))(ok)
	header := reg.HeaderMiddlewareMust(ac.Key("/route-with-header", "get"))(ok)

	rec := httptest.NewRecorder()
	query.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/route-with-query-params?stringParam=a&dateParam=2020-01-02", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	query.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/route-with-query-params?stringParam=a", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/route-with-header", nil)
	req.Header.Set("x-date-header", "2020-01-02")
	rec = httptest.NewRecorder()
	header.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	header.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/route-with-header", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddlewareWiringErrors(t *testing.T) {
	reg := build(t, "testdata/private.yaml")

	_, err := reg.HeaderMiddleware(ac.Key("/route-with-request-body", "post"))
	assert.ErrorIs(t, err, ac.ErrConfig)

	assert.Panics(t, func() {
		reg.BodyMiddlewareMust(ac.Key("/route-with-header", "get"))
	})
	assert.NotPanics(t, func() {
		reg.BodyMiddlewareMust(ac.Key("/route-with-request-body", "post"))
	})
}

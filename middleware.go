package apicontract

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// PathParamsFunc extracts the path parameters a router matched for r.
type PathParamsFunc func(r *http.Request) map[string]string

// ChiPathParams reads path parameters from the chi route context.
func ChiPathParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		out[k] = rctx.URLParams.Values[i]
	}
	return out
}

// ServeMuxPathParams reads the named wildcards from a net/http ServeMux
// match. Names absent from the matched pattern are left out. A wildcard in
// the pattern is reported even when it matched the empty string.
func ServeMuxPathParams(names ...string) PathParamsFunc {
	return func(r *http.Request) map[string]string {
		out := make(map[string]string, len(names))
		for _, n := range names {
			v := r.PathValue(n)
			if v != "" || inPattern(r.Pattern, n) {
				out[n] = v
			}
		}
		return out
	}
}

func inPattern(pattern, name string) bool {
	return strings.Contains(pattern, "{"+name+"}") || strings.Contains(pattern, "{"+name+"...}")
}

// BodyMiddleware rejects requests whose JSON body does not match the
// operation's request body schema. The body is restored for the next
// handler.
func (r *Registry) BodyMiddleware(key OperationKey) (func(http.Handler) http.Handler, error) {
	check, err := r.BodyChecker(key)
	if err != nil {
		return nil, err
	}
	return r.middleware(key, func(req *http.Request) Result {
		if req.Body == nil {
			return check(nil)
		}
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
		if err != nil {
			return resultOf([]Violation{{Reason: "reading request body: " + err.Error()}})
		}
		return check(json.RawMessage(body))
	}), nil
}

// ParamsMiddleware rejects requests whose path parameters, as returned by
// extract, do not match the operation.
func (r *Registry) ParamsMiddleware(key OperationKey, extract PathParamsFunc) (func(http.Handler) http.Handler, error) {
	check, err := r.ParamsChecker(key)
	if err != nil {
		return nil, err
	}
	return r.middleware(key, func(req *http.Request) Result {
		return check(extract(req))
	}), nil
}

// QueryMiddleware rejects requests whose query string does not match the
// operation.
func (r *Registry) QueryMiddleware(key OperationKey) (func(http.Handler) http.Handler, error) {
	check, err := r.QueryChecker(key)
	if err != nil {
		return nil, err
	}
	return r.middleware(key, func(req *http.Request) Result {
		return check(req.URL.Query())
	}), nil
}

// HeaderMiddleware rejects requests whose headers do not match the
// operation's header parameters.
func (r *Registry) HeaderMiddleware(key OperationKey) (func(http.Handler) http.Handler, error) {
	check, err := r.HeaderChecker(key)
	if err != nil {
		return nil, err
	}
	return r.middleware(key, func(req *http.Request) Result {
		return check(req.Header)
	}), nil
}

// BodyMiddlewareMust is like [Registry.BodyMiddleware] but panics on error.
func (r *Registry) BodyMiddlewareMust(key OperationKey) func(http.Handler) http.Handler {
	return must(r.BodyMiddleware(key))
}

// ParamsMiddlewareMust is like [Registry.ParamsMiddleware] but panics on error.
func (r *Registry) ParamsMiddlewareMust(key OperationKey, extract PathParamsFunc) func(http.Handler) http.Handler {
	return must(r.ParamsMiddleware(key, extract))
}

// QueryMiddlewareMust is like [Registry.QueryMiddleware] but panics on error.
func (r *Registry) QueryMiddlewareMust(key OperationKey) func(http.Handler) http.Handler {
	return must(r.QueryMiddleware(key))
}

// HeaderMiddlewareMust is like [Registry.HeaderMiddleware] but panics on error.
func (r *Registry) HeaderMiddlewareMust(key OperationKey) func(http.Handler) http.Handler {
	return must(r.HeaderMiddleware(key))
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// middleware runs check before next. A rejected request gets 400 with the
// violation list as its JSON body and next is not called.
func (r *Registry) middleware(key OperationKey, check func(*http.Request) Result) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			res := check(req)
			if res.Valid {
				next.ServeHTTP(w, req)
				return
			}

			r.logger.DebugContext(req.Context(), "request rejected",
				slog.String("operation", key.String()),
				slog.Int("violations", len(res.Errors)),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(res.Errors)
		})
	}
}

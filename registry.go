package apicontract

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Gobd/apicontract/formats"
)

// Registry is a compiled contract plus the factories that turn its
// operations into checkers. It is safe for concurrent use; build it once per
// contract and keep it (see Cache).
type Registry struct {
	source   Source
	contract *Contract
	logger   *slog.Logger
}

// Build loads and compiles the contract from src. The built-in numeric
// formats are installed into kin-openapi on first use. The returned error is
// a *SourceError when the contract cannot be loaded and a *ConfigError when
// an option is invalid.
func Build(ctx context.Context, src Source, opts ...Option) (*Registry, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	formats.Install()

	doc, err := src.load(ctx, cfg)
	if err != nil {
		cfg.logger.Debug("contract load failed", slog.String("source", src.String()), slog.Any("error", err))
		return nil, err
	}

	c := compile(doc, newAuditor(cfg.formats, cfg.nullableBodies))
	cfg.logger.Debug("contract compiled",
		slog.String("source", src.String()),
		slog.Int("operations", len(c.keys)),
		slog.Int("custom_formats", len(cfg.formats)),
	)

	return &Registry{source: src, contract: c, logger: cfg.logger}, nil
}

// Source returns the source the registry was built from.
func (r *Registry) Source() Source {
	return r.source
}

// Contract returns the compiled contract.
func (r *Registry) Contract() *Contract {
	return r.contract
}

// BodyChecker returns a checker for request bodies of key.
func (r *Registry) BodyChecker(key OperationKey) (Checker[any], error) {
	ep, err := r.contract.Resolve(key)
	if err != nil {
		return nil, err
	}
	v, err := ep.Body()
	if err != nil {
		return nil, err
	}
	return v.Validate, nil
}

// ParamsChecker returns a checker for the path parameters of key.
func (r *Registry) ParamsChecker(key OperationKey) (Checker[map[string]string], error) {
	v, err := r.parameters(key)
	if err != nil {
		return nil, err
	}
	return func(path map[string]string) Result {
		if path == nil {
			path = map[string]string{}
		}
		return v.Validate(Params{Path: path})
	}, nil
}

// QueryChecker returns a checker for the query parameters of key.
func (r *Registry) QueryChecker(key OperationKey) (Checker[url.Values], error) {
	v, err := r.parameters(key)
	if err != nil {
		return nil, err
	}
	return func(query url.Values) Result {
		if query == nil {
			query = url.Values{}
		}
		return v.Validate(Params{Query: query})
	}, nil
}

// HeaderChecker returns a checker for the header parameters of key.
func (r *Registry) HeaderChecker(key OperationKey) (Checker[http.Header], error) {
	v, err := r.parameters(key)
	if err != nil {
		return nil, err
	}
	return func(header http.Header) Result {
		if header == nil {
			header = http.Header{}
		}
		return v.Validate(Params{Header: header})
	}, nil
}

func (r *Registry) parameters(key OperationKey) (*ParamsValidator, error) {
	ep, err := r.contract.Resolve(key)
	if err != nil {
		return nil, err
	}
	return ep.Parameters()
}

// ResponseValidator resolves key and returns a lookup from status code to
// that status's response validator. An undeclared status makes the lookup
// return a *ConfigError.
func (r *Registry) ResponseValidator(key OperationKey) (func(status int) (*ResponseValidator, error), error) {
	ep, err := r.contract.Resolve(key)
	if err != nil {
		return nil, err
	}
	return ep.Response, nil
}

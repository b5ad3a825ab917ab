package apicontract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/oasdiff/yaml"
)

type sourceKind int

const (
	kindFile sourceKind = iota + 1
	kindURL
	kindData
	kindDocument
)

func (k sourceKind) String() string {
	switch k {
	case kindFile:
		return "file"
	case kindURL:
		return "url"
	case kindData:
		return "data"
	case kindDocument:
		return "document"
	}
	return "unknown"
}

// Source is where a contract comes from. OpenAPI 3 and Swagger 2.0
// documents are accepted, in YAML or JSON; Swagger 2.0 is converted.
type Source struct {
	kind sourceKind
	name string
	data []byte
	doc  *openapi3.T
}

// FromFile reads the contract from a file.
func FromFile(path string) Source {
	return Source{kind: kindFile, name: path}
}

// FromURL fetches the contract over HTTP(S).
func FromURL(rawURL string) Source {
	return Source{kind: kindURL, name: rawURL}
}

// FromData reads the contract from memory. name identifies it in errors and
// in a Cache. Relative external references cannot be resolved.
func FromData(name string, data []byte) Source {
	return Source{kind: kindData, name: name, data: data}
}

// FromDocument uses an already parsed document. Its references are resolved
// in place, so doc must not be modified afterwards.
func FromDocument(name string, doc *openapi3.T) Source {
	return Source{kind: kindDocument, name: name, doc: doc}
}

// FromLocation returns FromURL for http and https URLs and FromFile for
// anything else.
func FromLocation(location string) Source {
	if govalidator.IsRequestURL(location) {
		if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			return FromURL(location)
		}
	}
	return FromFile(location)
}

// Name returns the name the source was created with.
func (s Source) Name() string {
	return s.name
}

// String renders the source as kind:name.
func (s Source) String() string {
	return s.kind.String() + ":" + s.name
}

// identity is the Cache key. Files are keyed by absolute path.
func (s Source) identity() string {
	if s.kind == kindFile {
		if abs, err := filepath.Abs(s.name); err == nil {
			return s.kind.String() + ":" + abs
		}
	}
	return s.String()
}

func (s Source) load(ctx context.Context, cfg *config) (*openapi3.T, error) {
	if s.kind == 0 {
		return nil, &SourceError{Message: "empty source"}
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = cfg.externalRefs

	var (
		doc *openapi3.T
		err error
	)
	switch s.kind {
	case kindFile:
		var data []byte
		if data, err = os.ReadFile(s.name); err != nil {
			return nil, &SourceError{Source: s.name, Message: "reading file", Cause: err}
		}
		doc, err = loadData(loader, data, &url.URL{Path: filepath.ToSlash(s.name)})
	case kindURL:
		var u *url.URL
		if u, err = url.Parse(s.name); err != nil {
			return nil, &SourceError{Source: s.name, Message: "parsing URL", Cause: err}
		}
		var data []byte
		if data, err = fetch(ctx, u); err != nil {
			return nil, &SourceError{Source: s.name, Message: "fetching document", Cause: err}
		}
		doc, err = loadData(loader, data, u)
	case kindData:
		doc, err = loadData(loader, s.data, nil)
	case kindDocument:
		if s.doc == nil {
			return nil, &SourceError{Source: s.name, Message: "nil document"}
		}
		doc = s.doc
		err = loader.ResolveRefsIn(doc, nil)
	}
	if err != nil {
		return nil, &SourceError{Source: s.name, Message: "loading document", Cause: err}
	}

	if cfg.validateDoc {
		if err := doc.Validate(ctx); err != nil {
			return nil, &SourceError{Source: s.name, Message: "invalid document", Cause: err}
		}
	}
	return doc, nil
}

// loadData parses an OpenAPI 3 or Swagger 2.0 document. location, when set,
// anchors relative references.
func loadData(loader *openapi3.Loader, data []byte, location *url.URL) (*openapi3.T, error) {
	var probe struct {
		Swagger any `json:"swagger"`
		OpenAPI any `json:"openapi"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch {
	case probe.Swagger != nil:
		var doc2 openapi2.T
		if err := yaml.Unmarshal(data, &doc2); err != nil {
			return nil, err
		}
		return openapi2conv.ToV3WithLoader(&doc2, loader, location)
	case probe.OpenAPI == nil:
		return nil, errors.New("neither an OpenAPI 3 nor a Swagger 2.0 document")
	case location != nil:
		return loader.LoadFromDataWithPath(data, location)
	}
	return loader.LoadFromData(data)
}

func fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/yaml, application/json;q=0.9, */*;q=0.8")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", strings.TrimSpace(res.Status))
	}
	return io.ReadAll(res.Body)
}

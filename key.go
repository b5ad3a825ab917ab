package apicontract

import (
	"cmp"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var methods = []any{
	"get", "put", "post", "delete", "options", "head", "patch", "trace", "connect",
}

// OperationKey addresses one operation of a contract: the route template
// exactly as declared (placeholders included) and the lowercase HTTP method.
type OperationKey struct {
	Path   string
	Method string
}

// Key builds an OperationKey, lowercasing method.
func Key(path, method string) OperationKey {
	return OperationKey{Path: path, Method: strings.ToLower(method)}
}

// Validate checks that the key is well formed.
func (k OperationKey) Validate() error {
	return validation.ValidateStruct(&k,
		validation.Field(&k.Path, validation.Required, validation.By(routeTemplate)),
		validation.Field(&k.Method, validation.Required, validation.In(methods...)),
	)
}

// IsZero reports whether k is the zero key.
func (k OperationKey) IsZero() bool {
	return k.Path == "" && k.Method == ""
}

// String renders the key as "METHOD path".
func (k OperationKey) String() string {
	return strings.ToUpper(k.Method) + " " + k.Path
}

func routeTemplate(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "/") {
		return validation.NewError("validation_route_template", "must start with /")
	}
	return nil
}

func sortKeys(keys []OperationKey) {
	slices.SortFunc(keys, func(a, b OperationKey) int {
		if c := cmp.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return cmp.Compare(methodRank(a.Method), methodRank(b.Method))
	})
}

func methodRank(m string) int {
	for i, v := range methods {
		if v == m {
			return i
		}
	}
	return len(methods)
}

package openapi

import (
	"reflect"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// NewSchemaRefForValue generates an OpenAPI schema for the given value.
// Struct fields are named by their json tags. Two more tags refine the
// result:
//
//	Name   string   `json:"name" docs:"required"`
//	Tags   []string `json:"tags" format:"sku"`
//	Secret string   `json:"secret" docs:"skip"`
//
// Go integer and float kinds get the matching numeric format (int32, int64,
// float, double). A format tag on a slice or map applies to its elements.
func NewSchemaRefForValue(value any) (*openapi3.SchemaRef, error) {
	g := openapi3gen.NewGenerator(openapi3gen.SchemaCustomizer(customize))
	return g.NewSchemaRefForValue(value, nil)
}

func customize(_ string, t reflect.Type, tag reflect.StructTag, schema *openapi3.Schema) error {
	if format, ok := tag.Lookup("format"); ok && !schema.Type.Is(openapi3.TypeArray) && !schema.Type.Is(openapi3.TypeObject) {
		schema.Format = format
	}
	if t.Kind() == reflect.Struct {
		describeStruct(t, schema)
	}
	return nil
}

// describeStruct applies the docs tag of each field of t to schema.
// Embedded structs are walked as part of t.
func describeStruct(t reflect.Type, schema *openapi3.Schema) {
	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.Anonymous {
			ft := sf.Type
			for ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				describeStruct(ft, schema)
			}
			continue
		}

		name := strings.Split(sf.Tag.Get("json"), ",")[0]
		if _, ok := schema.Properties[name]; !ok {
			continue
		}
		docs := strings.Split(sf.Tag.Get("docs"), ",")
		switch {
		case slices.Contains(docs, "skip"):
			delete(schema.Properties, name)
		case slices.Contains(docs, "required") && !slices.Contains(schema.Required, name):
			schema.Required = append(schema.Required, name)
		}
	}
}

// Integer returns an integer schema with format, which may be empty.
func Integer(format string) *openapi3.SchemaRef {
	return openapi3.NewIntegerSchema().WithFormat(format).NewRef()
}

// Number returns a number schema with format, which may be empty.
func Number(format string) *openapi3.SchemaRef {
	return openapi3.NewFloat64Schema().WithFormat(format).NewRef()
}

// String returns a string schema with format, which may be empty.
func String(format string) *openapi3.SchemaRef {
	return openapi3.NewStringSchema().WithFormat(format).NewRef()
}

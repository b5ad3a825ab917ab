package openapi_test

import (
	"fmt"

	"github.com/Gobd/apicontract/openapi"
	"github.com/getkin/kin-openapi/openapi3"
)

type Item struct {
	Name   string   `json:"name" docs:"required"`
	Price  float64  `json:"price"`
	Stock  int32    `json:"stock"`
	Tags   []string `json:"tags" format:"sku"`
	Secret string   `json:"secret" docs:"skip"`
}

func ExamplePost() {
	doc := openapi.DocBase("Shop API", "Example API", "1.0.0")

	openapi.Post(doc, "/items", "createItem", openapi.Endpoint{
		Summary:  "Create an item",
		Request:  Item{},
		Response: Item{},
	})

	fmt.Println(doc.Paths.Value("/items").Post.OperationID)
	// Output: createItem
}

func ExampleDocBase() {
	doc := openapi.DocBase("My Service", "A cool service", "0.1.0")
	fmt.Println(doc.Info.Title)
	fmt.Println(doc.OpenAPI)
	// Output:
	// My Service
	// 3.0.3
}

func ExampleGet() {
	doc := openapi.DocBase("Shop API", "Example API", "1.0.0")

	openapi.Get(doc, "/items/{id}", "getItem", openapi.Endpoint{
		Summary:    "Fetch an item",
		Parameters: openapi3.Parameters{openapi.PathParam("id", openapi.Integer("int64"))},
		Response:   Item{},
	})

	op := doc.Paths.Value("/items/{id}").Get
	fmt.Println(op.OperationID, op.Parameters[0].Value.In, op.Parameters[0].Value.Schema.Value.Format)
	// Output: getItem path int64
}

func ExampleNewSchemaRefForValue() {
	ref, err := openapi.NewSchemaRefForValue(Item{})
	if err != nil {
		panic(err)
	}
	s := ref.Value
	fmt.Println(s.Required)
	fmt.Println(s.Properties["price"].Value.Format, s.Properties["stock"].Value.Format)
	fmt.Println(s.Properties["tags"].Value.Items.Value.Format)
	_, ok := s.Properties["secret"]
	fmt.Println(ok)
	// Output:
	// [name]
	// double int32
	// sku
	// false
}

// Package openapi builds OpenAPI 3 contracts from Go types, for services
// that keep their contract in code rather than in a YAML file.
//
// Use [DocBase] to create a base document and register endpoints with [Add],
// which reports mismatched path parameters and bad status keys as errors, or
// with the panicking [Get], [Post], [Put], [Patch], and [Delete]. Request and
// response schemas are generated from Go values by [NewSchemaRefForValue].
// Several body types for one request or status combine as anyOf. The
// finished document is handed to apicontract.FromDocument:
//
//	doc := openapi.DocBase("orders", "Order service", "1.0")
//	openapi.Post(doc, "/orders/{id}", "createOrder", openapi.Endpoint{
//	    Parameters: openapi3.Parameters{openapi.PathParam("id", openapi.Integer("int64"))},
//	    Request:    Order{},
//	    Response:   Order{},
//	})
//	reg, err := apicontract.Build(ctx, apicontract.FromDocument("orders", doc))
package openapi

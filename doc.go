// Package apicontract validates HTTP requests and responses against an
// OpenAPI contract.
//
// Build a [Registry] once per contract, then ask it for checkers by
// operation key. Lookups happen at wiring time, so a misspelled route or a
// part the contract does not declare fails with a [ConfigError] before any
// traffic arrives:
//
//	reg, err := apicontract.Build(ctx, apicontract.FromFile("openapi.yaml"))
//	if err != nil {
//	    return err
//	}
//	create := apicontract.Key("/widgets", http.MethodPost)
//	r.With(reg.BodyMiddlewareMust(create)).Post("/widgets", createWidget)
//
// A checker returns a [Result]. Failing validation is not an error: the
// result carries the violations and the middleware answers 400 with them.
//
// Numbers are decoded as [encoding/json.Number] and the numeric formats
// (int32, int64, float, double) are checked with exact arithmetic, so values
// at the edges of the int64 and float64 ranges are classified correctly. See
// package formats.
//
// Sub-packages:
//   - formats – exact numeric format ranges and predicates
//   - openapi – building contracts from Go types
//   - contracttest – testify assertions for response checking
package apicontract

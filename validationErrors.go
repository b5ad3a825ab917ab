package apicontract

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationErrors is a map of locations to their validation errors.
// It is an alias for [validation.Errors] from ozzo-validation and implements
// the error interface with a JSON-friendly string representation.
type ValidationErrors = validation.Errors

// rootLocation keys violations of the candidate as a whole.
const rootLocation = "(root)"

// Err returns nil for a valid result and otherwise the violations as
// [ValidationErrors], keyed by location. Reasons at the same location are
// joined with "; ".
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	reasons := make(map[string][]string)
	for _, v := range r.Errors {
		loc := v.Location
		if loc == "" {
			loc = rootLocation
		}
		reasons[loc] = append(reasons[loc], v.Reason)
	}
	errs := make(ValidationErrors, len(reasons))
	for loc, rs := range reasons {
		errs[loc] = errors.New(strings.Join(rs, "; "))
	}
	return errs
}

package steps

import "errors"

// Error kinds surfaced by the invoice operations. Callers match them with errors.Is;
// the underlying cause stays in the chain.
var (
	ErrFetch           = errors.New("fetch failure")
	ErrExtraction      = errors.New("extraction failure")
	ErrIdentityLookup  = errors.New("identity lookup failure")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrQuery           = errors.New("query failure")
	ErrInvalidArgument = errors.New("invalid argument")
)

package apperr

import "errors"

// failure kinds surfaced to API callers
var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotFound            = errors.New("not found")
	ErrMalformedIdentifier = errors.New("malformed identifier")
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateUsername   = errors.New("duplicate username")
)

const CodeInternal = "INTERNAL"

var codes = []struct {
	err  error
	code string
}{
	{ErrUnauthenticated, "UNAUTHENTICATED"},
	{ErrPermissionDenied, "PERMISSION_DENIED"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrMalformedIdentifier, "MALFORMED_IDENTIFIER"},
	{ErrInvalidInput, "INVALID_INPUT"},
	{ErrDuplicateUsername, "DUPLICATE_USERNAME"},
}

// Code returns the API error code of err, or CodeInternal when err
// does not wrap any of the known failure kinds.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// IsKnown reports whether err is one of the failure kinds that are safe
// to show to the caller as is.
func IsKnown(err error) bool {
	return Code(err) != CodeInternal
}

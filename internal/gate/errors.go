package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

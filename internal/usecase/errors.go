package usecase

import "errors"

// Sentinel errors the HTTP layer translates into status codes. Services
// wrap them with context via fmt.Errorf("%w: ...").
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

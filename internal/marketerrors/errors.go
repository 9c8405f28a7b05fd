package marketerrors

import "errors"

// Backend-level errors
var (
	ErrTransport  = errors.New("backend unreachable")
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("document not found")
	ErrValidation = errors.New("invalid request")
)

// business logic errors
var (
	ErrInvalidItem  = errors.New("invalid item")
	ErrNotOwner     = errors.New("item belongs to another user")
	ErrInvalidQuery = errors.New("invalid query")
)

package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrTimeout     = errors.New("operation timed out")
	ErrUnsupported = errors.New("operation not supported by backend")
)

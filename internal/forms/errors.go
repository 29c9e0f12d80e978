package forms

import "errors"

var (
	ErrNotFound       = errors.New("form not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrSchemaMismatch = errors.New("schema mismatch")
)

package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrCorrupt       = errors.New("corrupt task file")
)

package store

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("already exists")
	// ErrPreconditionFailed is returned by conditional writes when the row
	// exists but its current state no longer matches the expected one.
	ErrPreconditionFailed = errors.New("precondition failed")
)

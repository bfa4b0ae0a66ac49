// Package internalerr collects the sentinel errors shared across the
// summarizer packages, so callers can use errors.Is instead of string
// matching.
package internalerr

import "errors"

// Sentinel errors for common cases.
var (
	ErrConfiguration   = errors.New("invalid configuration")
	ErrInput           = errors.New("invalid input")
	ErrEmptyCollection = errors.New("empty document collection")
	ErrNotFound        = errors.New("not found")
)

package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("competitor not found")
	ErrInvalidLimit = errors.New("invalid rankings limit")
	ErrNotPublished = errors.New("no snapshot published yet")
)

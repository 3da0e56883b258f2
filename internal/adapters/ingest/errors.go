package ingest

import "errors"

// Sentinel errors returned by the readers.
var (
	ErrEmptyInput        = errors.New("input has no header row")
	ErrMissingColumn     = errors.New("required column missing")
	ErrMalformedRow      = errors.New("malformed match row")
	ErrUnsupportedFormat = errors.New("unsupported file type")
)

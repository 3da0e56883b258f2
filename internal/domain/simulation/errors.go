package simulation

import "errors"

// Sentinel errors returned by Run.
var (
	ErrOutOfOrder = errors.New("match records out of chronological order")
	ErrNilEngine  = errors.New("nil rating engine")
)

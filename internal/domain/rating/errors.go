package rating

import "errors"

// Sentinel kinds for rating errors.
var (
	ErrInvalidMatch  = errors.New("invalid match")
	ErrInvalidPolicy = errors.New("invalid rating policy")
)

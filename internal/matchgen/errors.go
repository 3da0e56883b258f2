package matchgen

import "errors"

// Sentinel errors for generator configuration.
var (
	ErrTooFewCompetitors = errors.New("at least two competitors per category are required")
	ErrNoCategories      = errors.New("at least one category is required")
	ErrInvalidRate       = errors.New("rate must be within [0, 1]")
)

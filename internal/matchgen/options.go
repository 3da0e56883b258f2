package matchgen

import (
	"time"

	"github.com/okian/fightelo/pkg/logger"
)

// Option configures a Generator.
type Option func(*Generator)

// WithSeed fixes the random source. Equal seeds produce equal output.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithMatches sets the number of matches to generate.
func WithMatches(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.matches = n
		}
	}
}

// WithCompetitors sets the roster size per category.
func WithCompetitors(perCategory int) Option {
	return func(g *Generator) {
		g.perCategory = perCategory
	}
}

// WithCategories sets the divisions competitors are drawn into.
func WithCategories(categories ...string) Option {
	return func(g *Generator) {
		g.categories = categories
	}
}

// WithStart sets the date of the first card.
func WithStart(start time.Time) Option {
	return func(g *Generator) {
		if !start.IsZero() {
			g.start = start
		}
	}
}

// WithNoContestRate sets the share of bouts that end without a winner.
func WithNoContestRate(rate float64) Option {
	return func(g *Generator) {
		g.noContestRate = rate
	}
}

// WithTitleRate sets the share of bouts booked as title fights.
func WithTitleRate(rate float64) Option {
	return func(g *Generator) {
		g.titleRate = rate
	}
}

// WithCrossoverRate sets the share of bouts fought in a neighbouring division.
func WithCrossoverRate(rate float64) Option {
	return func(g *Generator) {
		g.crossoverRate = rate
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

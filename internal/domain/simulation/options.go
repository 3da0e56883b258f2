package simulation

import (
	"github.com/okian/fightelo/internal/domain/rating"
	"github.com/okian/fightelo/pkg/logger"
)

// Option applies a configuration option to a run.
type Option func(*runner)

// WithHistory toggles the per-match history log. It is on by default.
func WithHistory(enabled bool) Option {
	return func(r *runner) {
		r.history = enabled
	}
}

// WithLogger sets the logger used for per-match debug output.
func WithLogger(l logger.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithRecorder replaces the global metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *runner) {
		if rec != nil {
			r.rec = rec
		}
	}
}

// WithObserver registers a callback invoked with every applied outcome.
func WithObserver(fn func(index int, out rating.Outcome)) Option {
	return func(r *runner) {
		r.observers = append(r.observers, fn)
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(r *runner) {
		r.runID = id
	}
}

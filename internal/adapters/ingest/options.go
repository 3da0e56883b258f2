package ingest

import (
	"github.com/okian/fightelo/internal/domain/dedupe"
	"github.com/okian/fightelo/pkg/logger"
)

// DefaultCategory fills rows whose weight class is blank.
const DefaultCategory = "Open Weight"

// Option applies a configuration option to a read.
type Option func(*decoder)

// WithSkipMalformed skips and counts malformed rows instead of failing.
func WithSkipMalformed() Option {
	return func(d *decoder) {
		d.skipMalformed = true
	}
}

// WithDefaultCategory overrides the category used for blank weight classes.
func WithDefaultCategory(category string) Option {
	return func(d *decoder) {
		if category != "" {
			d.defaultCategory = category
		}
	}
}

// WithDeduper sets the deduper used to drop repeated bouts.
func WithDeduper(dd dedupe.Deduper) Option {
	return func(d *decoder) {
		if dd != nil {
			d.dedupe = dd
		}
	}
}

// WithDedupeSize bounds the default deduper. Zero keeps it unbounded.
func WithDedupeSize(size int) Option {
	return func(d *decoder) {
		d.dedupeSize = size
	}
}

// WithLogger sets the logger used to report skipped rows.
func WithLogger(l logger.Logger) Option {
	return func(d *decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// WithRecorder replaces the global metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(d *decoder) {
		if rec != nil {
			d.rec = rec
		}
	}
}

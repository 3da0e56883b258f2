package repository

import "time"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithClock sets the clock used to stamp published snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxLimit caps the n accepted by TopN.
func WithMaxLimit(limit int) Option {
	return func(s *SnapshotStore) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

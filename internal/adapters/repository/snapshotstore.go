package repository

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/internal/domain/reporting"
	"github.com/okian/fightelo/pkg/metrics"
)

// publication is an immutable, fully indexed view of one simulation run.
// Readers load it with a single atomic read and never take locks. Ranked
// tables are keyed by the lower-cased category label and history lists by
// the lower-cased competitor, in chronological order.
type publication struct {
	Meta Meta

	ratings    []model.RatingEntry
	tables     map[string][]Entry
	p4p        []Entry
	history    map[string][]model.HistoryPoint
	categories []string
	count      int
}

// SnapshotStore publishes snapshots through an atomic pointer. Publishing
// builds the indexes off to the side, so queries always see either the old
// or the new snapshot in full.
type SnapshotStore struct {
	snapshot atomic.Pointer[publication]
	now      func() time.Time
	maxLimit int
}

var _ Store = (*SnapshotStore)(nil)

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		now:      time.Now,
		maxLimit: 1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish ranks ratings per category and pound-for-pound, indexes history
// and swaps the result in.
func (s *SnapshotStore) Publish(_ context.Context, meta Meta, ratings []model.RatingEntry, history []model.HistoryPoint) {
	snap := &publication{
		ratings:    ratings,
		tables:     make(map[string][]Entry),
		p4p:        reporting.Rankings(ratings, reporting.Query{Category: reporting.PoundForPound}),
		history:    make(map[string][]model.HistoryPoint),
		categories: reporting.Categories(ratings),
		count:      len(ratings),
	}
	for _, c := range snap.categories {
		snap.tables[fold(c)] = reporting.Rankings(ratings, reporting.Query{Category: c})
	}
	for _, h := range history {
		key := fold(h.Competitor)
		snap.history[key] = append(snap.history[key], h)
	}

	meta.Ratings = len(ratings)
	meta.Categories = len(snap.categories)
	if meta.PublishedAt.IsZero() {
		meta.PublishedAt = s.now()
	}
	snap.Meta = meta
	s.snapshot.Store(snap)
}

func (s *SnapshotStore) current() (*publication, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		metrics.RecordError("repository", "not_published")
		return nil, ErrNotPublished
	}
	return snap, nil
}

func (snap *publication) table(category string) []Entry {
	if reporting.IsPoundForPound(category) {
		return snap.p4p
	}
	return snap.tables[fold(category)]
}

// TopN returns up to n rows with at least minFights fights, ranked 1..n
// within the filtered table. An unknown category yields an empty slice.
func (s *SnapshotStore) TopN(_ context.Context, category string, minFights, n int) ([]Entry, error) {
	if n < 1 || n > s.maxLimit {
		metrics.RecordError("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return reporting.Rankings(snap.ratings, reporting.Query{
		Category:  category,
		MinFights: minFights,
		Limit:     n,
	}), nil
}

// Rank returns the competitor's row in the unfiltered category table. For
// the pound-for-pound table, the competitor's best row is returned.
func (s *SnapshotStore) Rank(_ context.Context, competitor, category string) (Entry, error) {
	snap, err := s.current()
	if err != nil {
		return Entry{}, err
	}
	name := fold(competitor)
	for _, e := range snap.table(category) {
		if fold(e.Competitor) == name {
			return e, nil
		}
	}
	metrics.RecordError("repository", "not_found")
	return Entry{}, ErrNotFound
}

// History returns the competitor's history, matched case-insensitively.
func (s *SnapshotStore) History(_ context.Context, competitor string) ([]model.HistoryPoint, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	h, ok := snap.history[fold(competitor)]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

// Categories returns the sorted category labels of the current snapshot.
func (s *SnapshotStore) Categories(_ context.Context) []string {
	snap := s.snapshot.Load()
	if snap == nil {
		return []string{}
	}
	return snap.categories
}

// Meta describes the current snapshot.
func (s *SnapshotStore) Meta(_ context.Context) Meta {
	snap := s.snapshot.Load()
	if snap == nil {
		return Meta{}
	}
	return snap.Meta
}

// Count returns the number of ratings in the current snapshot.
func (s *SnapshotStore) Count(_ context.Context) int {
	snap := s.snapshot.Load()
	if snap == nil {
		return 0
	}
	return snap.count
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

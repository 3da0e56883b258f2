// Package repository holds the published rating snapshot and answers
// ranking queries against it.
package repository

import (
	"context"
	"time"

	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/internal/domain/reporting"
)

// Entry is a ranking row.
type Entry = reporting.Ranking

// Meta describes the run a snapshot came from.
type Meta struct {
	RunID       string    `json:"run_id"`
	Matches     int       `json:"matches"`
	Competitors int       `json:"competitors"`
	Ratings     int       `json:"ratings"`
	Categories  int       `json:"categories"`
	PublishedAt time.Time `json:"published_at"`
}

// Store provides read access to the latest published ratings.
type Store interface {
	// Publish atomically replaces the current snapshot.
	Publish(ctx context.Context, meta Meta, ratings []model.RatingEntry, history []model.HistoryPoint)

	// TopN returns up to n rows of a category table, filtered by minFights.
	// The pound-for-pound pseudo-category pools every category.
	// Returns ErrNotPublished before the first Publish.
	TopN(ctx context.Context, category string, minFights, n int) ([]Entry, error)

	// Rank returns a competitor's row in a category table.
	// Returns ErrNotFound if the competitor holds no rating there and
	// ErrNotPublished before the first Publish.
	Rank(ctx context.Context, competitor, category string) (Entry, error)

	// History returns the competitor's rating history in chronological order.
	History(ctx context.Context, competitor string) ([]model.HistoryPoint, error)

	// Categories returns the sorted category labels.
	Categories(ctx context.Context) []string

	// Meta describes the current snapshot.
	Meta(ctx context.Context) Meta

	// Count returns the number of (competitor, category) ratings.
	Count(ctx context.Context) int
}

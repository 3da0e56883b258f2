package model

import "time"

// RatingEntry is one row of the final ratings snapshot.
type RatingEntry struct {
	Competitor string
	Category   string
	Rating     float64
	Fights     int // global fight count across every category
}

// HistoryPoint records a competitor's rating in a category right after a match.
type HistoryPoint struct {
	Date       time.Time
	Competitor string
	Category   string
	Rating     float64
}

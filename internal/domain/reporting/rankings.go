// Package reporting builds read-only views over a simulation's output:
// ranking tables and per-competitor rating trajectories.
package reporting

import (
	"sort"
	"strings"

	"github.com/okian/fightelo/internal/domain/model"
)

// PoundForPound is the pseudo-category that ranks every rating together.
const PoundForPound = "Pound-for-Pound"

// Default minimum fight counts for a ranking to be listed.
const (
	DefaultDivisionMinFights = 5
	DefaultP4PMinFights      = 10
)

// Query selects a ranking table. A zero MinFights lists everyone and a zero
// Limit returns every row.
type Query struct {
	Category  string
	MinFights int
	Limit     int
}

// Ranking is one row of a ranking table.
type Ranking struct {
	Rank       int     `json:"rank"`
	Competitor string  `json:"competitor"`
	Category   string  `json:"category"`
	Rating     float64 `json:"rating"`
	Fights     int     `json:"fights"`
}

// IsPoundForPound reports whether category names the pseudo-category.
func IsPoundForPound(category string) bool {
	return strings.EqualFold(strings.TrimSpace(category), PoundForPound)
}

// DefaultMinFights returns the listing threshold used when a caller gives none.
func DefaultMinFights(category string) int {
	if IsPoundForPound(category) {
		return DefaultP4PMinFights
	}
	return DefaultDivisionMinFights
}

// Rankings filters the snapshot by category and minimum fight count and
// orders it by rating, highest first. Ties are broken by competitor and then
// category so the order is total. An empty result is not an error.
func Rankings(snapshot []model.RatingEntry, q Query) []Ranking {
	p4p := IsPoundForPound(q.Category)
	category := strings.TrimSpace(q.Category)

	out := make([]Ranking, 0)
	for _, e := range snapshot {
		if e.Fights < q.MinFights {
			continue
		}
		if !p4p && !strings.EqualFold(e.Category, category) {
			continue
		}
		out = append(out, Ranking{
			Competitor: e.Competitor,
			Category:   e.Category,
			Rating:     e.Rating,
			Fights:     e.Fights,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Less orders rankings by rating desc, competitor asc, category asc.
func Less(a, b Ranking) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	if a.Competitor != b.Competitor {
		return a.Competitor < b.Competitor
	}
	return a.Category < b.Category
}

// Categories returns the sorted distinct category labels of a snapshot.
func Categories(snapshot []model.RatingEntry) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range snapshot {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	sort.Strings(out)
	return out
}

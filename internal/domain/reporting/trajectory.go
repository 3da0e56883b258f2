package reporting

import (
	"strings"
	"time"

	"github.com/okian/fightelo/internal/domain/model"
)

// Point is one rating observation.
type Point struct {
	Date   time.Time `json:"date"`
	Rating float64   `json:"rating"`
}

// Series is a competitor's rating history in a single category.
type Series struct {
	Category string  `json:"category"`
	Points   []Point `json:"points"`
}

// Trajectory extracts the rating history of one competitor, matched by
// name case-insensitively. It returns one series per category in the order
// the categories first appear; points keep history order. An unknown
// competitor yields an empty slice.
func Trajectory(history []model.HistoryPoint, competitor string) []Series {
	name := strings.TrimSpace(competitor)
	out := make([]Series, 0)
	if name == "" {
		return out
	}
	index := make(map[string]int)
	for _, h := range history {
		if !strings.EqualFold(h.Competitor, name) {
			continue
		}
		i, ok := index[h.Category]
		if !ok {
			i = len(out)
			index[h.Category] = i
			out = append(out, Series{Category: h.Category})
		}
		out[i].Points = append(out[i].Points, Point{Date: h.Date, Rating: h.Rating})
	}
	return out
}

// CanonicalName returns the stored spelling of competitor from history, or
// "" when the competitor never appears.
func CanonicalName(history []model.HistoryPoint, competitor string) string {
	name := strings.TrimSpace(competitor)
	for _, h := range history {
		if strings.EqualFold(h.Competitor, name) {
			return h.Competitor
		}
	}
	return ""
}

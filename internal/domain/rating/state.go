package rating

import (
	"sort"
	"time"

	"github.com/okian/fightelo/internal/domain/model"
)

// Key addresses a rating in the (competitor, category) key space.
type Key struct {
	Competitor string
	Category   string
}

// CompetitorState is the per-competitor bookkeeping shared by every category.
type CompetitorState struct {
	Fights     int
	Streak     int // >0 consecutive wins, <0 consecutive losses
	LastActive time.Time
}

// State is the mutable simulation state. Ratings and competitor
// bookkeeping are two separate key spaces. State is not safe for
// concurrent use.
type State struct {
	startingRating float64
	ratings        map[Key]float64
	competitors    map[string]*CompetitorState
}

// NewState creates an empty state whose ratings start at startingRating.
func NewState(startingRating float64) *State {
	return &State{
		startingRating: startingRating,
		ratings:        make(map[Key]float64),
		competitors:    make(map[string]*CompetitorState),
	}
}

// GetOrInit returns the rating, inserting the starting rating on first reference.
func (s *State) GetOrInit(competitor, category string) float64 {
	k := Key{Competitor: competitor, Category: category}
	r, ok := s.ratings[k]
	if !ok {
		r = s.startingRating
		s.ratings[k] = r
	}
	return r
}

// Rating returns the rating without initializing it.
func (s *State) Rating(competitor, category string) (float64, bool) {
	r, ok := s.ratings[Key{Competitor: competitor, Category: category}]
	return r, ok
}

// Set stores a rating.
func (s *State) Set(competitor, category string, rating float64) {
	s.ratings[Key{Competitor: competitor, Category: category}] = rating
}

func (s *State) competitor(id string) *CompetitorState {
	c, ok := s.competitors[id]
	if !ok {
		c = &CompetitorState{}
		s.competitors[id] = c
	}
	return c
}

// FightCount returns the global number of bouts the competitor took part in.
func (s *State) FightCount(competitor string) int {
	if c, ok := s.competitors[competitor]; ok {
		return c.Fights
	}
	return 0
}

// IncrementFightCount adds one bout to the competitor's global count.
func (s *State) IncrementFightCount(competitor string) {
	s.competitor(competitor).Fights++
}

// Streak returns the signed result streak.
func (s *State) Streak(competitor string) int {
	if c, ok := s.competitors[competitor]; ok {
		return c.Streak
	}
	return 0
}

// SetStreak stores the signed result streak.
func (s *State) SetStreak(competitor string, streak int) {
	s.competitor(competitor).Streak = streak
}

// LastActive returns the date of the competitor's last bout in any category.
func (s *State) LastActive(competitor string) (time.Time, bool) {
	c, ok := s.competitors[competitor]
	if !ok || c.LastActive.IsZero() {
		return time.Time{}, false
	}
	return c.LastActive, true
}

// SetLastActive stores the date of the competitor's most recent bout.
func (s *State) SetLastActive(competitor string, date time.Time) {
	s.competitor(competitor).LastActive = date
}

// Competitors returns the number of known competitors.
func (s *State) Competitors() int { return len(s.competitors) }

// Len returns the number of (competitor, category) ratings.
func (s *State) Len() int { return len(s.ratings) }

// Snapshot returns every rating with its competitor's global fight count,
// ordered by competitor then category.
func (s *State) Snapshot() []model.RatingEntry {
	out := make([]model.RatingEntry, 0, len(s.ratings))
	for k, r := range s.ratings {
		out = append(out, model.RatingEntry{
			Competitor: k.Competitor,
			Category:   k.Category,
			Rating:     r,
			Fights:     s.FightCount(k.Competitor),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Competitor != out[j].Competitor {
			return out[i].Competitor < out[j].Competitor
		}
		return out[i].Category < out[j].Category
	})
	return out
}

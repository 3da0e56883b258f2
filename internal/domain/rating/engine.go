// Package rating implements the per-match rating update engine and the
// state it mutates.
package rating

import (
	"fmt"
	"time"

	"github.com/okian/fightelo/internal/domain/model"
)

// Side captures how one competitor's numbers moved in a match.
type Side struct {
	Competitor   string
	Decay        float64 // ring-rust penalty applied before the update, 0 when none
	Before       float64 // rating after decay, used for the expectation
	Expected     float64
	Score        float64
	K            float64
	Delta        float64
	After        float64
	StreakBefore int
	StreakAfter  int
	FightsBefore int
}

// Factors are the multiplicative bonuses shared by both sides.
type Factors struct {
	Finish float64
	Elite  float64
	Streak float64
}

// Combined returns the product of all factors.
func (f Factors) Combined() float64 { return f.Finish * f.Elite * f.Streak }

// Outcome is the audit record of one applied match.
type Outcome struct {
	Match   model.Match
	Title   bool
	Factors Factors
	A       Side
	B       Side
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPolicy replaces the default policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// Engine applies matches to a State. It holds only policy, so one Engine
// can drive any number of independent states.
type Engine struct {
	policy Policy
}

// NewEngine creates an engine, validating the configured policy.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.policy.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy { return e.policy }

// NewState creates an empty state using the policy's starting rating.
func (e *Engine) NewState() *State { return NewState(e.policy.StartingRating) }

// ApplyMatch runs one match through the update chain and commits the
// result to s. A record that fails validation leaves s untouched.
func (e *Engine) ApplyMatch(s *State, m model.Match) (Outcome, error) {
	if err := m.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrInvalidMatch, err)
	}
	p := e.policy
	date := model.Day(m.Date)

	out := Outcome{
		Match: m,
		Title: p.IsTitle(m.Category),
		A:     Side{Competitor: m.CompetitorA},
		B:     Side{Competitor: m.CompetitorB},
	}

	// 1. ring rust, before anything reads ratings
	out.A.Decay = e.decay(s, m.CompetitorA, m.Category, date)
	out.B.Decay = e.decay(s, m.CompetitorB, m.Category, date)

	// 2-4. lookup, expectation, actual score
	out.A.Before = s.GetOrInit(m.CompetitorA, m.Category)
	out.B.Before = s.GetOrInit(m.CompetitorB, m.Category)
	out.A.Expected = Expected(out.A.Before, out.B.Before)
	out.B.Expected = 1 - out.A.Expected
	out.A.Score, out.B.Score = m.Scores()

	// 5. volatility from global experience before this match
	out.A.FightsBefore = s.FightCount(m.CompetitorA)
	out.B.FightsBefore = s.FightCount(m.CompetitorB)
	out.A.K = p.KFactor(out.A.FightsBefore, out.B.FightsBefore, out.Title)
	out.B.K = p.KFactor(out.B.FightsBefore, out.A.FightsBefore, out.Title)

	// 6. bonuses
	out.A.StreakBefore = s.Streak(m.CompetitorA)
	out.B.StreakBefore = s.Streak(m.CompetitorB)
	out.Factors = e.factors(m, out.A, out.B)

	// 7. commit
	combined := out.Factors.Combined()
	out.A.Delta = combined * out.A.K * (out.A.Score - out.A.Expected)
	out.B.Delta = combined * out.B.K * (out.B.Score - out.B.Expected)
	out.A.After = out.A.Before + out.A.Delta
	out.B.After = out.B.Before + out.B.Delta
	s.Set(m.CompetitorA, m.Category, out.A.After)
	s.Set(m.CompetitorB, m.Category, out.B.After)

	// 8. streaks
	out.A.StreakAfter, out.B.StreakAfter = nextStreaks(m.Winner, out.A.StreakBefore, out.B.StreakBefore)
	s.SetStreak(m.CompetitorA, out.A.StreakAfter)
	s.SetStreak(m.CompetitorB, out.B.StreakAfter)

	// 9. bookkeeping
	for _, c := range []string{m.CompetitorA, m.CompetitorB} {
		s.IncrementFightCount(c)
		s.SetLastActive(c, date)
	}
	return out, nil
}

// decay subtracts the inactivity penalty from an existing category rating
// when the competitor's last bout in any category is older than the window.
func (e *Engine) decay(s *State, competitor, category string, date time.Time) float64 {
	last, ok := s.LastActive(competitor)
	if !ok || model.DaysBetween(last, date) <= e.policy.InactivityDays {
		return 0
	}
	r, ok := s.Rating(competitor, category)
	if !ok {
		return 0
	}
	s.Set(competitor, category, r-e.policy.InactivityPenalty)
	return e.policy.InactivityPenalty
}

func (e *Engine) factors(m model.Match, a, b Side) Factors {
	f := Factors{Finish: 1, Elite: 1, Streak: 1}
	if m.IsNoContest() {
		return f
	}
	f.Finish = e.policy.FinishMultiplier(m.Method, m.Round)

	loser := b
	if m.Winner == model.WinnerB {
		loser = a
	}
	if loser.Before >= e.policy.EliteThreshold {
		f.Elite = e.policy.EliteBonus
	}
	if loser.StreakBefore > 0 {
		f.Streak = 1 + float64(loser.StreakBefore)*e.policy.StreakIncrement
	}
	return f
}

func nextStreaks(w model.Winner, a, b int) (int, int) {
	switch w {
	case model.WinnerA:
		return won(a), lost(b)
	case model.WinnerB:
		return lost(a), won(b)
	default:
		return 0, 0
	}
}

func won(streak int) int {
	if streak > 0 {
		return streak + 1
	}
	return 1
}

func lost(streak int) int {
	if streak < 0 {
		return streak - 1
	}
	return -1
}

// Package simulation drives the rating engine over a chronological match
// sequence and collects the final snapshot and rating history.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/internal/domain/rating"
	"github.com/okian/fightelo/pkg/logger"
	"github.com/okian/fightelo/pkg/metrics"
)

// Recorder receives run metrics. *metrics.Manager satisfies it.
type Recorder interface {
	RecordMatchApplied(noContest, title bool, deltaA, deltaB float64)
	RecordInactivityPenalty()
	RecordSimulation(durationMs float64, competitors, ratings, categories int)
}

type globalRecorder struct{}

func (globalRecorder) RecordMatchApplied(noContest, title bool, deltaA, deltaB float64) {
	metrics.RecordMatchApplied(noContest, title, deltaA, deltaB)
}
func (globalRecorder) RecordInactivityPenalty() { metrics.RecordInactivityPenalty() }
func (globalRecorder) RecordSimulation(durationMs float64, competitors, ratings, categories int) {
	metrics.RecordSimulation(durationMs, competitors, ratings, categories)
}

// Stats counts what happened during a run.
type Stats struct {
	Matches             int
	NoContests          int
	TitleBouts          int
	InactivityPenalties int
	Competitors         int
	Ratings             int
	Categories          int
}

// Result is the read-only product of a run.
type Result struct {
	RunID    string
	Snapshot []model.RatingEntry
	History  []model.HistoryPoint
	Stats    Stats
	Elapsed  time.Duration
}

type runner struct {
	runID     string
	history   bool
	log       logger.Logger
	rec       Recorder
	observers []func(int, rating.Outcome)
}

// Run feeds records to the engine one at a time in order. Records must be
// in non-decreasing date order; a record dated before its predecessor stops
// the run with ErrOutOfOrder. A malformed record stops the run with the
// engine's validation error. Cancellation is checked between records.
func Run(ctx context.Context, engine *rating.Engine, records []model.Match, opts ...Option) (*Result, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	r := &runner{
		history: true,
		log:     logger.Nop(),
		rec:     globalRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	log := r.log.With(logger.String("run_id", r.runID))

	start := time.Now()
	state := engine.NewState()
	res := &Result{RunID: r.runID}
	if r.history {
		res.History = make([]model.HistoryPoint, 0, 2*len(records))
	}

	var prev time.Time
	for i, m := range records {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run stopped at record %d: %w", i, err)
		}
		date := model.Day(m.Date)
		if i > 0 && date.Before(prev) {
			return nil, fmt.Errorf("%w: record %d dated %s follows %s",
				ErrOutOfOrder, i, date.Format(time.DateOnly), prev.Format(time.DateOnly))
		}

		out, err := engine.ApplyMatch(state, m)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		prev = date

		r.count(&res.Stats, out)
		if r.history {
			res.History = append(res.History,
				model.HistoryPoint{Date: date, Competitor: m.CompetitorA, Category: m.Category, Rating: out.A.After},
				model.HistoryPoint{Date: date, Competitor: m.CompetitorB, Category: m.Category, Rating: out.B.After},
			)
		}
		for _, fn := range r.observers {
			fn(i, out)
		}
		log.Debug(ctx, "match applied",
			logger.Int("index", i),
			logger.String("competitor_a", m.CompetitorA),
			logger.String("competitor_b", m.CompetitorB),
			logger.String("category", m.Category),
			logger.String("winner", m.Winner.String()),
			logger.Float64("factor", out.Factors.Combined()),
			logger.Float64("delta_a", out.A.Delta),
			logger.Float64("delta_b", out.B.Delta),
		)
	}

	res.Snapshot = state.Snapshot()
	res.Stats.Competitors = state.Competitors()
	res.Stats.Ratings = state.Len()
	res.Stats.Categories = countCategories(res.Snapshot)
	res.Elapsed = time.Since(start)

	r.rec.RecordSimulation(float64(res.Elapsed.Microseconds())/1000,
		res.Stats.Competitors, res.Stats.Ratings, res.Stats.Categories)
	log.Info(ctx, "simulation complete",
		logger.Int("matches", res.Stats.Matches),
		logger.Int("competitors", res.Stats.Competitors),
		logger.Int("categories", res.Stats.Categories),
		logger.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func (r *runner) count(s *Stats, out rating.Outcome) {
	s.Matches++
	noContest := out.Match.IsNoContest()
	if noContest {
		s.NoContests++
	}
	if out.Title {
		s.TitleBouts++
	}
	for _, side := range []rating.Side{out.A, out.B} {
		if side.Decay > 0 {
			s.InactivityPenalties++
			r.rec.RecordInactivityPenalty()
		}
	}
	r.rec.RecordMatchApplied(noContest, out.Title, out.A.Delta, out.B.Delta)
}

func countCategories(snapshot []model.RatingEntry) int {
	seen := make(map[string]struct{})
	for _, e := range snapshot {
		seen[e.Category] = struct{}{}
	}
	return len(seen)
}


package simulation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/internal/domain/rating"
	"github.com/okian/fightelo/internal/domain/simulation"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeRecorder struct {
	applied     int
	noContests  int
	titles      int
	penalties   int
	simulations int
	competitors int
}

func (f *fakeRecorder) RecordMatchApplied(noContest, title bool, _, _ float64) {
	f.applied++
	if noContest {
		f.noContests++
	}
	if title {
		f.titles++
	}
}

func (f *fakeRecorder) RecordInactivityPenalty() { f.penalties++ }

func (f *fakeRecorder) RecordSimulation(_ float64, competitors, _, _ int) {
	f.simulations++
	f.competitors = competitors
}

func on(date string) time.Time {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		panic(err)
	}
	return t
}

func fixture() []model.Match {
	return []model.Match{
		{CompetitorA: "Alpha", CompetitorB: "Bravo", Winner: model.WinnerA, Category: "Lightweight", Method: "KO/TKO", Round: 1, Date: on("2015-01-10")},
		{CompetitorA: "Charlie", CompetitorB: "Delta", Winner: model.WinnerB, Category: "Welterweight", Method: "Decision - Unanimous", Round: 3, Date: on("2015-01-10")},
		{CompetitorA: "Alpha", CompetitorB: "Charlie", Winner: model.NoContest, Category: "Lightweight", Method: "Overturned", Round: 2, Date: on("2015-06-01")},
		{CompetitorA: "Delta", CompetitorB: "Bravo", Winner: model.WinnerA, Category: "Lightweight Title Bout", Method: "Submission", Round: 4, Date: on("2016-02-20")},
		{CompetitorA: "Bravo", CompetitorB: "Echo", Winner: model.WinnerA, Category: "Lightweight", Method: "Decision - Split", Round: 3, Date: on("2017-11-11")},
	}
}

func newEngine() *rating.Engine {
	e, err := rating.NewEngine()
	if err != nil {
		panic(err)
	}
	return e
}

func TestRun(t *testing.T) {
	Convey("Given a chronological fixture", t, func() {
		ctx := context.Background()
		rec := &fakeRecorder{}

		Convey("When the run completes", func() {
			res, err := simulation.Run(ctx, newEngine(), fixture(), simulation.WithRecorder(rec))
			So(err, ShouldBeNil)

			Convey("Then counters reflect the input", func() {
				So(res.RunID, ShouldNotBeEmpty)
				So(res.Stats.Matches, ShouldEqual, 5)
				So(res.Stats.NoContests, ShouldEqual, 1)
				So(res.Stats.TitleBouts, ShouldEqual, 1)
				So(res.Stats.Competitors, ShouldEqual, 5)
				So(res.Stats.Categories, ShouldEqual, 3)
				So(res.Stats.Ratings, ShouldEqual, len(res.Snapshot))
			})

			Convey("Then Bravo's 630-day layoff costs one penalty in Lightweight", func() {
				So(res.Stats.InactivityPenalties, ShouldEqual, 1)
				So(rec.penalties, ShouldEqual, 1)
			})

			Convey("Then the recorder saw every match and the run", func() {
				So(rec.applied, ShouldEqual, 5)
				So(rec.noContests, ShouldEqual, 1)
				So(rec.titles, ShouldEqual, 1)
				So(rec.simulations, ShouldEqual, 1)
				So(rec.competitors, ShouldEqual, 5)
			})

			Convey("Then history has one point per competitor per match in order", func() {
				So(len(res.History), ShouldEqual, 10)
				So(res.History[0].Competitor, ShouldEqual, "Alpha")
				So(res.History[1].Competitor, ShouldEqual, "Bravo")
				for i := 1; i < len(res.History); i++ {
					So(res.History[i].Date.Before(res.History[i-1].Date), ShouldBeFalse)
				}
			})

			Convey("Then the last history point of each rating equals the snapshot", func() {
				last := make(map[[2]string]float64)
				for _, p := range res.History {
					last[[2]string{p.Competitor, p.Category}] = p.Rating
				}
				for _, e := range res.Snapshot {
					So(last[[2]string{e.Competitor, e.Category}], ShouldEqual, e.Rating)
				}
			})

			Convey("Then the snapshot carries global fight counts", func() {
				fights := make(map[string]int)
				for _, e := range res.Snapshot {
					fights[e.Competitor] = e.Fights
				}
				So(fights["Bravo"], ShouldEqual, 3)
				So(fights["Echo"], ShouldEqual, 1)
			})
		})

		Convey("When history is disabled", func() {
			res, err := simulation.Run(ctx, newEngine(), fixture(), simulation.WithHistory(false), simulation.WithRecorder(rec))
			So(err, ShouldBeNil)

			Convey("Then only the snapshot is produced", func() {
				So(res.History, ShouldBeEmpty)
				So(len(res.Snapshot), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When an observer and a fixed run id are supplied", func() {
			var seen []int
			res, err := simulation.Run(ctx, newEngine(), fixture(),
				simulation.WithRecorder(rec),
				simulation.WithRunID("replay-1"),
				simulation.WithObserver(func(i int, out rating.Outcome) {
					seen = append(seen, i)
				}),
			)
			So(err, ShouldBeNil)

			Convey("Then every outcome is observed in order", func() {
				So(res.RunID, ShouldEqual, "replay-1")
				So(seen, ShouldResemble, []int{0, 1, 2, 3, 4})
			})
		})
	})
}

func TestRun_Determinism(t *testing.T) {
	Convey("Given the same input replayed twice", t, func() {
		ctx := context.Background()
		first, err := simulation.Run(ctx, newEngine(), fixture(), simulation.WithRecorder(&fakeRecorder{}))
		So(err, ShouldBeNil)
		second, err := simulation.Run(ctx, newEngine(), fixture(), simulation.WithRecorder(&fakeRecorder{}))
		So(err, ShouldBeNil)

		Convey("Then snapshots, history and counters are identical", func() {
			So(cmp.Diff(first.Snapshot, second.Snapshot), ShouldBeEmpty)
			So(cmp.Diff(first.History, second.History), ShouldBeEmpty)
			So(cmp.Diff(first, second, cmpopts.IgnoreFields(simulation.Result{}, "RunID", "Elapsed")), ShouldBeEmpty)
		})
	})
}

func TestRun_Failures(t *testing.T) {
	Convey("Given a run", t, func() {
		ctx := context.Background()
		rec := &fakeRecorder{}

		Convey("When a record is dated before its predecessor", func() {
			records := fixture()
			records[3].Date = on("2014-12-31")
			_, err := simulation.Run(ctx, newEngine(), records, simulation.WithRecorder(rec))

			Convey("Then the run fails fast", func() {
				So(errors.Is(err, simulation.ErrOutOfOrder), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "record 3")
			})
		})

		Convey("When records share a date", func() {
			records := fixture()[:2]
			_, err := simulation.Run(ctx, newEngine(), records, simulation.WithRecorder(rec))

			Convey("Then the order is accepted", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When a record is malformed", func() {
			records := fixture()
			records[2].CompetitorB = records[2].CompetitorA
			_, err := simulation.Run(ctx, newEngine(), records, simulation.WithRecorder(rec))

			Convey("Then the engine error is reported with the index", func() {
				So(errors.Is(err, rating.ErrInvalidMatch), ShouldBeTrue)
				So(errors.Is(err, model.ErrSameCompetitor), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "record 2")
			})
		})

		Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := simulation.Run(canceled, newEngine(), fixture(), simulation.WithRecorder(rec))

			Convey("Then no record is applied", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(rec.applied, ShouldEqual, 0)
			})
		})

		Convey("When the engine is nil", func() {
			_, err := simulation.Run(ctx, nil, fixture())
			So(errors.Is(err, simulation.ErrNilEngine), ShouldBeTrue)
		})

		Convey("When there are no records", func() {
			res, err := simulation.Run(ctx, newEngine(), nil, simulation.WithRecorder(rec))

			Convey("Then the result is empty", func() {
				So(err, ShouldBeNil)
				So(res.Snapshot, ShouldBeEmpty)
				So(res.Stats.Matches, ShouldEqual, 0)
			})
		})
	})
}

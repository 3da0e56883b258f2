package matchgen_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/internal/domain/rating"
	"github.com/okian/fightelo/internal/domain/simulation"
	"github.com/okian/fightelo/internal/matchgen"
)

func generate(t *testing.T, opts ...matchgen.Option) []model.Match {
	t.Helper()
	g, err := matchgen.New(opts...)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	matches, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return matches
}

func TestGenerate(t *testing.T) {
	start := time.Date(2010, time.March, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a seeded generator", t, func() {
		matches := generate(t, matchgen.WithSeed(42), matchgen.WithMatches(300), matchgen.WithStart(start))

		Convey("Then the requested number of matches is produced", func() {
			So(len(matches), ShouldEqual, 300)
			So(matches[0].Date, ShouldEqual, start)
		})

		Convey("Then every match is valid and dates never decrease", func() {
			for i, m := range matches {
				So(m.Validate(), ShouldBeNil)
				if i > 0 {
					So(m.Date.Before(matches[i-1].Date), ShouldBeFalse)
				}
			}
		})

		Convey("Then no competitor fights twice on the same date", func() {
			seen := make(map[string]struct{})
			for _, m := range matches {
				for _, name := range []string{m.CompetitorA, m.CompetitorB} {
					key := m.Date.Format(time.DateOnly) + "|" + name
					_, dup := seen[key]
					So(dup, ShouldBeFalse)
					seen[key] = struct{}{}
				}
			}
		})

		Convey("Then the same seed reproduces the same history", func() {
			again := generate(t, matchgen.WithSeed(42), matchgen.WithMatches(300), matchgen.WithStart(start))
			So(cmp.Diff(matches, again), ShouldBeEmpty)
		})

		Convey("Then a different seed produces a different history", func() {
			other := generate(t, matchgen.WithSeed(7), matchgen.WithMatches(300), matchgen.WithStart(start))
			So(cmp.Diff(matches, other), ShouldNotBeEmpty)
		})

		Convey("Then the history replays through the rating engine", func() {
			engine, err := rating.NewEngine()
			So(err, ShouldBeNil)
			res, err := simulation.Run(context.Background(), engine, matches)
			So(err, ShouldBeNil)
			So(res.Stats.Matches, ShouldEqual, 300)
			So(res.Stats.Competitors, ShouldBeLessThanOrEqualTo, 8*12)
		})
	})

	Convey("Given forced title bouts and no contests", t, func() {
		matches := generate(t,
			matchgen.WithSeed(3),
			matchgen.WithMatches(40),
			matchgen.WithCategories("Lightweight"),
			matchgen.WithCompetitors(6),
			matchgen.WithTitleRate(1),
			matchgen.WithNoContestRate(1),
		)

		Convey("Then every bout is a five-round title no contest", func() {
			for _, m := range matches {
				So(m.Category, ShouldEqual, "UFC Lightweight Title Bout")
				So(m.IsNoContest(), ShouldBeTrue)
				So(m.Round, ShouldBeBetweenOrEqual, 1, 5)
			}
		})
	})

	Convey("Given a generator with zero matches", t, func() {
		matches := generate(t, matchgen.WithMatches(0))

		Convey("Then the history is empty", func() {
			So(matches, ShouldBeEmpty)
		})
	})

	Convey("Given a canceled context", t, func() {
		g, err := matchgen.New()
		So(err, ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then generation stops with the context error", func() {
			_, err := g.Generate(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given invalid options", t, func() {
		_, err := matchgen.New(matchgen.WithCompetitors(1))
		So(errors.Is(err, matchgen.ErrTooFewCompetitors), ShouldBeTrue)

		_, err = matchgen.New(matchgen.WithCategories())
		So(errors.Is(err, matchgen.ErrNoCategories), ShouldBeTrue)

		_, err = matchgen.New(matchgen.WithTitleRate(1.5))
		So(errors.Is(err, matchgen.ErrInvalidRate), ShouldBeTrue)
	})
}

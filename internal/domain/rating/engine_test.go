package rating_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

const eps = 1e-9

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func bout(a, b string, w model.Winner, category, method string, round int, date string) model.Match {
	return model.Match{
		CompetitorA: a,
		CompetitorB: b,
		Winner:      w,
		Category:    category,
		Method:      method,
		Round:       round,
		Date:        day(date),
	}
}

func seedFights(s *rating.State, competitor string, n int) {
	for i := 0; i < n; i++ {
		s.IncrementFightCount(competitor)
	}
}

func newEngine() *rating.Engine {
	e, err := rating.NewEngine()
	if err != nil {
		panic(err)
	}
	return e
}

func TestState_LazyDefaults(t *testing.T) {
	Convey("Given an empty state", t, func() {
		s := rating.NewState(1500)

		Convey("Then an unseen competitor starts at 1500 in any category", func() {
			So(s.GetOrInit("Jon Jones", "Light Heavyweight Bout"), ShouldEqual, 1500.0)
			So(s.GetOrInit("Jon Jones", "Heavyweight Bout"), ShouldEqual, 1500.0)
			So(s.Len(), ShouldEqual, 2)
		})

		Convey("Then auxiliary state defaults to zero", func() {
			So(s.FightCount("nobody"), ShouldEqual, 0)
			So(s.Streak("nobody"), ShouldEqual, 0)
			_, ok := s.LastActive("nobody")
			So(ok, ShouldBeFalse)
			_, ok = s.Rating("nobody", "Lightweight")
			So(ok, ShouldBeFalse)
		})

		Convey("When ratings are set in two categories", func() {
			s.Set("B", "Welterweight", 1510)
			s.Set("A", "Lightweight", 1490)
			s.Set("A", "Featherweight", 1520)
			seedFights(s, "A", 3)

			Convey("Then the snapshot is ordered and carries global fight counts", func() {
				snap := s.Snapshot()
				So(len(snap), ShouldEqual, 3)
				So(snap[0], ShouldResemble, model.RatingEntry{Competitor: "A", Category: "Featherweight", Rating: 1520, Fights: 3})
				So(snap[1].Category, ShouldEqual, "Lightweight")
				So(snap[1].Fights, ShouldEqual, 3)
				So(snap[2].Competitor, ShouldEqual, "B")
				So(snap[2].Fights, ShouldEqual, 0)
			})
		})
	})
}

func TestEngine_UnanimousDecisionBetweenNewcomers(t *testing.T) {
	Convey("Given two newcomers in Lightweight", t, func() {
		e := newEngine()
		s := e.NewState()

		Convey("When X beats Y by unanimous decision", func() {
			out, err := e.ApplyMatch(s, bout("X", "Y", model.WinnerA, "Lightweight", "Decision - Unanimous", 3, "2020-01-01"))
			So(err, ShouldBeNil)

			Convey("Then the expectation is even and provisional K applies", func() {
				So(out.A.Expected, ShouldAlmostEqual, 0.5, eps)
				So(out.B.Expected, ShouldAlmostEqual, 0.5, eps)
				So(out.A.K, ShouldEqual, 36)
				So(out.B.K, ShouldEqual, 36)
				So(out.Factors, ShouldResemble, rating.Factors{Finish: 1.1, Elite: 1, Streak: 1})
			})

			Convey("Then ratings move symmetrically", func() {
				x, _ := s.Rating("X", "Lightweight")
				y, _ := s.Rating("Y", "Lightweight")
				So(x, ShouldAlmostEqual, 1500+36*1.1*0.5, eps)
				So(y, ShouldAlmostEqual, 1500-36*1.1*0.5, eps)
			})

			Convey("Then bookkeeping advances", func() {
				So(s.FightCount("X"), ShouldEqual, 1)
				So(s.FightCount("Y"), ShouldEqual, 1)
				So(s.Streak("X"), ShouldEqual, 1)
				So(s.Streak("Y"), ShouldEqual, -1)
				last, ok := s.LastActive("X")
				So(ok, ShouldBeTrue)
				So(last, ShouldEqual, day("2020-01-01"))
			})
		})
	})
}

func TestEngine_TitleBout(t *testing.T) {
	Convey("Given two veterans", t, func() {
		e := newEngine()
		s := e.NewState()
		seedFights(s, "Champ", 25)
		seedFights(s, "Challenger", 16)

		Convey("When they meet in a title bout", func() {
			out, err := e.ApplyMatch(s, bout("Champ", "Challenger", model.WinnerB, "UFC Lightweight Title Bout", "KO/TKO", 2, "2021-03-06"))
			So(err, ShouldBeNil)

			Convey("Then the fixed title K overrides both tiers", func() {
				So(out.Title, ShouldBeTrue)
				So(out.A.K, ShouldEqual, 50)
				So(out.B.K, ShouldEqual, 50)
				So(out.Factors.Finish, ShouldEqual, 1.4)
				So(out.B.Delta, ShouldAlmostEqual, 1.4*50*0.5, eps)
			})
		})

		Convey("When they meet in a non-title bout", func() {
			out, err := e.ApplyMatch(s, bout("Champ", "Challenger", model.WinnerA, "Lightweight Bout", "Decision - Split", 3, "2021-03-06"))
			So(err, ShouldBeNil)

			Convey("Then the veteran tier applies", func() {
				So(out.Title, ShouldBeFalse)
				So(out.A.K, ShouldEqual, 20)
				So(out.B.K, ShouldEqual, 20)
			})
		})
	})
}

func TestEngine_CrossTierDampening(t *testing.T) {
	Convey("Given a newcomer and experienced opponents", t, func() {
		e := newEngine()
		s := e.NewState()
		seedFights(s, "Vet", 20)
		seedFights(s, "Mid", 7)

		Convey("When the newcomer faces a veteran", func() {
			out, err := e.ApplyMatch(s, bout("Rookie", "Vet", model.WinnerA, "Welterweight", "Decision - Split", 3, "2019-05-05"))
			So(err, ShouldBeNil)

			Convey("Then the newcomer's K drops to the next tier", func() {
				So(out.A.K, ShouldEqual, 28)
				So(out.B.K, ShouldEqual, 20)
			})
		})

		Convey("When the newcomer faces an established opponent", func() {
			out, err := e.ApplyMatch(s, bout("Mid", "Rookie", model.WinnerA, "Welterweight", "Decision - Split", 3, "2019-05-05"))
			So(err, ShouldBeNil)

			Convey("Then both use the established K", func() {
				So(out.A.K, ShouldEqual, 28)
				So(out.B.K, ShouldEqual, 28)
			})
		})

		Convey("When a newcomer faces another newcomer", func() {
			out, err := e.ApplyMatch(s, bout("Rookie", "Debutant", model.WinnerA, "Welterweight", "Decision - Split", 3, "2019-05-05"))
			So(err, ShouldBeNil)

			Convey("Then both keep the provisional K", func() {
				So(out.A.K, ShouldEqual, 36)
				So(out.B.K, ShouldEqual, 36)
			})
		})

		Convey("When a newcomer fights a veteran for a title", func() {
			out, err := e.ApplyMatch(s, bout("Rookie", "Vet", model.WinnerA, "Welterweight Title Bout", "Decision - Split", 5, "2019-05-05"))
			So(err, ShouldBeNil)

			Convey("Then the title K is not dampened", func() {
				So(out.A.K, ShouldEqual, 50)
				So(out.B.K, ShouldEqual, 50)
			})
		})
	})
}

func TestEngine_StreakAndEliteBonuses(t *testing.T) {
	Convey("Given a favorite on a three-fight win streak", t, func() {
		e := newEngine()
		s := e.NewState()
		s.SetStreak("Favorite", 3)

		Convey("When the favorite loses to a challenger", func() {
			out, err := e.ApplyMatch(s, bout("Favorite", "Challenger", model.WinnerB, "Middleweight", "Decision - Majority", 3, "2022-07-09"))
			So(err, ShouldBeNil)

			Convey("Then the challenger's gain includes the streak bonus", func() {
				So(out.Factors.Streak, ShouldAlmostEqual, 1.15, eps)
				So(out.B.Delta, ShouldAlmostEqual, 1.15*36*0.5, eps)
				So(out.A.Delta, ShouldAlmostEqual, -1.15*36*0.5, eps)
			})

			Convey("Then the favorite's streak resets to -1", func() {
				So(s.Streak("Favorite"), ShouldEqual, -1)
				So(s.Streak("Challenger"), ShouldEqual, 1)
			})
		})

		Convey("When the favorite wins instead", func() {
			out, err := e.ApplyMatch(s, bout("Favorite", "Challenger", model.WinnerA, "Middleweight", "Decision - Majority", 3, "2022-07-09"))
			So(err, ShouldBeNil)

			Convey("Then the winner's own streak earns no bonus and grows", func() {
				So(out.Factors.Streak, ShouldEqual, 1)
				So(s.Streak("Favorite"), ShouldEqual, 4)
			})
		})
	})

	Convey("Given a losing side on a loss streak", t, func() {
		e := newEngine()
		s := e.NewState()
		s.SetStreak("Slump", -2)

		Convey("When they lose again", func() {
			out, err := e.ApplyMatch(s, bout("Winner", "Slump", model.WinnerA, "Bantamweight", "Decision - Split", 3, "2022-07-09"))
			So(err, ShouldBeNil)

			Convey("Then no streak bonus applies and the loss streak deepens", func() {
				So(out.Factors.Streak, ShouldEqual, 1)
				So(s.Streak("Slump"), ShouldEqual, -3)
			})
		})
	})

	Convey("Given an elite-rated loser", t, func() {
		e := newEngine()
		s := e.NewState()
		s.Set("Elite", "Heavyweight", 1700)
		s.Set("Upstart", "Heavyweight", 1500)

		Convey("When the upstart wins", func() {
			out, err := e.ApplyMatch(s, bout("Upstart", "Elite", model.WinnerA, "Heavyweight", "Decision - Split", 3, "2018-02-02"))
			So(err, ShouldBeNil)

			Convey("Then the elite bonus applies to both sides", func() {
				So(out.Factors.Elite, ShouldEqual, 1.1)
				expected := rating.Expected(1500, 1700)
				So(out.A.Delta, ShouldAlmostEqual, 1.1*36*(1-expected), eps)
				So(out.B.Delta, ShouldAlmostEqual, 1.1*36*(0-(1-expected)), eps)
			})
		})

		Convey("When the elite competitor wins", func() {
			out, err := e.ApplyMatch(s, bout("Upstart", "Elite", model.WinnerB, "Heavyweight", "Decision - Split", 3, "2018-02-02"))
			So(err, ShouldBeNil)

			Convey("Then no elite bonus applies", func() {
				So(out.Factors.Elite, ShouldEqual, 1)
			})
		})
	})
}

func TestEngine_NoContest(t *testing.T) {
	Convey("Given competitors with streaks", t, func() {
		e := newEngine()
		s := e.NewState()
		s.SetStreak("A", 4)
		s.SetStreak("B", -2)
		s.Set("A", "Flyweight", 1600)

		Convey("When the bout ends without a winner after a first-round stoppage call", func() {
			out, err := e.ApplyMatch(s, bout("A", "B", model.NoContest, "Flyweight", "KO/TKO", 1, "2017-01-01"))
			So(err, ShouldBeNil)

			Convey("Then scores split and every bonus is neutral", func() {
				So(out.A.Score+out.B.Score, ShouldEqual, 1)
				So(out.A.Score, ShouldEqual, 0.5)
				So(out.Factors, ShouldResemble, rating.Factors{Finish: 1, Elite: 1, Streak: 1})
				So(out.A.Delta, ShouldAlmostEqual, 36*(0.5-out.A.Expected), eps)
				So(out.A.Delta, ShouldBeLessThan, 0)
			})

			Convey("Then both streaks reset to exactly zero", func() {
				So(s.Streak("A"), ShouldEqual, 0)
				So(s.Streak("B"), ShouldEqual, 0)
				So(s.FightCount("A"), ShouldEqual, 1)
			})
		})
	})
}

func TestEngine_InactivityDecay(t *testing.T) {
	Convey("Given a competitor last seen on 2018-01-01", t, func() {
		e := newEngine()
		s := e.NewState()
		_, err := e.ApplyMatch(s, bout("Returner", "Opp1", model.WinnerA, "Lightweight", "Decision - Split", 3, "2018-01-01"))
		So(err, ShouldBeNil)
		before, _ := s.Rating("Returner", "Lightweight")

		Convey("When they return after 541 days", func() {
			date := day("2018-01-01").AddDate(0, 0, 541).Format(time.DateOnly)
			out, err := e.ApplyMatch(s, bout("Returner", "Opp2", model.WinnerB, "Lightweight", "Decision - Split", 3, date))
			So(err, ShouldBeNil)

			Convey("Then the penalty is applied once before the expectation", func() {
				So(out.A.Decay, ShouldEqual, 25)
				So(out.A.Before, ShouldAlmostEqual, before-25, eps)
				So(out.A.Expected, ShouldAlmostEqual, rating.Expected(before-25, 1500), eps)
				So(out.B.Decay, ShouldEqual, 0)
			})
		})

		Convey("When they return after exactly 540 days", func() {
			date := day("2018-01-01").AddDate(0, 0, 540).Format(time.DateOnly)
			out, err := e.ApplyMatch(s, bout("Returner", "Opp2", model.WinnerA, "Lightweight", "Decision - Split", 3, date))
			So(err, ShouldBeNil)

			Convey("Then no penalty applies", func() {
				So(out.A.Decay, ShouldEqual, 0)
				So(out.A.Before, ShouldAlmostEqual, before, eps)
			})
		})

		Convey("When they return after a long layoff in a new category", func() {
			out, err := e.ApplyMatch(s, bout("Returner", "Opp2", model.NoContest, "Welterweight", "Overturned", 0, "2021-01-01"))
			So(err, ShouldBeNil)

			Convey("Then the debut rating is untouched and the old category keeps its value", func() {
				So(out.A.Decay, ShouldEqual, 0)
				So(out.A.Before, ShouldEqual, 1500.0)
				lw, _ := s.Rating("Returner", "Lightweight")
				So(lw, ShouldAlmostEqual, before, eps)
			})
		})

		Convey("When they fought elsewhere in between", func() {
			_, err := e.ApplyMatch(s, bout("Returner", "Opp3", model.WinnerA, "Welterweight", "Decision - Split", 3, "2019-01-01"))
			So(err, ShouldBeNil)
			out, err := e.ApplyMatch(s, bout("Returner", "Opp2", model.WinnerA, "Lightweight", "Decision - Split", 3, "2019-09-01"))
			So(err, ShouldBeNil)

			Convey("Then the global last-active date suppresses the penalty", func() {
				So(out.A.Decay, ShouldEqual, 0)
			})
		})
	})
}

func TestEngine_InvalidMatch(t *testing.T) {
	Convey("Given an engine and an empty state", t, func() {
		e := newEngine()
		s := e.NewState()

		cases := map[string]model.Match{
			"missing competitor": bout("", "B", model.WinnerA, "Lightweight", "", 1, "2020-01-01"),
			"same competitor":    bout("A", "A", model.WinnerA, "Lightweight", "", 1, "2020-01-01"),
			"missing category":   bout("A", "B", model.WinnerA, " ", "", 1, "2020-01-01"),
			"unknown winner":     bout("A", "B", model.Winner(7), "Lightweight", "", 1, "2020-01-01"),
			"round out of range": bout("A", "B", model.WinnerA, "Lightweight", "", 6, "2020-01-01"),
			"missing date":       {CompetitorA: "A", CompetitorB: "B", Winner: model.WinnerA, Category: "Lightweight"},
		}

		for name, m := range cases {
			Convey("When applying a record with "+name, func() {
				_, err := e.ApplyMatch(s, m)

				Convey("Then it is rejected and the state stays empty", func() {
					So(errors.Is(err, rating.ErrInvalidMatch), ShouldBeTrue)
					So(s.Len(), ShouldEqual, 0)
					So(s.Competitors(), ShouldEqual, 0)
				})
			})
		}
	})
}

func TestEngine_ExpectationsAndScoresSumToOne(t *testing.T) {
	Convey("Given a sequence of mixed results", t, func() {
		e := newEngine()
		s := e.NewState()
		matches := []model.Match{
			bout("A", "B", model.WinnerA, "Lightweight", "KO/TKO", 1, "2015-01-01"),
			bout("B", "C", model.WinnerB, "Lightweight", "Submission", 2, "2015-02-01"),
			bout("C", "A", model.NoContest, "Lightweight", "Overturned", 3, "2015-03-01"),
			bout("A", "C", model.WinnerA, "Lightweight Title Bout", "Decision - Unanimous", 5, "2015-04-01"),
		}

		Convey("Then every outcome keeps E_A+E_B and S_A+S_B at one", func() {
			for _, m := range matches {
				out, err := e.ApplyMatch(s, m)
				So(err, ShouldBeNil)
				So(out.A.Expected+out.B.Expected, ShouldAlmostEqual, 1, eps)
				So(out.A.Score+out.B.Score, ShouldEqual, 1)
			}
			So(s.FightCount("A"), ShouldEqual, 3)
			So(s.FightCount("C"), ShouldEqual, 3)
		})
	})
}

func TestNewEngine_RejectsInvalidPolicy(t *testing.T) {
	Convey("Given a policy whose title K is too small", t, func() {
		p := rating.DefaultPolicy()
		p.TitleK = 30

		Convey("Then the engine cannot be built", func() {
			_, err := rating.NewEngine(rating.WithPolicy(p))
			So(errors.Is(err, rating.ErrInvalidPolicy), ShouldBeTrue)
		})
	})
}

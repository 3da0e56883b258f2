// Package matchgen produces synthetic, chronologically ordered match
// histories for demos, smoke runs and end-to-end tests.
package matchgen

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/internal/domain/rating"
	"github.com/okian/fightelo/pkg/logger"
)

// DefaultCategories are the men's divisions used when none are configured.
var DefaultCategories = []string{
	"Flyweight", "Bantamweight", "Featherweight", "Lightweight",
	"Welterweight", "Middleweight", "Light Heavyweight", "Heavyweight",
}

// Generation defaults.
const (
	defaultMatches       = 500
	defaultPerCategory   = 12
	defaultNoContestRate = 0.02
	defaultTitleRate     = 0.05
	defaultCrossoverRate = 0.05
)

// Card and skill ranges.
const (
	minCardBouts   = 3
	maxCardBouts   = 8
	minCardGapDays = 7
	maxCardGapDays = 28
	skillMin       = 1300.0
	skillMax       = 1700.0
	regularRounds  = 3
	titleRounds    = 5
)

var (
	stoppageMethods  = []string{"KO/TKO", "Submission", "TKO - Doctor's Stoppage"}
	decisionMethods  = []string{"Decision - Unanimous", "Decision - Split", "Decision - Majority"}
	noContestMethods = []string{"Overturned", "Could Not Continue", "DQ"}
)

// Competitor is a generated roster member. Skill is the hidden strength
// that drives who wins; it is never written to the output.
type Competitor struct {
	Name     string
	Category string
	Skill    float64
}

// Generator builds synthetic match histories.
type Generator struct {
	seed          int64
	matches       int
	perCategory   int
	categories    []string
	start         time.Time
	noContestRate float64
	titleRate     float64
	crossoverRate float64
	log           logger.Logger
}

// New validates the options and returns a generator.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		seed:          1,
		matches:       defaultMatches,
		perCategory:   defaultPerCategory,
		categories:    DefaultCategories,
		start:         time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		noContestRate: defaultNoContestRate,
		titleRate:     defaultTitleRate,
		crossoverRate: defaultCrossoverRate,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	switch {
	case len(g.categories) == 0:
		return nil, ErrNoCategories
	case g.perCategory < 2:
		return nil, fmt.Errorf("%w: got %d", ErrTooFewCompetitors, g.perCategory)
	}
	for _, r := range []float64{g.noContestRate, g.titleRate, g.crossoverRate} {
		if r < 0 || r > 1 {
			return nil, fmt.Errorf("%w: got %v", ErrInvalidRate, r)
		}
	}
	return g, nil
}

// Generate returns the configured number of matches in date order. Bouts
// are grouped into cards; nobody fights twice on one card, so no two
// matches share a date and pairing.
func (g *Generator) Generate(ctx context.Context) ([]model.Match, error) {
	faker := gofakeit.New(uint64(g.seed))
	roster := g.roster(faker)

	date := model.Day(g.start)
	out := make([]model.Match, 0, g.matches)
	cards := 0
	for len(out) < g.matches {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate after %d matches: %w", len(out), err)
		}
		booked := make(map[string]struct{})
		bouts := faker.Number(minCardBouts, maxCardBouts)
		for b := 0; b < bouts && len(out) < g.matches; b++ {
			m, ok := g.bout(faker, roster, booked, date)
			if !ok {
				continue
			}
			out = append(out, m)
		}
		cards++
		date = date.AddDate(0, 0, faker.Number(minCardGapDays, maxCardGapDays))
	}

	g.log.Info(ctx, "generated synthetic matches",
		logger.Int("matches", len(out)),
		logger.Int("cards", cards),
		logger.Int("competitors", g.perCategory*len(g.categories)),
	)
	return out, nil
}

func (g *Generator) roster(faker *gofakeit.Faker) [][]Competitor {
	used := make(map[string]struct{})
	roster := make([][]Competitor, len(g.categories))
	for ci, category := range g.categories {
		roster[ci] = make([]Competitor, 0, g.perCategory)
		for i := 0; i < g.perCategory; i++ {
			name := faker.Name()
			for n := 2; ; n++ {
				if _, taken := used[name]; !taken {
					break
				}
				name = fmt.Sprintf("%s %s", faker.Name(), romanSuffix(n))
			}
			used[name] = struct{}{}
			roster[ci] = append(roster[ci], Competitor{
				Name:     name,
				Category: category,
				Skill:    faker.Float64Range(skillMin, skillMax),
			})
		}
	}
	return roster
}

func (g *Generator) bout(faker *gofakeit.Faker, roster [][]Competitor, booked map[string]struct{}, date time.Time) (model.Match, bool) {
	ci := faker.Number(0, len(g.categories)-1)
	free := make([]Competitor, 0, len(roster[ci]))
	for _, c := range roster[ci] {
		if _, busy := booked[c.Name]; !busy {
			free = append(free, c)
		}
	}
	if len(free) < 2 {
		return model.Match{}, false
	}
	i := faker.Number(0, len(free)-1)
	j := faker.Number(0, len(free)-2)
	if j >= i {
		j++
	}
	a, b := free[i], free[j]
	booked[a.Name] = struct{}{}
	booked[b.Name] = struct{}{}

	category := g.categories[ci]
	if len(g.categories) > 1 && faker.Float64Range(0, 1) < g.crossoverRate {
		category = g.categories[neighbour(ci, len(g.categories))]
	}
	title := faker.Float64Range(0, 1) < g.titleRate
	label := category + " Bout"
	rounds := regularRounds
	if title {
		label = "UFC " + category + " Title Bout"
		rounds = titleRounds
	}

	m := model.Match{
		CompetitorA: a.Name,
		CompetitorB: b.Name,
		Category:    label,
		Date:        date,
	}
	switch {
	case faker.Float64Range(0, 1) < g.noContestRate:
		m.Winner = model.NoContest
		m.Method = faker.RandomString(noContestMethods)
		m.Round = faker.Number(1, rounds)
		m.Time = clock(faker)
	default:
		m.Winner = model.WinnerB
		if faker.Float64Range(0, 1) < rating.Expected(a.Skill, b.Skill) {
			m.Winner = model.WinnerA
		}
		if faker.Bool() {
			m.Method = faker.RandomString(stoppageMethods)
			m.Round = faker.Number(1, rounds)
			m.Time = clock(faker)
		} else {
			m.Method = faker.RandomString(decisionMethods)
			m.Round = rounds
			m.Time = "5:00"
		}
	}
	return m, true
}

func neighbour(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return i - 1
}

func clock(faker *gofakeit.Faker) string {
	return fmt.Sprintf("%d:%02d", faker.Number(0, 4), faker.Number(0, 59))
}

func romanSuffix(n int) string {
	numerals := []string{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}
	if n < len(numerals) {
		return numerals[n]
	}
	return fmt.Sprintf("%d", n)
}

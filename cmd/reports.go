package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/fightelo/internal/adapters/http/api"
	"github.com/okian/fightelo/internal/adapters/ingest"
	"github.com/okian/fightelo/internal/adapters/render"
	service "github.com/okian/fightelo/internal/app"
	"github.com/okian/fightelo/internal/domain/reporting"
	"github.com/okian/fightelo/internal/matchgen"
)

// ErrMissingCompetitor is returned when plot is run without a name.
var ErrMissingCompetitor = errors.New("competitor name is required")

const outputPerm = 0o644

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

func tableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Value: reporting.PoundForPound, Usage: "division label or Pound-for-Pound"},
		&cli.IntFlag{Name: "min-fights", Value: -1, Usage: "minimum fights to be listed; negative uses the configured default"},
		&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: api.DefaultLimit, Usage: "number of rows"},
	}
}

// table loads the ratings and returns the requested ranking table.
func table(c *cli.Context, env *runtimeEnv) (string, []reporting.Ranking, error) {
	svc, err := env.loadService(c)
	if err != nil {
		return "", nil, err
	}
	defer svc.Stop()

	category := c.String("category")
	minFights := c.Int("min-fights")
	if minFights < 0 {
		minFights = svc.DefaultMinFights(category)
	}
	rows, err := svc.TopN(c.Context, category, minFights, c.Int("limit"))
	if err != nil {
		return "", nil, err
	}
	return category, rows, nil
}

func rankingsCommand(env *runtimeEnv) *cli.Command {
	return &cli.Command{
		Name:  "rankings",
		Usage: "print a ranking table",
		Flags: tableFlags(),
		Action: func(c *cli.Context) error {
			category, rows, err := table(c, env)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\n", category)
			fmt.Fprintln(w, strings.Join(render.RankingsHeader, "\t"))
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\n", r.Rank, r.Competitor, r.Category, r.Rating, r.Fights)
			}
			return w.Flush()
		},
	}
}

func exportCommand(env *runtimeEnv) *cli.Command {
	flags := append(tableFlags(), &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "rankings.xlsx", Usage: "output workbook"})
	return &cli.Command{
		Name:  "export",
		Usage: "write a ranking table to an XLSX workbook",
		Flags: flags,
		Action: func(c *cli.Context) error {
			category, rows, err := table(c, env)
			if err != nil {
				return err
			}
			body, err := render.RankingsXLSX(category, rows)
			if err != nil {
				return err
			}
			return writeOutput(c, c.String("out"), body)
		},
	}
}

func plotCommand(env *runtimeEnv) *cli.Command {
	return &cli.Command{
		Name:      "plot",
		Usage:     "write a competitor's rating trajectory as a PNG chart",
		ArgsUsage: "<competitor>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output image; defaults to <competitor>.png"},
		},
		Action: func(c *cli.Context) error {
			name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if name == "" {
				return ErrMissingCompetitor
			}
			svc, err := env.loadService(c)
			if err != nil {
				return err
			}
			defer svc.Stop()

			body, err := plot(c, svc, name)
			if err != nil {
				return err
			}
			out := c.String("out")
			if out == "" {
				out = strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(name), "_"), "_") + ".png"
			}
			return writeOutput(c, out, body)
		},
	}
}

func plot(c *cli.Context, svc *service.Service, name string) ([]byte, error) {
	history, err := svc.History(c.Context, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if canonical := reporting.CanonicalName(history, name); canonical != "" {
		name = canonical
	}
	return render.TrajectoryPNG(name, reporting.Trajectory(history, name))
}

func generateCommand(env *runtimeEnv) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "write a synthetic chronological match history as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "synthetic_fights.csv", Usage: "output CSV"},
			&cli.IntFlag{Name: "matches", Value: 1000, Usage: "number of matches"},
			&cli.IntFlag{Name: "competitors", Value: 12, Usage: "roster size per category"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed; equal seeds give equal output"},
			&cli.StringSliceFlag{Name: "categories", Usage: "divisions to draw competitors into"},
			&cli.TimestampFlag{Name: "start", Layout: time.DateOnly, Usage: "date of the first card (YYYY-MM-DD)"},
		},
		Action: func(c *cli.Context) error {
			opts := []matchgen.Option{
				matchgen.WithSeed(c.Int64("seed")),
				matchgen.WithMatches(c.Int("matches")),
				matchgen.WithCompetitors(c.Int("competitors")),
				matchgen.WithLogger(env.log.Named("matchgen")),
			}
			if categories := c.StringSlice("categories"); len(categories) > 0 {
				opts = append(opts, matchgen.WithCategories(categories...))
			}
			if start := c.Timestamp("start"); start != nil {
				opts = append(opts, matchgen.WithStart(*start))
			}
			gen, err := matchgen.New(opts...)
			if err != nil {
				return err
			}
			matches, err := gen.Generate(c.Context)
			if err != nil {
				return err
			}

			out := c.String("out")
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := ingest.WriteCSV(f, matches); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "wrote %d matches to %s\n", len(matches), out)
			return nil
		},
	}
}

func writeOutput(c *cli.Context, path string, body []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, body, outputPerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	return nil
}

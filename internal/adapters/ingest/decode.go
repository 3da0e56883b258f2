// Package ingest turns tabular match history (CSV or XLSX) into a
// chronologically ordered, validated slice of match records.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/fightelo/internal/domain/dedupe"
	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/pkg/logger"
	"github.com/okian/fightelo/pkg/metrics"
)

// Column headers, matched case-insensitively.
const (
	ColDate        = "Date"
	ColFighterA    = "Fighter A"
	ColFighterB    = "Fighter B"
	ColWinner      = "Winner"
	ColWeightClass = "Weight Class"
	ColMethod      = "Method"
	ColRound       = "Round"
	ColTime        = "Time"
)

// Header is the column order written by the generator and expected by default.
var Header = []string{ColDate, ColFighterA, ColFighterB, ColWinner, ColWeightClass, ColMethod, ColRound, ColTime}

var requiredColumns = []string{ColDate, ColFighterA, ColFighterB, ColWinner}

var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	time.DateOnly,
	time.RFC3339,
	"1/2/2006",
	"01-02-06",
}

// NoContestMarker is how a bout without a winner is written.
const NoContestMarker = "Draw/NC"

var noContestWinners = map[string]struct{}{
	"":           {},
	"draw/nc":    {},
	"draw":       {},
	"nc":         {},
	"no contest": {},
}

// Recorder receives per-row ingestion metrics. *metrics.Manager satisfies it.
type Recorder interface {
	RecordIngestRow(status string)
}

type globalRecorder struct{}

func (globalRecorder) RecordIngestRow(status string) { metrics.RecordIngestRow(status) }

// Stats counts rows by fate.
type Stats struct {
	Rows       int
	Accepted   int
	Malformed  int
	Duplicates int
}

// Batch is the result of a read.
type Batch struct {
	Matches []model.Match
	Stats   Stats
}

type decoder struct {
	skipMalformed   bool
	defaultCategory string
	dedupeSize      int
	dedupe          dedupe.Deduper
	log             logger.Logger
	rec             Recorder

	columns map[string]int
}

func newDecoder(opts []Option) *decoder {
	d := &decoder{
		defaultCategory: DefaultCategory,
		log:             logger.Nop(),
		rec:             globalRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.dedupe == nil {
		d.dedupe = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(d.dedupeSize))
	}
	return d
}

// decode converts raw rows, the first being the header, into a date-sorted batch.
func (d *decoder) decode(ctx context.Context, rows [][]string) (*Batch, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	if err := d.mapHeader(rows[0]); err != nil {
		return nil, err
	}

	b := &Batch{Matches: make([]model.Match, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(row) {
			continue
		}
		line := i + 2
		b.Stats.Rows++

		m, err := d.parseRow(row)
		if err != nil {
			if !d.skipMalformed {
				return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
			}
			b.Stats.Malformed++
			d.rec.RecordIngestRow(metrics.RowMalformed)
			d.log.Warn(ctx, "skipping malformed row", logger.Int("line", line), logger.Error(err))
			continue
		}
		if d.dedupe.SeenAndRecord(ctx, m.Key()) {
			b.Stats.Duplicates++
			d.rec.RecordIngestRow(metrics.RowDuplicate)
			d.log.Debug(ctx, "dropping duplicate row", logger.Int("line", line), logger.String("key", m.Key()))
			continue
		}
		b.Stats.Accepted++
		d.rec.RecordIngestRow(metrics.RowAccepted)
		b.Matches = append(b.Matches, m)
	}

	sort.SliceStable(b.Matches, func(i, j int) bool {
		return b.Matches[i].Date.Before(b.Matches[j].Date)
	})
	return b, nil
}

func (d *decoder) mapHeader(header []string) error {
	d.columns = make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := d.columns[key]; !dup {
			d.columns[key] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := d.columns[strings.ToLower(c)]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}
	return nil
}

func (d *decoder) field(row []string, column string) string {
	i, ok := d.columns[strings.ToLower(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (d *decoder) parseRow(row []string) (model.Match, error) {
	date, err := ParseDate(d.field(row, ColDate))
	if err != nil {
		return model.Match{}, err
	}
	m := model.Match{
		CompetitorA: d.field(row, ColFighterA),
		CompetitorB: d.field(row, ColFighterB),
		Category:    d.field(row, ColWeightClass),
		Method:      d.field(row, ColMethod),
		Time:        d.field(row, ColTime),
		Date:        date,
	}
	if m.Category == "" {
		m.Category = d.defaultCategory
	}
	if m.Winner, err = ParseWinner(d.field(row, ColWinner), m.CompetitorA, m.CompetitorB); err != nil {
		return model.Match{}, err
	}
	if m.Round, err = parseRound(d.field(row, ColRound)); err != nil {
		return model.Match{}, err
	}
	if err := m.Validate(); err != nil {
		return model.Match{}, err
	}
	return m, nil
}

// ParseDate accepts the date spellings found in scraped and exported data.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, model.ErrMissingDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseWinner maps the winner column to a side. The column holds one of the
// two names or a no-contest marker.
func ParseWinner(winner, a, b string) (model.Winner, error) {
	w := strings.TrimSpace(winner)
	switch {
	case w != "" && w == a:
		return model.WinnerA, nil
	case w != "" && w == b:
		return model.WinnerB, nil
	}
	if _, ok := noContestWinners[strings.ToLower(w)]; ok {
		return model.NoContest, nil
	}
	switch {
	case strings.EqualFold(w, a):
		return model.WinnerA, nil
	case strings.EqualFold(w, b):
		return model.WinnerB, nil
	}
	return model.NoContest, fmt.Errorf("%w: %q is neither %q nor %q", model.ErrUnknownWinner, w, a, b)
}

func parseRound(s string) (int, error) {
	if s == "" {
		return model.UnknownRound, nil
	}
	r, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("%w: %q", model.ErrRoundOutOfRange, s)
		}
		r = int(f)
	}
	return r, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/fightelo/internal/domain/model"
)

// ReadCSV reads a comma-separated match history with a header row.
func ReadCSV(ctx context.Context, r io.Reader, opts ...Option) (*Batch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return newDecoder(opts).decode(ctx, rows)
}

// WriteCSV writes matches in the column order of Header.
func WriteCSV(w io.Writer, matches []model.Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range matches {
		if err := cw.Write(Row(m)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row renders a match as a record in Header order.
func Row(m model.Match) []string {
	winner := m.WinnerName()
	if winner == "" {
		winner = NoContestMarker
	}
	round := ""
	if m.Round != model.UnknownRound {
		round = strconv.Itoa(m.Round)
	}
	return []string{
		m.Date.Format("January 2, 2006"),
		m.CompetitorA,
		m.CompetitorB,
		winner,
		m.Category,
		m.Method,
		round,
		m.Time,
	}
}

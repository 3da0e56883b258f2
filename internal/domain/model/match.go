// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Winner identifies the side that won a match.
type Winner int

// Match results.
const (
	NoContest Winner = iota
	WinnerA
	WinnerB
)

func (w Winner) String() string {
	switch w {
	case WinnerA:
		return "A"
	case WinnerB:
		return "B"
	case NoContest:
		return "no contest"
	default:
		return fmt.Sprintf("Winner(%d)", int(w))
	}
}

// Method is the finish-method category derived from free-text method strings.
type Method int

// Finish-method categories.
const (
	MethodOther Method = iota
	MethodUnanimousDecision
	MethodStoppage
)

func (m Method) String() string {
	switch m {
	case MethodStoppage:
		return "stoppage"
	case MethodUnanimousDecision:
		return "unanimous decision"
	default:
		return "other"
	}
}

// UnknownRound marks a match whose finish round was not recorded.
const UnknownRound = 0

// ClassifyMethod maps free text such as "KO/TKO", "Submission" or
// "Decision - Unanimous" to a Method. Matching is case-insensitive.
func ClassifyMethod(method string) Method {
	m := strings.ToLower(method)
	switch {
	case strings.Contains(m, "ko"), strings.Contains(m, "knockout"), strings.Contains(m, "submission"):
		return MethodStoppage
	case strings.Contains(m, "unanimous"):
		return MethodUnanimousDecision
	default:
		return MethodOther
	}
}

// Match is one externally supplied contest record. It is immutable once built.
type Match struct {
	CompetitorA string
	CompetitorB string
	Winner      Winner
	Category    string    // division label, e.g. "Lightweight Bout"
	Method      string    // free-text finish method
	Round       int       // 1..5, UnknownRound when missing
	Time        string    // finish time within the round, informational only
	Date        time.Time // event date, normalized to a UTC calendar day
}

// Validation failures reported by Match.Validate.
var (
	ErrMissingCompetitor = errors.New("missing competitor")
	ErrSameCompetitor    = errors.New("competitor cannot face themselves")
	ErrMissingCategory   = errors.New("missing category")
	ErrMissingDate       = errors.New("missing date")
	ErrUnknownWinner     = errors.New("unknown winner")
	ErrRoundOutOfRange   = errors.New("round out of range")
)

// MaxRound is the last round a contest can be finished in.
const MaxRound = 5

// Validate checks the caller contract of a match record.
func (m Match) Validate() error {
	switch {
	case strings.TrimSpace(m.CompetitorA) == "", strings.TrimSpace(m.CompetitorB) == "":
		return ErrMissingCompetitor
	case m.CompetitorA == m.CompetitorB:
		return fmt.Errorf("%w: %q", ErrSameCompetitor, m.CompetitorA)
	case strings.TrimSpace(m.Category) == "":
		return ErrMissingCategory
	case m.Date.IsZero():
		return ErrMissingDate
	case m.Winner != NoContest && m.Winner != WinnerA && m.Winner != WinnerB:
		return fmt.Errorf("%w: %v", ErrUnknownWinner, m.Winner)
	case m.Round < UnknownRound || m.Round > MaxRound:
		return fmt.Errorf("%w: %d", ErrRoundOutOfRange, m.Round)
	}
	return nil
}

// IsNoContest reports whether the match had no winner.
func (m Match) IsNoContest() bool { return m.Winner == NoContest }

// Scores returns the actual scores of both sides: 1/0 for a decision, 0.5/0.5 for a no contest.
func (m Match) Scores() (float64, float64) {
	switch m.Winner {
	case WinnerA:
		return 1, 0
	case WinnerB:
		return 0, 1
	default:
		return 0.5, 0.5
	}
}

// WinnerName returns the winning competitor, or "" for a no contest.
func (m Match) WinnerName() string {
	switch m.Winner {
	case WinnerA:
		return m.CompetitorA
	case WinnerB:
		return m.CompetitorB
	default:
		return ""
	}
}

// Key identifies a contest for duplicate detection. The pair is ordered so
// that the same bout listed from either corner yields the same key.
func (m Match) Key() string {
	a, b := m.CompetitorA, m.CompetitorB
	if b < a {
		a, b = b, a
	}
	return strings.Join([]string{m.Date.Format(time.DateOnly), a, b, m.Category}, "|")
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from one date to another.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

package rating

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/fightelo/internal/domain/model"
)

// Unbounded closes the last experience tier.
const Unbounded = math.MaxInt

// TierName labels an experience tier.
type TierName string

// Experience tiers, least to most experienced.
const (
	TierProvisional TierName = "provisional"
	TierEstablished TierName = "established"
	TierVeteran     TierName = "veteran"
)

// Tier maps competitors with fewer than Below prior fights to a K-factor.
type Tier struct {
	Name  TierName
	Below int
	K     float64
}

// FinishRule awards Multiplier when the finish method matches and the
// round lies in [MinRound, MaxRound]. A zero MinRound matches any round,
// including an unknown one.
type FinishRule struct {
	Name       string
	Method     model.Method
	MinRound   int
	MaxRound   int
	Multiplier float64
}

func (r FinishRule) matches(method model.Method, round int) bool {
	if method != r.Method {
		return false
	}
	if r.MinRound == 0 {
		return true
	}
	return round >= r.MinRound && round <= r.MaxRound
}

// Policy holds every tunable constant of the rating engine. Tiers and
// FinishRules are ordered tables evaluated top to bottom; first match wins.
type Policy struct {
	StartingRating    float64
	Tiers             []Tier
	TitleK            float64
	TitleMarker       string
	EliteThreshold    float64
	EliteBonus        float64
	StreakIncrement   float64
	InactivityDays    int
	InactivityPenalty float64
	FinishRules       []FinishRule
}

// DefaultPolicy returns the reference calibration.
func DefaultPolicy() Policy {
	return Policy{
		StartingRating: 1500,
		Tiers: []Tier{
			{Name: TierProvisional, Below: 5, K: 36},
			{Name: TierEstablished, Below: 15, K: 28},
			{Name: TierVeteran, Below: Unbounded, K: 20},
		},
		TitleK:            50,
		TitleMarker:       "Title",
		EliteThreshold:    1700,
		EliteBonus:        1.1,
		StreakIncrement:   0.05,
		InactivityDays:    540,
		InactivityPenalty: 25,
		FinishRules: []FinishRule{
			{Name: "stoppage round 1", Method: model.MethodStoppage, MinRound: 1, MaxRound: 1, Multiplier: 1.6},
			{Name: "stoppage rounds 2-3", Method: model.MethodStoppage, MinRound: 2, MaxRound: 3, Multiplier: 1.4},
			{Name: "stoppage rounds 4-5", Method: model.MethodStoppage, MinRound: 4, MaxRound: 5, Multiplier: 1.2},
			{Name: "unanimous decision", Method: model.MethodUnanimousDecision, Multiplier: 1.1},
		},
	}
}

// Validate checks the relationships the engine relies on.
func (p Policy) Validate() error {
	if math.IsNaN(p.StartingRating) || math.IsInf(p.StartingRating, 0) {
		return fmt.Errorf("%w: starting rating must be finite", ErrInvalidPolicy)
	}
	if len(p.Tiers) == 0 {
		return fmt.Errorf("%w: at least one tier is required", ErrInvalidPolicy)
	}
	for i, t := range p.Tiers {
		if t.K <= 0 {
			return fmt.Errorf("%w: tier %s has non-positive K", ErrInvalidPolicy, t.Name)
		}
		if i == 0 {
			if t.Below < 1 {
				return fmt.Errorf("%w: tier %s must cover at least one fight count", ErrInvalidPolicy, t.Name)
			}
			continue
		}
		prev := p.Tiers[i-1]
		if t.Below <= prev.Below {
			return fmt.Errorf("%w: tier %s boundary must exceed %d", ErrInvalidPolicy, t.Name, prev.Below)
		}
		if t.K >= prev.K {
			return fmt.Errorf("%w: tier %s K must be below %s K", ErrInvalidPolicy, t.Name, prev.Name)
		}
	}
	if last := p.Tiers[len(p.Tiers)-1]; last.Below != Unbounded {
		return fmt.Errorf("%w: last tier %s must be unbounded", ErrInvalidPolicy, last.Name)
	}
	if p.TitleK <= p.Tiers[0].K {
		return fmt.Errorf("%w: title K must exceed every tier K", ErrInvalidPolicy)
	}
	if strings.TrimSpace(p.TitleMarker) == "" {
		return fmt.Errorf("%w: title marker must not be empty", ErrInvalidPolicy)
	}
	if p.EliteBonus <= 1 {
		return fmt.Errorf("%w: elite bonus must exceed 1.0", ErrInvalidPolicy)
	}
	if p.StreakIncrement < 0 {
		return fmt.Errorf("%w: streak increment must not be negative", ErrInvalidPolicy)
	}
	if p.InactivityDays <= 0 || p.InactivityPenalty < 0 {
		return fmt.Errorf("%w: inactivity window must be positive and penalty non-negative", ErrInvalidPolicy)
	}
	for i, r := range p.FinishRules {
		if r.Multiplier <= 1 {
			return fmt.Errorf("%w: finish rule %q must exceed 1.0", ErrInvalidPolicy, r.Name)
		}
		if i > 0 && r.Multiplier >= p.FinishRules[i-1].Multiplier {
			return fmt.Errorf("%w: finish rule %q must be below %q", ErrInvalidPolicy, r.Name, p.FinishRules[i-1].Name)
		}
	}
	return nil
}

// IsTitle reports whether a category label marks a title bout.
func (p Policy) IsTitle(category string) bool {
	return strings.Contains(strings.ToLower(category), strings.ToLower(p.TitleMarker))
}

// TierIndex returns the index of the tier covering fights prior bouts.
func (p Policy) TierIndex(fights int) int {
	for i, t := range p.Tiers {
		if fights < t.Below {
			return i
		}
	}
	return len(p.Tiers) - 1
}

// KFactor selects the volatility for a competitor with fights prior bouts
// facing an opponent with opponentFights. Title bouts take the fixed title K.
// A provisional competitor facing a non-provisional opponent is dampened to
// the next tier.
func (p Policy) KFactor(fights, opponentFights int, title bool) float64 {
	if title {
		return p.TitleK
	}
	i := p.TierIndex(fights)
	if i == 0 && len(p.Tiers) > 1 && p.TierIndex(opponentFights) != 0 {
		i = 1
	}
	return p.Tiers[i].K
}

// FinishMultiplier returns the bonus for how a decisive match ended.
func (p Policy) FinishMultiplier(method string, round int) float64 {
	kind := model.ClassifyMethod(method)
	for _, r := range p.FinishRules {
		if r.matches(kind, round) {
			return r.Multiplier
		}
	}
	return 1
}

// Expected returns the logistic win expectation of a rating against an opponent.
func Expected(rating, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-rating)/400))
}

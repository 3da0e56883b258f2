// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and env vars on top.
// - Policy fields mirror rating.Policy and are converted by RatingPolicy.
package config

import (
	"fmt"

	"github.com/okian/fightelo/internal/domain/rating"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath points at the match history file (.csv or .xlsx).
	DataPath string `koanf:"data_path"`

	// DefaultCategory fills rows with an empty weight class.
	DefaultCategory string `koanf:"default_category"`

	// SkipMalformed drops unparseable rows instead of failing the load.
	SkipMalformed bool `koanf:"skip_malformed"`

	// DedupeSize bounds the duplicate-row cache; <= 0 means unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankingsLimit caps GET /rankings?limit.
	MaxRankingsLimit int `koanf:"max_rankings_limit"`

	// DivisionMinFights and P4PMinFights are the default ranking thresholds.
	DivisionMinFights int `koanf:"division_min_fights"`
	P4PMinFights      int `koanf:"p4p_min_fights"`

	// Rating policy overrides.
	StartingRating    float64 `koanf:"starting_rating"`
	ProvisionalFights int     `koanf:"provisional_fights"`
	EstablishedFights int     `koanf:"established_fights"`
	KProvisional      float64 `koanf:"k_provisional"`
	KEstablished      float64 `koanf:"k_established"`
	KVeteran          float64 `koanf:"k_veteran"`
	KTitle            float64 `koanf:"k_title"`
	TitleMarker       string  `koanf:"title_marker"`
	EliteThreshold    float64 `koanf:"elite_threshold"`
	EliteBonus        float64 `koanf:"elite_bonus"`
	StreakIncrement   float64 `koanf:"streak_increment"`
	InactivityDays    int     `koanf:"inactivity_days"`
	InactivityPenalty float64 `koanf:"inactivity_penalty"`
}

// New creates a Config populated with defaults.
func New() *Config {
	p := rating.DefaultPolicy()
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DataPath:          "ufc_fight_data.csv",
		DefaultCategory:   "Open Weight",
		DedupeSize:        0,
		MaxRankingsLimit:  100,
		DivisionMinFights: 5,
		P4PMinFights:      10,

		StartingRating:    p.StartingRating,
		ProvisionalFights: p.Tiers[0].Below,
		EstablishedFights: p.Tiers[1].Below,
		KProvisional:      p.Tiers[0].K,
		KEstablished:      p.Tiers[1].K,
		KVeteran:          p.Tiers[2].K,
		KTitle:            p.TitleK,
		TitleMarker:       p.TitleMarker,
		EliteThreshold:    p.EliteThreshold,
		EliteBonus:        p.EliteBonus,
		StreakIncrement:   p.StreakIncrement,
		InactivityDays:    p.InactivityDays,
		InactivityPenalty: p.InactivityPenalty,
	}
}

// RatingPolicy builds a validated rating.Policy from the configured values.
// Finish multipliers are not configurable and keep their defaults.
func (c *Config) RatingPolicy() (rating.Policy, error) {
	p := rating.DefaultPolicy()
	p.StartingRating = c.StartingRating
	p.Tiers = []rating.Tier{
		{Name: rating.TierProvisional, Below: c.ProvisionalFights, K: c.KProvisional},
		{Name: rating.TierEstablished, Below: c.EstablishedFights, K: c.KEstablished},
		{Name: rating.TierVeteran, Below: rating.Unbounded, K: c.KVeteran},
	}
	p.TitleK = c.KTitle
	p.TitleMarker = c.TitleMarker
	p.EliteThreshold = c.EliteThreshold
	p.EliteBonus = c.EliteBonus
	p.StreakIncrement = c.StreakIncrement
	p.InactivityDays = c.InactivityDays
	p.InactivityPenalty = c.InactivityPenalty
	if err := p.Validate(); err != nil {
		return rating.Policy{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return p, nil
}

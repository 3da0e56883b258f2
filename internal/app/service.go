// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/fightelo/internal/adapters/ingest"
	"github.com/okian/fightelo/internal/adapters/repository"
	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/internal/domain/rating"
	"github.com/okian/fightelo/internal/domain/reporting"
	"github.com/okian/fightelo/internal/domain/simulation"
	"github.com/okian/fightelo/pkg/logger"
	"github.com/okian/fightelo/pkg/metrics"
)

// Service loads match history, replays it through the rating engine and
// publishes the result for queries.
type Service struct {
	// reloadMu serializes whole load passes; mu guards the fields below it.
	reloadMu sync.Mutex
	mu       sync.RWMutex

	// Core components
	store  *repository.SnapshotStore
	engine *rating.Engine

	// Configuration
	dataPath          string
	policy            rating.Policy
	skipMalformed     bool
	defaultCategory   string
	dedupeSize        int
	maxLimit          int
	divisionMinFights int
	p4pMinFights      int

	// State
	started    bool
	loads      int
	lastRunID  string
	lastIngest ingest.Stats
	lastRun    simulation.Stats
	lastTook   time.Duration
	lastErr    error
	loadedAt   time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataPath sets the match history file (.csv or .xlsx).
func WithDataPath(path string) Option {
	return func(s *Service) {
		if strings.TrimSpace(path) != "" {
			s.dataPath = path
		}
	}
}

// WithPolicy replaces the default rating policy.
func WithPolicy(p rating.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithSkipMalformed drops unparseable rows instead of failing the load.
func WithSkipMalformed(skip bool) Option {
	return func(s *Service) {
		s.skipMalformed = skip
	}
}

// WithDefaultCategory sets the category used for rows without a weight class.
func WithDefaultCategory(category string) Option {
	return func(s *Service) {
		if strings.TrimSpace(category) != "" {
			s.defaultCategory = category
		}
	}
}

// WithDedupeSize bounds the duplicate-row cache. Zero means unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxLimit caps the number of rows a ranking query may ask for.
func WithMaxLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// WithMinFights sets the default listing thresholds for division and
// pound-for-pound tables.
func WithMinFights(division, p4p int) Option {
	return func(s *Service) {
		if division >= 0 {
			s.divisionMinFights = division
		}
		if p4p >= 0 {
			s.p4pMinFights = p4p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service. It fails only when the rating policy is invalid.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		dataPath:          "ufc_fight_data.csv",
		policy:            rating.DefaultPolicy(),
		defaultCategory:   ingest.DefaultCategory,
		maxLimit:          100,
		divisionMinFights: -1,
		p4pMinFights:      -1,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	engine, err := rating.NewEngine(rating.WithPolicy(s.policy))
	if err != nil {
		return nil, err
	}
	s.engine = engine
	s.store = repository.NewSnapshotStore(repository.WithMaxLimit(s.maxLimit))
	return s, nil
}

// Start performs the first load. A service that fails to load stays
// stopped so the caller can report the error and exit.
func (s *Service) Start(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if started {
		return nil
	}

	s.logger.Info(ctx, "starting rating service...", logger.String("data_path", s.dataPath))
	if err := s.Reload(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.logger.Info(ctx, "rating service started")
	return nil
}

// Stop marks the service stopped. The published snapshot stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "rating service stopped")
}

// Reload reads the data file, replays every match from a fresh state and
// publishes the result. Concurrent calls run one after another. On failure
// the previous snapshot stays published.
func (s *Service) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	res, batch, err := s.run(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		metrics.RecordError("service", "reload")
		s.logger.Error(ctx, "reload failed", logger.String("data_path", s.dataPath), logger.Error(err))
		return err
	}

	s.store.Publish(ctx, repository.Meta{
		RunID:       res.RunID,
		Matches:     res.Stats.Matches,
		Competitors: res.Stats.Competitors,
	}, res.Snapshot, res.History)

	s.loads++
	s.lastRunID = res.RunID
	s.lastIngest = batch.Stats
	s.lastRun = res.Stats
	s.lastTook = res.Elapsed
	s.loadedAt = s.store.Meta(ctx).PublishedAt
	s.logger.Info(ctx, "ratings published",
		logger.String("run_id", res.RunID),
		logger.Int("rows", batch.Stats.Rows),
		logger.Int("malformed", batch.Stats.Malformed),
		logger.Int("duplicates", batch.Stats.Duplicates),
		logger.Int("ratings", res.Stats.Ratings),
	)
	return nil
}

func (s *Service) run(ctx context.Context) (*simulation.Result, *ingest.Batch, error) {
	opts := []ingest.Option{
		ingest.WithDefaultCategory(s.defaultCategory),
		ingest.WithDedupeSize(s.dedupeSize),
		ingest.WithLogger(s.logger.Named("ingest")),
	}
	if s.skipMalformed {
		opts = append(opts, ingest.WithSkipMalformed())
	}
	batch, err := ingest.LoadFile(ctx, s.dataPath, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", s.dataPath, err)
	}

	res, err := simulation.Run(ctx, s.engine, batch.Matches,
		simulation.WithLogger(s.logger.Named("simulation")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("simulate %s: %w", s.dataPath, err)
	}
	return res, batch, nil
}

// TopN returns up to n rows of a category table with at least minFights fights.
func (s *Service) TopN(ctx context.Context, category string, minFights, n int) ([]repository.Entry, error) {
	return s.store.TopN(ctx, category, minFights, n)
}

// Rank returns a competitor's position in a category table.
func (s *Service) Rank(ctx context.Context, competitor, category string) (repository.Entry, error) {
	return s.store.Rank(ctx, competitor, category)
}

// History returns the competitor's rating history in chronological order.
func (s *Service) History(ctx context.Context, competitor string) ([]model.HistoryPoint, error) {
	return s.store.History(ctx, competitor)
}

// Categories returns the category labels of the published ratings.
func (s *Service) Categories(ctx context.Context) []string {
	return s.store.Categories(ctx)
}

// DefaultMinFights returns the configured listing threshold for category,
// falling back to the reporting defaults when none was set.
func (s *Service) DefaultMinFights(category string) int {
	override := s.divisionMinFights
	if reporting.IsPoundForPound(category) {
		override = s.p4pMinFights
	}
	if override < 0 {
		return reporting.DefaultMinFights(category)
	}
	return override
}

// Policy returns the rating policy in force.
func (s *Service) Policy() rating.Policy {
	return s.engine.Policy()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"loads":      s.loads,
		"dataPath":   s.dataPath,
		"dedupeSize": s.dedupeSize,
	}
	if s.lastErr != nil {
		stats["lastError"] = s.lastErr.Error()
	}
	if s.loads > 0 {
		stats["runId"] = s.lastRunID
		stats["loadedAt"] = s.loadedAt.Format(time.RFC3339)
		stats["rows"] = s.lastIngest.Rows
		stats["malformedRows"] = s.lastIngest.Malformed
		stats["duplicateRows"] = s.lastIngest.Duplicates
		stats["matches"] = s.lastRun.Matches
		stats["noContests"] = s.lastRun.NoContests
		stats["titleBouts"] = s.lastRun.TitleBouts
		stats["inactivityPenalties"] = s.lastRun.InactivityPenalties
		stats["competitors"] = s.lastRun.Competitors
		stats["ratings"] = s.lastRun.Ratings
		stats["categories"] = s.lastRun.Categories
		stats["elapsedMs"] = float64(s.lastTook.Microseconds()) / 1000
	}
	return stats
}

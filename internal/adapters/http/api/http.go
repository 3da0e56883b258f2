// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/fightelo/internal/adapters/http/swagger"
	"github.com/okian/fightelo/internal/adapters/repository"
	"github.com/okian/fightelo/internal/domain/model"
	"github.com/okian/fightelo/pkg/logger"
)

// DefaultLimit is the ranking table length returned when no limit is given.
const DefaultLimit = 25

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read operations expose the published ratings.
	TopN(ctx context.Context, category string, minFights, n int) ([]Entry, error)
	Rank(ctx context.Context, competitor, category string) (Entry, error)
	History(ctx context.Context, competitor string) ([]model.HistoryPoint, error)
	Categories(ctx context.Context) []string

	// DefaultMinFights is the listing threshold used when the query has none.
	DefaultMinFights(category string) int

	// Reload re-reads the match history and republishes every rating.
	Reload(ctx context.Context) error
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = repository.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	rankingsHandler   *RankingsHandler
	competitorHandler *CompetitorHandler
	reloadHandler     *ReloadHandler
	log               logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		rankingsHandler:   NewRankingsHandler(deps),
		competitorHandler: NewCompetitorHandler(deps),
		reloadHandler:     NewReloadHandler(deps, log),
		log:               log,
	}
}

// Router builds the chi router serving every route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Metrics)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/categories", s.rankingsHandler.HandleCategories)
	r.Get("/rankings", s.rankingsHandler.HandleRankings)
	r.Get("/rankings.xlsx", s.rankingsHandler.HandleRankingsXLSX)
	r.Route("/competitors/{name}", func(r chi.Router) {
		r.Get("/rank", s.competitorHandler.HandleRank)
		r.Get("/history", s.competitorHandler.HandleHistory)
		r.Get("/chart.png", s.competitorHandler.HandleChart)
	})
	r.Post("/reload", s.reloadHandler.HandleReload)
	swagger.Register(r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeBinary(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeFailure translates upstream sentinels to status codes.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrNotPublished):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

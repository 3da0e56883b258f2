package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/fightelo/internal/adapters/render"
	"github.com/okian/fightelo/internal/adapters/repository"
	"github.com/okian/fightelo/internal/domain/reporting"
)

// CompetitorHandler serves per-competitor lookups.
type CompetitorHandler struct {
	deps Dependencies
}

// NewCompetitorHandler creates a new competitor handler.
func NewCompetitorHandler(deps Dependencies) *CompetitorHandler {
	return &CompetitorHandler{deps: deps}
}

type historyResponse struct {
	Competitor string             `json:"competitor"`
	Series     []reporting.Series `json:"series"`
}

// HandleRank handles GET /competitors/{name}/rank?category= requests.
// Without a category the competitor's best pound-for-pound row is returned.
func (h *CompetitorHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	name, err := competitorParam(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		category = reporting.PoundForPound
	}
	entry, err := h.deps.Rank(r.Context(), name, category)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleHistory handles GET /competitors/{name}/history requests. An
// unknown competitor has an empty series list.
func (h *CompetitorHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	name, series, err := h.trajectory(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Competitor: name, Series: series})
}

// HandleChart handles GET /competitors/{name}/chart.png requests. An
// unknown competitor gets the placeholder chart.
func (h *CompetitorHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	name, series, err := h.trajectory(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	body, err := render.TrajectoryPNG(name, series)
	if err != nil {
		writeFailure(w, fmt.Errorf("%w: %w", ErrRender, err))
		return
	}
	writeBinary(w, "image/png", "", body)
}

func (h *CompetitorHandler) trajectory(r *http.Request) (string, []reporting.Series, error) {
	name, err := competitorParam(r)
	if err != nil {
		return "", nil, err
	}
	history, err := h.deps.History(r.Context(), name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", nil, err
	}
	if canonical := reporting.CanonicalName(history, name); canonical != "" {
		name = canonical
	}
	return name, reporting.Trajectory(history, name), nil
}

func competitorParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "name")
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid competitor name", ErrBadRequest)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: missing competitor name", ErrBadRequest)
	}
	return name, nil
}

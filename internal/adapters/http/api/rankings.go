package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/fightelo/internal/adapters/render"
	"github.com/okian/fightelo/internal/domain/reporting"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RankingsHandler serves ranking tables and the category list.
type RankingsHandler struct {
	deps Dependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps Dependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

type rankingsResponse struct {
	Category  string  `json:"category"`
	MinFights int     `json:"min_fights"`
	Rankings  []Entry `json:"rankings"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type rankingsQuery struct {
	category  string
	minFights int
	limit     int
}

// HandleRankings handles GET /rankings?category=&min_fights=&limit= requests.
func (h *RankingsHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	rows, err := h.deps.TopN(r.Context(), q.category, q.minFights, q.limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankingsResponse{Category: q.category, MinFights: q.minFights, Rankings: rows})
}

// HandleRankingsXLSX handles GET /rankings.xlsx with the same query as /rankings.
func (h *RankingsHandler) HandleRankingsXLSX(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	rows, err := h.deps.TopN(r.Context(), q.category, q.minFights, q.limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	body, err := render.RankingsXLSX(q.category, rows)
	if err != nil {
		writeFailure(w, fmt.Errorf("%w: %w", ErrRender, err))
		return
	}
	writeBinary(w, xlsxContentType, "rankings.xlsx", body)
}

// HandleCategories handles GET /categories requests.
func (h *RankingsHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: h.deps.Categories(r.Context())})
}

func (h *RankingsHandler) parseQuery(r *http.Request) (rankingsQuery, error) {
	values := r.URL.Query()
	q := rankingsQuery{
		category: strings.TrimSpace(values.Get("category")),
		limit:    DefaultLimit,
	}
	if q.category == "" {
		q.category = reporting.PoundForPound
	}
	q.minFights = h.deps.DefaultMinFights(q.category)

	if s := values.Get("min_fights"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return rankingsQuery{}, fmt.Errorf("%w: min_fights must be a non-negative integer", ErrBadRequest)
		}
		q.minFights = v
	}
	if s := values.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return rankingsQuery{}, fmt.Errorf("%w: limit must be an integer", ErrBadRequest)
		}
		q.limit = v
	}
	return q, nil
}

package api

import (
	"net/http"

	"github.com/okian/fightelo/pkg/logger"
)

// ReloadHandler re-runs the rating pass on demand.
type ReloadHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps Dependencies, log logger.Logger) *ReloadHandler {
	return &ReloadHandler{deps: deps, log: log}
}

type reloadResponse struct {
	Status string `json:"status"`
}

// HandleReload handles POST /reload requests. Concurrent reloads queue up
// behind each other; the response is sent once this request's pass is done.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Reload(r.Context()); err != nil {
		h.log.Error(r.Context(), "reload failed", logger.Error(err))
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded"})
}

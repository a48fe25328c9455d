// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/psephos/internal/adapters/repository"
	"github.com/okian/psephos/internal/domain/types"
)

// RunDependencies defines the interface for run status lookups.
type RunDependencies interface {
	GetRun(ctx context.Context, runID string) (types.RunStatus, error)
}

// RunsHandler handles run status requests.
type RunsHandler struct {
	deps RunDependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunDependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleGetRun handles GET /runs/{run_id} requests.
func (h *RunsHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_run"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /runs/
	path := strings.TrimPrefix(r.URL.Path, "/runs/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	status, err := h.deps.GetRun(r.Context(), path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, status)
}

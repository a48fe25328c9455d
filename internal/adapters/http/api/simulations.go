// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/psephos/internal/adapters/mq/queue"
	"github.com/okian/psephos/internal/domain/model"
	"github.com/okian/psephos/internal/domain/types"
)

// SubmitDependencies defines the interface for run submission.
type SubmitDependencies interface {
	SubmitRun(ctx context.Context, spec model.RunSpec) (types.Submission, error)
}

// SimulationsHandler handles run submission requests.
type SimulationsHandler struct {
	deps SubmitDependencies
}

// NewSimulationsHandler creates a new simulations handler.
func NewSimulationsHandler(deps SubmitDependencies) *SimulationsHandler {
	return &SimulationsHandler{deps: deps}
}

// HandlePostSimulation handles POST /simulations requests.
func (h *SimulationsHandler) HandlePostSimulation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_simulation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sub, err := h.deps.SubmitRun(r.Context(), req.toSpec())
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPrecondition):
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		case errors.Is(err, queue.ErrQueueFull):
			writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}

	// Identical specs resolve immediately from the run cache.
	if sub.Status == types.StatusCached {
		writeJSON(w, http.StatusOK, sub)
		return
	}
	writeJSON(w, http.StatusAccepted, sub)
}

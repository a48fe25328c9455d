// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/psephos/internal/domain/model"
	"github.com/okian/psephos/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
//
// Implementations signal a rejected spec by wrapping model.ErrPrecondition
// and a full queue by wrapping queue.ErrQueueFull, so handlers can
// translate them to 400 and 429 respectively.
type Dependencies interface {
	// SubmitRun queues a simulation run, or answers it from the run
	// cache when an identical spec has already completed.
	SubmitRun(ctx context.Context, spec model.RunSpec) (types.Submission, error)

	// Read operations expose run outcomes and the fairness leaderboard.
	GetRun(ctx context.Context, runID string) (types.RunStatus, error)
	Leaderboard(ctx context.Context, n int) ([]Entry, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	simulationsHandler *SimulationsHandler
	leaderboardHandler *LeaderboardHandler
	runsHandler        *RunsHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates a new API server with all handlers. maxLeaderboard
// caps the n accepted by the leaderboard endpoint.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboard int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		simulationsHandler: NewSimulationsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboard),
		runsHandler:        NewRunsHandler(deps),
		dashboardHandler:   newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/simulations", MetricsMiddleware(s.simulationsHandler.HandlePostSimulation, "simulations"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/runs/", MetricsMiddleware(s.runsHandler.HandleGetRun, "runs"))
}

// runRequest mirrors the OpenAPI schema for POST /simulations. Omitted
// population fields are zero here and filled with service defaults.
type runRequest struct {
	Rule               string  `json:"rule"`
	Issues             int     `json:"issues,omitempty"`
	Voters             int     `json:"voters,omitempty"`
	Candidates         int     `json:"candidates,omitempty"`
	ElectorateScenario string  `json:"electorate_scenario,omitempty"`
	CandidateScenario  string  `json:"candidate_scenario,omitempty"`
	Seed               uint64  `json:"seed,omitempty"`
	Apathy             float64 `json:"apathy,omitempty"`
	ShareThreshold     float64 `json:"share_threshold,omitempty"`
	RoundKnockouts     int     `json:"round_knockouts,omitempty"`
	ApprovalsPerVoter  int     `json:"approvals_per_voter,omitempty"`
	Seats              int     `json:"seats,omitempty"`
	MinSeatShare       float64 `json:"min_seat_share,omitempty"`
}

func (r runRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Rule) == "":
		return errors.New("missing rule")
	case r.Issues < 0:
		return errors.New("issues cannot be negative")
	case r.Voters < 0:
		return errors.New("voters cannot be negative")
	case r.Candidates < 0:
		return errors.New("candidates cannot be negative")
	case r.Apathy < 0 || r.Apathy > 1:
		return errors.New("apathy must be within [0, 1]")
	}
	return nil
}

// toSpec converts the wire request to a run spec. Validation beyond
// shape is the submitter's concern.
func (r runRequest) toSpec() model.RunSpec {
	return model.RunSpec{
		Rule:               r.Rule,
		Issues:             r.Issues,
		Voters:             r.Voters,
		Candidates:         r.Candidates,
		ElectorateScenario: r.ElectorateScenario,
		CandidateScenario:  r.CandidateScenario,
		Seed:               r.Seed,
		ApathyProb:         r.Apathy,
		ShareThreshold:     r.ShareThreshold,
		RoundKnockouts:     r.RoundKnockouts,
		ApprovalsPerVoter:  r.ApprovalsPerVoter,
		Seats:              r.Seats,
		MinSeatShare:       r.MinSeatShare,
	}
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

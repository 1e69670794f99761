// Package httpapi exposes the engine over HTTP: fixture analysis,
// snapshot settlement, tracker state, health and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/quantbet/quantum/internal/config"
	"github.com/quantbet/quantum/internal/engine"
	"github.com/quantbet/quantum/internal/orchestrator"
	"github.com/quantbet/quantum/internal/snapshot"
	"github.com/quantbet/quantum/internal/telemetry"
	"github.com/quantbet/quantum/internal/tracker"
)

// Server is the read-write HTTP surface around one orchestrator.
type Server struct {
	engine  *orchestrator.Orchestrator
	settler *orchestrator.Settler
	repo    snapshot.Repository
	tracker *tracker.Tracker
	metrics *telemetry.Metrics
	cfg     config.HTTPConfig
	log     zerolog.Logger

	http *http.Server
}

// New assembles the server. tracker and metrics may be nil; the
// corresponding routes degrade gracefully.
func New(
	engine *orchestrator.Orchestrator,
	settler *orchestrator.Settler,
	repo snapshot.Repository,
	tr *tracker.Tracker,
	metrics *telemetry.Metrics,
	cfg config.HTTPConfig,
	log zerolog.Logger,
) *Server {
	s := &Server{
		engine:  engine,
		settler: settler,
		repo:    repo,
		tracker: tr,
		metrics: metrics,
		cfg:     cfg,
		log:     log.With().Str("component", "httpapi").Logger(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.HandleFunc("/v1/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/v1/snapshots/{id}", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/v1/snapshots/{id}/settle", s.handleSettle).Methods(http.MethodPost)
	r.HandleFunc("/v1/tracker", s.handleTracker).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// analyzeRequest mirrors orchestrator.Fixture on the wire.
type analyzeRequest struct {
	FixtureID    string             `json:"fixture_id"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Referee      string             `json:"referee,omitempty"`
	Odds         map[string]float64 `json:"odds"`
	HomeMomentum *momentumPayload   `json:"home_momentum,omitempty"`
	AwayMomentum *momentumPayload   `json:"away_momentum,omitempty"`
}

type momentumPayload struct {
	Score  float64 `json:"score"`
	Trend  string  `json:"trend"`
	Streak int     `json:"streak"`
}

type analyzeResponse struct {
	FixtureID  string                    `json:"fixture_id"`
	Pick       *orchestrator.QuantumPick `json:"pick,omitempty"`
	SkipReason string                    `json:"skip_reason,omitempty"`
	SnapshotID string                    `json:"snapshot_id"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.HomeTeam == "" || req.AwayTeam == "" {
		writeError(w, http.StatusBadRequest, errors.New("home_team and away_team are required"))
		return
	}

	fx := orchestrator.Fixture{
		ID:           req.FixtureID,
		HomeTeam:     req.HomeTeam,
		AwayTeam:     req.AwayTeam,
		Referee:      req.Referee,
		Odds:         req.Odds,
		HomeMomentum: req.HomeMomentum.toEngine(),
		AwayMomentum: req.AwayMomentum.toEngine(),
	}

	dec, err := s.engine.Analyze(r.Context(), fx)
	if errors.Is(err, orchestrator.ErrTimeout) {
		writeError(w, http.StatusGatewayTimeout, err)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("fixture", req.FixtureID).Msg("analysis failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		FixtureID:  dec.FixtureID,
		Pick:       dec.Pick,
		SkipReason: dec.SkipReason,
		SnapshotID: dec.Snapshot.String(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid snapshot id: %w", err))
		return
	}

	snap, err := s.repo.Get(r.Context(), id)
	if errors.Is(err, snapshot.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// settleRequest is the out-of-band settlement payload.
type settleRequest struct {
	ActualResult string          `json:"actual_result"`
	ProfitLoss   float64         `json:"profit_loss"`
	ModelCorrect map[string]bool `json:"model_correct,omitempty"`
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid snapshot id: %w", err))
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.ActualResult == "" {
		writeError(w, http.StatusBadRequest, errors.New("actual_result is required"))
		return
	}

	st := snapshot.Settlement{
		ActualResult: req.ActualResult,
		ProfitLoss:   req.ProfitLoss,
		SettledAt:    time.Now().UTC(),
		ModelCorrect: make(map[engine.ModelID]bool, len(req.ModelCorrect)),
	}
	for model, correct := range req.ModelCorrect {
		st.ModelCorrect[engine.ModelID(model)] = correct
	}

	settled, err := s.settler.Settle(r.Context(), id, st)
	if errors.Is(err, snapshot.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, settled)
}

func (s *Server) handleTracker(w http.ResponseWriter, _ *http.Request) {
	if s.tracker == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Records())
}

func (p *momentumPayload) toEngine() *engine.Momentum {
	if p == nil {
		return nil
	}
	return &engine.Momentum{Score: p.Score, Trend: engine.Trend(p.Trend), Streak: p.Streak}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Package server exposes the player-details pipeline over HTTP/JSON. The UI
// is a pure consumer of these endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"vega-tracker/internal/domain"
)

// PlayerDetailsProvider is the pipeline surface the handlers consume.
type PlayerDetailsProvider interface {
	GetPlayerDetails(ctx context.Context, playerID string, year int) (*domain.PlayerDetails, error)
	GetWinrateForUser(ctx context.Context, playerID string, year int) ([]domain.WinrateSnapshot, error)
}

type TrackerServer struct {
	details PlayerDetailsProvider
	logger  zerolog.Logger
}

func NewTrackerServer(details PlayerDetailsProvider, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{details: details, logger: logger}
}

func (s *TrackerServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/players/{id}", s.handleGetPlayer)
	mux.HandleFunc("GET /api/players/{id}/winrate", s.handleGetWinrate)
	return mux
}

func (s *TrackerServer) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")

	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	details, err := s.details.GetPlayerDetails(r.Context(), playerID, year)
	if err != nil {
		s.writePipelineError(w, playerID, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (s *TrackerServer) handleGetWinrate(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")

	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	snapshots, err := s.details.GetWinrateForUser(r.Context(), playerID, year)
	if err != nil {
		s.writePipelineError(w, playerID, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshots)
}

// parseYear reads the optional year query parameter; zero means the current
// year. Writes a 400 and returns false on garbage.
func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, true
	}

	year, err := strconv.Atoi(raw)
	if err != nil || year < 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "year must be a non-negative integer")
		return 0, false
	}
	return year, true
}

func (s *TrackerServer) writePipelineError(w http.ResponseWriter, playerID string, err error) {
	s.logger.Error().Err(err).Str("player_id", playerID).Msg("player details request failed")

	status := http.StatusBadGateway
	code := "UPSTREAM_ERROR"
	if errors.Is(err, domain.ErrUpstreamLookup) {
		status = http.StatusNotFound
		code = "PLAYER_NOT_FOUND"
	}
	writeError(w, status, code, "failed to fetch player data")
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

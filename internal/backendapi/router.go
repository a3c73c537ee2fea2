// Package backendapi exposes the persistence backend over HTTP: user records
// with username history and monthly winrate snapshots.
package backendapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"vega-tracker/internal/config"
	"vega-tracker/internal/repository"
)

type Server struct {
	users    *repository.UserRecordRepository
	winrates *repository.WinrateRepository
	apiKey   string
	logger   zerolog.Logger
}

func NewServer(cfg *config.Config, users *repository.UserRecordRepository, winrates *repository.WinrateRepository, logger zerolog.Logger) *Server {
	return &Server{
		users:    users,
		winrates: winrates,
		apiKey:   cfg.BackendAPIKey,
		logger:   logger,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/Users/GetUser/{id}", s.handleGetUser)
	mux.HandleFunc("POST /api/Users/CreateUser", s.handleCreateUser)
	mux.HandleFunc("PUT /api/Users/UpdateUser/{id}", s.handleUpdateUser)
	mux.HandleFunc("GET /api/Winrate/GetWinrateForUser", s.handleGetWinrate)
	mux.HandleFunc("POST /api/Winrate/UpdateWinrate", s.handleUpdateWinrate)

	return s.requireAPIKey(mux)
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != s.apiKey {
			s.logger.Warn().Str("path", r.URL.Path).Str("remote_addr", r.RemoteAddr).Msg("rejected request with bad api key")
			writeError(w, http.StatusUnauthorized, "INVALID_API_KEY", "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

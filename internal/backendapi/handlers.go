package backendapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vega-tracker/internal/domain"
)

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

// usernameHistory accepts both the canonical JSON array and the legacy
// single-string form an earlier backend contract used.
type usernameHistory []string

func (h *usernameHistory) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*h = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return errors.New("usernameHistory must be a string or an array of strings")
	}
	*h = []string{single}
	return nil
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := s.users.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "user "+id+" not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to read user")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID              json.Number     `json:"id"`
		UsernameHistory usernameHistory `json:"usernameHistory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", err.Error())
		return
	}
	if req.ID.String() == "" {
		writeError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELDS", "id is required")
		return
	}

	record, err := s.users.Create(r.Context(), req.ID.String(), req.UsernameHistory)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", req.ID.String()).Msg("create user failed")
		writeError(w, http.StatusConflict, "USER_EXISTS", "user already exists or could not be created")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		UsernameHistory usernameHistory `json:"usernameHistory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", err.Error())
		return
	}

	err := s.users.UpdateHistory(r.Context(), id, req.UsernameHistory)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "user "+id+" not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetWinrate(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "userId must be numeric")
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "year must be numeric")
		return
	}

	snapshots, err := s.winrates.GetByUserYear(r.Context(), userID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to read winrates")
		return
	}
	if len(snapshots) == 0 {
		writeError(w, http.StatusNotFound, "WINRATE_NOT_FOUND", "no winrate data for this user and year")
		return
	}

	writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) handleUpdateWinrate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID             int64   `json:"userId"`
		Month              int     `json:"month"`
		Year               int     `json:"year"`
		BaseAttackWinrate  float64 `json:"baseAttackWinrate"`
		BaseDefenceWinrate float64 `json:"baseDefenceWinrate"`
		FleetWinrate       float64 `json:"fleetWinrate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", err.Error())
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "month must be between 1 and 12")
		return
	}

	err := s.winrates.Upsert(r.Context(), domain.WinrateSnapshot{
		UserID:             req.UserID,
		Month:              req.Month,
		Year:               req.Year,
		BaseAttackWinrate:  req.BaseAttackWinrate,
		BaseDefenceWinrate: req.BaseDefenceWinrate,
		FleetWinrate:       req.FleetWinrate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to write winrate")
		return
	}

	w.WriteHeader(http.StatusOK)
}

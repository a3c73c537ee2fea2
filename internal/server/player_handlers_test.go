package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vega-tracker/internal/domain"
)

type fakeProvider struct {
	details    *domain.PlayerDetails
	detailsErr error
	snapshots  []domain.WinrateSnapshot

	lastPlayerID string
	lastYear     int
}

func (f *fakeProvider) GetPlayerDetails(ctx context.Context, playerID string, year int) (*domain.PlayerDetails, error) {
	f.lastPlayerID = playerID
	f.lastYear = year
	return f.details, f.detailsErr
}

func (f *fakeProvider) GetWinrateForUser(ctx context.Context, playerID string, year int) ([]domain.WinrateSnapshot, error) {
	f.lastPlayerID = playerID
	f.lastYear = year
	return f.snapshots, nil
}

func TestHandleGetPlayer(t *testing.T) {
	provider := &fakeProvider{
		details: &domain.PlayerDetails{
			UserID:          501,
			Stats:           domain.RawPlayerStats{Alias: "Nova"},
			FleetStats:      domain.BattleCategoryStats{TotalBattles: 20, WinratePercent: "50.00", KDRatio: "1.25"},
			HistoricalStats: []domain.WinrateSnapshot{},
			UsernameHistory: []string{"Nova"},
		},
	}
	srv := NewTrackerServer(provider, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/players/18715508?year=2024", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "18715508", provider.lastPlayerID)
	assert.Equal(t, 2024, provider.lastYear)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "userId")
	assert.Contains(t, body, "playerData")
	assert.Contains(t, body, "fleetStats")
	assert.Contains(t, body, "usernameHistory")
}

func TestHandleGetPlayer_InvalidYear(t *testing.T) {
	srv := NewTrackerServer(&fakeProvider{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/players/18715508?year=banana", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetPlayer_LookupFailureIs404(t *testing.T) {
	provider := &fakeProvider{
		detailsErr: &domain.PipelineError{Cause: fmt.Errorf("%w: no results", domain.ErrUpstreamLookup)},
	}
	srv := NewTrackerServer(provider, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/players/nobody", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetPlayer_FetchFailureIs502(t *testing.T) {
	provider := &fakeProvider{
		detailsErr: &domain.PipelineError{Cause: fmt.Errorf("%w: boom", domain.ErrUpstreamFetch)},
	}
	srv := NewTrackerServer(provider, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/players/18715508", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleGetWinrate(t *testing.T) {
	provider := &fakeProvider{
		snapshots: []domain.WinrateSnapshot{{UserID: 18715508, Month: 3, Year: 2020, FleetWinrate: 44.4}},
	}
	srv := NewTrackerServer(provider, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/players/18715508/winrate?year=2020", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2020, provider.lastYear)

	var snapshots []domain.WinrateSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshots))
	require.Len(t, snapshots, 1)
	assert.Equal(t, 3, snapshots[0].Month)
}

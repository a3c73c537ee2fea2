package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"vega-tracker/internal/domain"
)

// WinrateClient reads and writes the monthly winrate snapshots, keyed by the
// public player identifier.
type WinrateClient struct {
	client *Client
	logger zerolog.Logger
}

func NewWinrateClient(client *Client, logger zerolog.Logger) *WinrateClient {
	return &WinrateClient{client: client, logger: logger}
}

type upsertWinrateRequest struct {
	UserID             int64   `json:"userId"`
	Month              int     `json:"month"`
	Year               int     `json:"year"`
	BaseAttackWinrate  float64 `json:"baseAttackWinrate"`
	BaseDefenceWinrate float64 `json:"baseDefenceWinrate"`
	FleetWinrate       float64 `json:"fleetWinrate"`
}

// Get returns the snapshot series for one year, ordered by month. A backend
// 404 means no data and yields an empty slice, not an error.
func (c *WinrateClient) Get(ctx context.Context, playerID string, year int) ([]domain.WinrateSnapshot, error) {
	userID, err := parsePlayerID(playerID)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/api/Winrate/GetWinrateForUser?userId=%d&year=%d", userID, year)
	body, status, err := c.client.do(ctx, fasthttp.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: get winrate: %v", domain.ErrPersistence, err)
	}
	if status == fasthttp.StatusNotFound {
		return []domain.WinrateSnapshot{}, nil
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: get winrate: status %d", domain.ErrPersistence, status)
	}

	var snapshots []domain.WinrateSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("%w: decode winrate: %v", domain.ErrPersistence, err)
	}
	if snapshots == nil {
		snapshots = []domain.WinrateSnapshot{}
	}
	return snapshots, nil
}

// Upsert writes the snapshot for (playerID, month, year), overwriting any
// existing one. The caller treats a failure as best-effort.
func (c *WinrateClient) Upsert(ctx context.Context, playerID string, month, year int, winrates domain.Winrates) error {
	userID, err := parsePlayerID(playerID)
	if err != nil {
		return err
	}

	payload := upsertWinrateRequest{
		UserID:             userID,
		Month:              month,
		Year:               year,
		BaseAttackWinrate:  winrates.BaseAttack,
		BaseDefenceWinrate: winrates.BaseDefence,
		FleetWinrate:       winrates.Fleet,
	}

	_, status, err := c.client.do(ctx, fasthttp.MethodPost, "/api/Winrate/UpdateWinrate", payload)
	if err != nil {
		return fmt.Errorf("%w: upsert winrate: %v", domain.ErrPersistence, err)
	}
	if status != fasthttp.StatusOK && status != fasthttp.StatusCreated {
		return fmt.Errorf("%w: upsert winrate: status %d", domain.ErrPersistence, status)
	}

	c.logger.Debug().
		Int64("user_id", userID).
		Int("month", month).
		Int("year", year).
		Msg("winrate snapshot written")
	return nil
}

func parsePlayerID(playerID string) (int64, error) {
	userID, err := strconv.ParseInt(playerID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric player id %q", domain.ErrPersistence, playerID)
	}
	return userID, nil
}

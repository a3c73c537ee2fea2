package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"vega-tracker/internal/domain"
)

// UserRecordClient manages the per-player user record and its username
// history.
type UserRecordClient struct {
	client *Client
	logger zerolog.Logger
}

func NewUserRecordClient(client *Client, logger zerolog.Logger) *UserRecordClient {
	return &UserRecordClient{client: client, logger: logger}
}

type createUserRequest struct {
	ID              string   `json:"id"`
	UsernameHistory []string `json:"usernameHistory"`
}

type updateUserRequest struct {
	UsernameHistory []string `json:"usernameHistory"`
}

// Reconcile makes sure a record for playerID exists and contains alias in
// its username history, and returns it. It never returns an error: when the
// backend is unreachable or a write fails, the result is a synthetic record
// tagged RecordDegraded so the rest of the request can still be served.
//
// Two concurrent calls for a never-seen player can race to create two
// records; the backend's primary key rejects the loser and that caller
// degrades. Accepted as a best-effort limitation.
func (c *UserRecordClient) Reconcile(ctx context.Context, playerID, alias string) *domain.UserRecord {
	record, err := c.Get(ctx, playerID)
	switch {
	case err == nil:
		if record.HasUsername(alias) {
			record.Origin = domain.RecordExisting
			return record
		}

		updated := append(append([]string{}, record.UsernameHistory...), alias)
		if err := c.Update(ctx, playerID, updated); err != nil {
			return c.degraded(playerID, alias, err)
		}

		// The update ack does not carry the full record; confirm with
		// a re-read.
		record, err = c.Get(ctx, playerID)
		if err != nil {
			return c.degraded(playerID, alias, err)
		}
		record.Origin = domain.RecordUpdated
		return record

	case errors.Is(err, domain.ErrNotFound):
		c.logger.Info().Str("player_id", playerID).Msg("user record not found, creating")
		record, err := c.Create(ctx, playerID, alias)
		if err != nil {
			return c.degraded(playerID, alias, err)
		}
		record.Origin = domain.RecordCreated
		return record

	default:
		return c.degraded(playerID, alias, err)
	}
}

// Get reads the record for playerID. A backend 404 is domain.ErrNotFound;
// anything else is domain.ErrPersistence.
func (c *UserRecordClient) Get(ctx context.Context, playerID string) (*domain.UserRecord, error) {
	body, status, err := c.client.do(ctx, fasthttp.MethodGet, "/api/Users/GetUser/"+playerID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: get user: %v", domain.ErrPersistence, err)
	}
	if status == fasthttp.StatusNotFound {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, playerID)
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: get user: status %d", domain.ErrPersistence, status)
	}

	var record domain.UserRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", domain.ErrPersistence, err)
	}
	return &record, nil
}

// Create registers a new record seeded with alias as the first history entry.
func (c *UserRecordClient) Create(ctx context.Context, playerID, alias string) (*domain.UserRecord, error) {
	payload := createUserRequest{ID: playerID, UsernameHistory: []string{alias}}
	body, status, err := c.client.do(ctx, fasthttp.MethodPost, "/api/Users/CreateUser", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: create user: %v", domain.ErrPersistence, err)
	}
	if status != fasthttp.StatusOK && status != fasthttp.StatusCreated {
		return nil, fmt.Errorf("%w: create user: status %d", domain.ErrPersistence, status)
	}

	var record domain.UserRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", domain.ErrPersistence, err)
	}
	return &record, nil
}

// Update replaces the record's username history.
func (c *UserRecordClient) Update(ctx context.Context, playerID string, history []string) error {
	_, status, err := c.client.do(ctx, fasthttp.MethodPut, "/api/Users/UpdateUser/"+playerID, updateUserRequest{UsernameHistory: history})
	if err != nil {
		return fmt.Errorf("%w: update user: %v", domain.ErrPersistence, err)
	}
	if status != fasthttp.StatusOK && status != fasthttp.StatusNoContent {
		return fmt.Errorf("%w: update user: status %d", domain.ErrPersistence, status)
	}
	return nil
}

func (c *UserRecordClient) degraded(playerID, alias string, cause error) *domain.UserRecord {
	c.logger.Warn().
		Err(cause).
		Str("player_id", playerID).
		Str("record_origin", string(domain.RecordDegraded)).
		Msg("serving synthetic user record")

	now := time.Now().UTC()
	return &domain.UserRecord{
		ID:              playerID,
		UsernameHistory: []string{alias},
		CreatedAt:       now,
		UpdatedAt:       now,
		Origin:          domain.RecordDegraded,
	}
}


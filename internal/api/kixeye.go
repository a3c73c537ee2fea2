package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"vega-tracker/internal/config"
	"vega-tracker/internal/constants"
	"vega-tracker/internal/domain"
)

// KixeyeClient talks to the three public KIXEYE services: user lookup, game
// stats and avatars. No retries at this layer; every call is fresh.
type KixeyeClient struct {
	client *fasthttp.Client
	logger zerolog.Logger

	// lookupURL ends with the query prefix (e.g. ".../users?search="),
	// matching how the deployment provides it.
	lookupURL string
	statsURL  string
	avatarURL string
	gameID    string
}

func NewKixeyeClient(cfg *config.Config, logger zerolog.Logger) *KixeyeClient {
	return &KixeyeClient{
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger:    logger,
		lookupURL: cfg.UserLookupURL,
		statsURL:  cfg.StatsURL,
		avatarURL: cfg.AvatarURL,
		gameID:    cfg.GameID,
	}
}

type lookupEntry struct {
	UserID int64 `json:"userId"`
}

type avatarEntry struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ResolveUserID maps the public player identifier to the internal numeric
// user id via the user-lookup service. An empty result set is a lookup
// failure, not a valid zero-result state.
func (c *KixeyeClient) ResolveUserID(ctx context.Context, playerID string) (int64, error) {
	url := fmt.Sprintf("%s%s&limit=%d", c.lookupURL, playerID, constants.LookupResultLimit)

	entries, err := doRequest[[]lookupEntry](ctx, c, url)
	if err != nil {
		c.logger.Error().Err(err).Str("player_id", playerID).Msg("user lookup failed")
		return 0, fmt.Errorf("%w: %v", domain.ErrUpstreamLookup, err)
	}
	if len(*entries) == 0 {
		c.logger.Warn().Str("player_id", playerID).Msg("user lookup returned no results")
		return 0, fmt.Errorf("%w: no results for %q", domain.ErrUpstreamLookup, playerID)
	}

	return (*entries)[0].UserID, nil
}

// GetPlayerStats fetches the raw per-user stats blob for the configured game.
func (c *KixeyeClient) GetPlayerStats(ctx context.Context, userID int64) (*domain.RawPlayerStats, error) {
	url := fmt.Sprintf("%s/%d/games/%s", c.statsURL, userID, c.gameID)

	raw, err := doRequest[domain.RawPlayerStats](ctx, c, url)
	if err != nil {
		c.logger.Error().Err(err).Int64("user_id", userID).Msg("stats fetch failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	return raw, nil
}

// GetAvatarURL returns the url of the player's large avatar variant, or
// empty when the service lists no large variant. Only transport and HTTP
// failures are errors.
func (c *KixeyeClient) GetAvatarURL(ctx context.Context, userID int64) (string, error) {
	url := fmt.Sprintf("%s/%d/avatars", c.avatarURL, userID)

	entries, err := doRequest[[]avatarEntry](ctx, c, url)
	if err != nil {
		c.logger.Error().Err(err).Int64("user_id", userID).Msg("avatar fetch failed")
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}

	for _, entry := range *entries {
		if entry.ID == constants.AvatarVariantLarge {
			return entry.URL, nil
		}
	}

	c.logger.Debug().Int64("user_id", userID).Msg("no large avatar variant")
	return "", nil
}

func doRequest[T any](ctx context.Context, client *KixeyeClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"vega-tracker/internal/constants"
	"vega-tracker/internal/domain"
	"vega-tracker/internal/stats"
)

// UpstreamClient is the slice of the KIXEYE client the pipeline consumes.
type UpstreamClient interface {
	ResolveUserID(ctx context.Context, playerID string) (int64, error)
	GetPlayerStats(ctx context.Context, userID int64) (*domain.RawPlayerStats, error)
	GetAvatarURL(ctx context.Context, userID int64) (string, error)
}

// UserRecordStore reconciles the persisted per-player record with the alias
// observed on this request. It never fails; see backend.UserRecordClient.
type UserRecordStore interface {
	Reconcile(ctx context.Context, playerID, alias string) *domain.UserRecord
}

// WinrateStore reads and writes monthly winrate snapshots.
type WinrateStore interface {
	Get(ctx context.Context, playerID string, year int) ([]domain.WinrateSnapshot, error)
	Upsert(ctx context.Context, playerID string, month, year int, winrates domain.Winrates) error
}

// PlayerDetailsService orchestrates everything needed to display one player
// for one year: identity resolution, stats and avatar fetch, username-history
// reconciliation, the current-month winrate snapshot and the historical
// series. No caching and no retries; every call is made fresh.
type PlayerDetailsService struct {
	upstream UpstreamClient
	users    UserRecordStore
	winrates WinrateStore
	logger   zerolog.Logger
}

func NewPlayerDetailsService(upstream UpstreamClient, users UserRecordStore, winrates WinrateStore, logger zerolog.Logger) *PlayerDetailsService {
	return &PlayerDetailsService{upstream: upstream, users: users, winrates: winrates, logger: logger}
}

// GetPlayerDetails runs the full pipeline for (playerID, year). A zero year
// means the current calendar year. Identity resolution and the stats fetch
// are the only fatal steps; everything downstream degrades to a safe default
// so a partial result is still returned.
//
// Snapshots are only written when the requested year is the current one;
// historical years are a read-only view. The returned historical series is
// read strictly after the write settles, so a current-year request always
// reflects the snapshot it just wrote.
func (s *PlayerDetailsService) GetPlayerDetails(ctx context.Context, playerID string, year int) (*domain.PlayerDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	now := time.Now()
	if year == 0 {
		year = now.Year()
	}

	s.logger.Info().Str("player_id", playerID).Int("year", year).Msg("fetching player details")

	userID, err := s.resolve(ctx, playerID)
	if err != nil {
		return nil, &domain.PipelineError{Cause: err}
	}

	var raw *domain.RawPlayerStats
	var avatarURL string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetchCtx, fetchCancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
		defer fetchCancel()

		var err error
		raw, err = s.upstream.GetPlayerStats(fetchCtx, userID)
		return err
	})
	g.Go(func() error {
		fetchCtx, fetchCancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
		defer fetchCancel()

		url, err := s.upstream.GetAvatarURL(fetchCtx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("avatar fetch failed, continuing without avatar")
			return nil
		}
		avatarURL = url
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("stats fetch failed")
		return nil, &domain.PipelineError{Cause: err}
	}

	record := s.users.Reconcile(ctx, playerID, raw.Alias)

	baseAttack := stats.Calculate(raw.BaseAttackWin, raw.BaseAttackDraw, raw.BaseAttackLoss)
	baseDefence := stats.Calculate(raw.BaseDefenceWin, raw.BaseDefenceDraw, raw.BaseDefenceLoss)
	fleet := stats.Calculate(raw.FleetWin, raw.FleetDraw, raw.FleetLoss)

	if year == now.Year() {
		winrates := domain.Winrates{
			BaseAttack:  parsePercent(baseAttack.WinratePercent),
			BaseDefence: parsePercent(baseDefence.WinratePercent),
			Fleet:       parsePercent(fleet.WinratePercent),
		}
		if err := s.winrates.Upsert(ctx, playerID, int(now.Month()), now.Year(), winrates); err != nil {
			s.logger.Warn().Err(err).Str("player_id", playerID).Msg("winrate snapshot write failed, continuing")
		}
	} else {
		s.logger.Debug().Int("year", year).Msg("historical year requested, skipping snapshot write")
	}

	historical, err := s.winrates.Get(ctx, playerID, year)
	if err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID).Int("year", year).Msg("historical winrates unavailable, continuing with empty series")
		historical = []domain.WinrateSnapshot{}
	}

	details := &domain.PlayerDetails{
		UserID:           userID,
		Stats:            *raw,
		BaseAttackStats:  baseAttack,
		BaseDefenceStats: baseDefence,
		FleetStats:       fleet,
		AvatarURL:        avatarURL,
		HistoricalStats:  historical,
		UsernameHistory:  record.UsernameHistory,
	}

	s.logger.Info().
		Str("player_id", playerID).
		Int64("user_id", userID).
		Str("alias", raw.Alias).
		Str("record_origin", string(record.Origin)).
		Int("historical_points", len(historical)).
		Msg("player details assembled")

	return details, nil
}

// GetWinrateForUser serves the year-only view used when the year filter
// changes without re-running the full pipeline. Backend failures degrade to
// an empty series.
func (s *PlayerDetailsService) GetWinrateForUser(ctx context.Context, playerID string, year int) ([]domain.WinrateSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.BackendTimeout)
	defer cancel()

	if year == 0 {
		year = time.Now().Year()
	}

	snapshots, err := s.winrates.Get(ctx, playerID, year)
	if err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID).Int("year", year).Msg("winrate read failed, returning empty series")
		return []domain.WinrateSnapshot{}, nil
	}
	return snapshots, nil
}

func (s *PlayerDetailsService) resolve(ctx context.Context, playerID string) (int64, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	userID, err := s.upstream.ResolveUserID(resolveCtx, playerID)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("identity resolution failed")
		return 0, err
	}

	s.logger.Debug().Str("player_id", playerID).Int64("user_id", userID).Msg("resolved player identity")
	return userID, nil
}

func parsePercent(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

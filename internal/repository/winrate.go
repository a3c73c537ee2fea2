package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"vega-tracker/internal/domain"
)

// WinrateRepository persists monthly winrate snapshots. The UNIQUE constraint
// on (user_id, month, year) makes writes overwrite instead of append.
type WinrateRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewWinrateRepository(db *sql.DB, logger zerolog.Logger) *WinrateRepository {
	return &WinrateRepository{db: db, logger: logger}
}

// GetByUserYear returns the snapshots for one user and year ordered by month.
// An empty year yields an empty slice, never an error.
func (r *WinrateRepository) GetByUserYear(ctx context.Context, userID int64, year int) ([]domain.WinrateSnapshot, error) {
	query, args, err := sq.Select(
		"id", "user_id", "month", "year",
		"base_attack_winrate", "base_defence_winrate", "fleet_winrate",
		"created_at", "updated_at").
		From("winrates").
		Where(sq.Eq{"user_id": userID, "year": year}).
		OrderBy("month ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Int("year", year).Msg("failed to query winrates")
		return nil, err
	}
	defer rows.Close()

	snapshots := []domain.WinrateSnapshot{}
	for rows.Next() {
		var s domain.WinrateSnapshot
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Month, &s.Year,
			&s.BaseAttackWinrate, &s.BaseDefenceWinrate, &s.FleetWinrate,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// Upsert writes the snapshot for (userID, month, year), replacing the
// winrates of an existing row.
func (r *WinrateRepository) Upsert(ctx context.Context, snapshot domain.WinrateSnapshot) error {
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}

	now := time.Now().UTC()
	query, args, err := sq.Insert("winrates").
		Columns("id", "user_id", "month", "year",
			"base_attack_winrate", "base_defence_winrate", "fleet_winrate",
			"created_at", "updated_at").
		Values(id, snapshot.UserID, snapshot.Month, snapshot.Year,
			snapshot.BaseAttackWinrate, snapshot.BaseDefenceWinrate, snapshot.FleetWinrate,
			now, now).
		Suffix(`ON CONFLICT (user_id, month, year) DO UPDATE SET
			base_attack_winrate = excluded.base_attack_winrate,
			base_defence_winrate = excluded.base_defence_winrate,
			fleet_winrate = excluded.fleet_winrate,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error().Err(err).Int64("user_id", snapshot.UserID).Msg("failed to upsert winrate")
		return err
	}

	r.logger.Debug().
		Int64("user_id", snapshot.UserID).
		Int("month", snapshot.Month).
		Int("year", snapshot.Year).
		Msg("winrate snapshot upserted")
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	"vega-tracker/internal/domain"
)

// UserRecordRepository persists per-player user records with their username
// history. The history is stored as a JSON array in a single column; order of
// appends is preserved.
type UserRecordRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUserRecordRepository(db *sql.DB, logger zerolog.Logger) *UserRecordRepository {
	return &UserRecordRepository{db: db, logger: logger}
}

func (r *UserRecordRepository) Get(ctx context.Context, id string) (*domain.UserRecord, error) {
	query, args, err := sq.Select("id", "username_history", "created_at", "updated_at").
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var record domain.UserRecord
	var history string
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&record.ID, &history, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to get user record")
		return nil, err
	}

	if err := json.Unmarshal([]byte(history), &record.UsernameHistory); err != nil {
		return nil, fmt.Errorf("corrupt username history for %s: %w", id, err)
	}
	return &record, nil
}

func (r *UserRecordRepository) Create(ctx context.Context, id string, history []string) (*domain.UserRecord, error) {
	encoded, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query, args, err := sq.Insert("users").
		Columns("id", "username_history", "created_at", "updated_at").
		Values(id, string(encoded), now, now).
		ToSql()
	if err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to create user record")
		return nil, err
	}

	r.logger.Info().Str("user_id", id).Msg("user record created")
	return &domain.UserRecord{
		ID:              id,
		UsernameHistory: history,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (r *UserRecordRepository) UpdateHistory(ctx context.Context, id string, history []string) error {
	encoded, err := json.Marshal(history)
	if err != nil {
		return err
	}

	query, args, err := sq.Update("users").
		Set("username_history", string(encoded)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to update user record")
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	return nil
}

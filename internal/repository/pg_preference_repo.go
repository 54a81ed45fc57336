package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fidelize/notifyd/internal/domain"
)

type pgPreferenceRepository struct {
	pool *pgxpool.Pool
}

// NewPgPreferenceRepository returns a PreferenceRepository backed by PostgreSQL.
func NewPgPreferenceRepository(pool *pgxpool.Pool) PreferenceRepository {
	return &pgPreferenceRepository{pool: pool}
}

func (r *pgPreferenceRepository) FindByUserID(ctx context.Context, userID string) (*domain.Preference, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, channels, type_overrides, quiet_hours_start, quiet_hours_end, updated_at
		FROM notification_preferences WHERE user_id = $1`, userID)

	var p domain.Preference
	err := row.Scan(&p.UserID, &p.Channels, &p.TypeOverrides, &p.QuietHoursStart, &p.QuietHoursEnd, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preference: %w", err)
	}
	return &p, nil
}

var _ PreferenceRepository = (*pgPreferenceRepository)(nil)

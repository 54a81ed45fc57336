package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fidelize/notifyd/internal/domain"
)

type pgDeviceRepository struct {
	pool *pgxpool.Pool
}

// NewPgDeviceRepository returns a DeviceRepository backed by PostgreSQL.
func NewPgDeviceRepository(pool *pgxpool.Pool) DeviceRepository {
	return &pgDeviceRepository{pool: pool}
}

func (r *pgDeviceRepository) FindActiveByUserID(ctx context.Context, userID string) ([]*domain.Device, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, platform, push_token, enabled, created_at, updated_at
		FROM devices
		WHERE user_id = $1 AND enabled = TRUE AND push_token IS NOT NULL
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("find active devices: %w", err)
	}
	defer rows.Close()

	var devices []*domain.Device
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.Platform, &d.PushToken, &d.Enabled, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		devices = append(devices, &d)
	}
	return devices, rows.Err()
}

func (r *pgDeviceRepository) ClearToken(ctx context.Context, deviceID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE devices SET push_token = NULL, updated_at = NOW()
		WHERE id = $1`, deviceID)
	if err != nil {
		return fmt.Errorf("clear device token: %w", err)
	}
	return nil
}

var _ DeviceRepository = (*pgDeviceRepository)(nil)

package repository

import (
	"context"
	"database/sql"
	"time"

	"smartmeter/backend/services/telemetry-service/internal/models"
)

// DeviceRepository stores the meter device registry.
type DeviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository returns repository.
func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// RegisterOrTouch marks a device online and updates its last-seen instant,
// creating the registry row if it does not exist. The upsert is a single
// statement so concurrent messages from one device cannot lose updates.
func (r *DeviceRepository) RegisterOrTouch(ctx context.Context, deviceID string, seenAt time.Time) error {
	const query = `
		INSERT INTO devices (device_id, name, status, last_seen, created_at, updated_at)
		VALUES ($1, $1, $2, $3, NOW(), NOW())
		ON CONFLICT (device_id) DO UPDATE SET
			status = EXCLUDED.status,
			last_seen = EXCLUDED.last_seen,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, deviceID, models.DeviceStatusOnline, seenAt)
	return err
}

// List returns all registered devices ordered by identifier.
func (r *DeviceRepository) List(ctx context.Context) ([]models.Device, error) {
	const query = `
		SELECT id, device_id, name, location, status, last_seen, firmware_version, created_at, updated_at
		FROM devices
		ORDER BY device_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

// GetByID returns a single device or sql.ErrNoRows.
func (r *DeviceRepository) GetByID(ctx context.Context, deviceID string) (*models.Device, error) {
	const query = `
		SELECT id, device_id, name, location, status, last_seen, firmware_version, created_at, updated_at
		FROM devices
		WHERE device_id = $1
	`
	return scanDevice(r.db.QueryRowContext(ctx, query, deviceID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*models.Device, error) {
	var device models.Device
	if err := row.Scan(
		&device.ID,
		&device.DeviceID,
		&device.Name,
		&device.Location,
		&device.Status,
		&device.LastSeen,
		&device.FirmwareVersion,
		&device.CreatedAt,
		&device.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &device, nil
}

package repository

import (
	"context"
	"database/sql"

	"smartmeter/backend/services/billing-service/internal/models"
)

// DeviceRepository enumerates registered devices for the batch job.
type DeviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository returns repository.
func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// ListBillable returns every device with a known lifecycle status.
func (r *DeviceRepository) ListBillable(ctx context.Context) ([]models.Device, error) {
	const query = `
		SELECT device_id, status, last_seen
		FROM devices
		WHERE status IN ('online', 'offline', 'error')
		ORDER BY device_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var device models.Device
		if err := rows.Scan(&device.DeviceID, &device.Status, &device.LastSeen); err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

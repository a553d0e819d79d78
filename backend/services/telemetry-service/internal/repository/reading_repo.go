package repository

import (
	"context"
	"database/sql"
	"time"

	"smartmeter/backend/services/telemetry-service/internal/models"
)

// ReadingRepository persists meter readings.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository returns repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Insert appends a reading to the device timeline. Duplicate or out-of-order
// timestamps are stored as-is; ordering is applied at query time.
func (r *ReadingRepository) Insert(ctx context.Context, reading *models.Reading) error {
	const query = `
		INSERT INTO meter_readings (device_id, ts, voltage, current, power_w, power_factor, energy_kwh, rssi, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		reading.DeviceID,
		reading.Timestamp,
		reading.Voltage,
		reading.Current,
		reading.PowerW,
		reading.PowerFactor,
		reading.EnergyKWh,
		reading.RSSI,
		reading.CreatedAt,
	).Scan(&reading.ID)
}

// ListByDeviceRange returns readings for device within [from, to], ascending by timestamp.
func (r *ReadingRepository) ListByDeviceRange(ctx context.Context, deviceID string, from, to time.Time) ([]models.Reading, error) {
	const query = `
		SELECT id, device_id, ts, voltage, current, power_w, power_factor, energy_kwh, rssi, created_at
		FROM meter_readings
		WHERE device_id = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts ASC
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var reading models.Reading
		if err := rows.Scan(
			&reading.ID,
			&reading.DeviceID,
			&reading.Timestamp,
			&reading.Voltage,
			&reading.Current,
			&reading.PowerW,
			&reading.PowerFactor,
			&reading.EnergyKWh,
			&reading.RSSI,
			&reading.CreatedAt,
		); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}

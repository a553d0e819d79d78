package repository

import (
	"context"
	"database/sql"
	"time"

	"smartmeter/backend/services/billing-service/internal/models"
)

// ReadingRepository queries the reading timeline written by the telemetry service.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository returns repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// ListForPeriod returns readings for device within [start, end), ascending by
// timestamp. Chronological order here is what makes the first/last counter
// pick correct regardless of insertion order.
func (r *ReadingRepository) ListForPeriod(ctx context.Context, deviceID string, start, end time.Time) ([]models.MeterReading, error) {
	const query = `
		SELECT device_id, ts, energy_kwh
		FROM meter_readings
		WHERE device_id = $1 AND ts >= $2 AND ts < $3
		ORDER BY ts ASC
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []models.MeterReading
	for rows.Next() {
		var reading models.MeterReading
		if err := rows.Scan(&reading.DeviceID, &reading.Timestamp, &reading.EnergyKWh); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}
